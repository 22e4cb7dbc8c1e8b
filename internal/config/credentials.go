package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const appName = "llm-lsp"

// ErrNoCredentials is returned when no credentials file exists for a provider.
var ErrNoCredentials = errors.New("no credentials found; run generate-config first")

// ParseError represents a TOML decode failure.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Credentials authenticate the server against a provider.
type Credentials struct {
	APIKey    string `toml:"api_key"    validate:"required"`
	SessionID string `toml:"session_id" validate:"required,uuid4"`
}

// Validate checks that both fields are present and well formed.
func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	return nil
}

// ConfigDir returns $XDG_CONFIG_HOME/llm-lsp, falling back to
// ~/.config/llm-lsp.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		base = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(base, appName), nil
}

// CredentialsPath is the file holding the credentials for provider.
func CredentialsPath(provider string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, provider+".toml"), nil
}

// LoadCredentials reads and validates the credentials for provider.
func LoadCredentials(provider string) (Credentials, error) {
	var creds Credentials

	path, err := CredentialsPath(provider)
	if err != nil {
		return creds, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return creds, fmt.Errorf("%w (%s)", ErrNoCredentials, path)
	}
	if err != nil {
		return creds, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &creds); err != nil {
		return creds, &ParseError{Path: path, Err: err}
	}
	if err := creds.Validate(); err != nil {
		return creds, fmt.Errorf("%s: %w", path, err)
	}
	return creds, nil
}

// SaveCredentials writes the credentials for provider, creating the config
// directory if needed. It returns the path written.
func SaveCredentials(provider string, creds Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}

	path, err := CredentialsPath(provider)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
