package config

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Settings are the per-session options a client may pass in
// initializationOptions.
type Settings struct {
	MaxSuggestions int    `json:"max_suggestions" validate:"min=1,max=20"`
	TimeoutMS      int    `json:"timeout_ms"      validate:"min=100"`
	MaxConcurrent  int    `json:"max_concurrent"  validate:"min=1"`
	Endpoint       string `json:"endpoint"        validate:"omitempty,url"`
}

var defaultSettings = Settings{
	MaxSuggestions: 3,
	TimeoutMS:      5000,
	MaxConcurrent:  4,
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return defaultSettings
}

// Timeout is TimeoutMS as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Validate checks the settings against their constraints.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Overlay returns s with v, typically the raw initializationOptions, decoded
// on top. Only fields present in v overwrite.
func (s Settings) Overlay(v any) (Settings, error) {
	cfg := s
	if v == nil {
		return cfg, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to marshal source: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal into Settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// LoadFromJSON reads JSON from r into Settings.
func LoadFromJSON(r io.Reader) (Settings, error) {
	cfg := defaultSettings

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return Settings{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}
