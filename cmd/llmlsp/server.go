package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"llmlsp/internal/config"
	"llmlsp/internal/provider"
	"llmlsp/internal/provider/codeium"
	"llmlsp/internal/server"
	"llmlsp/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

const telemetryInterval = 10 * time.Second

var log = commonlog.GetLogger("llmlsp")

// providers maps a provider name to a builder for its server.ProviderFactory.
var providers = map[string]func(creds config.Credentials, version string) server.ProviderFactory{
	"codeium": func(creds config.Credentials, version string) server.ProviderFactory {
		return func(settings config.Settings) provider.Provider {
			return codeium.NewClient(codeium.Options{
				Endpoint:         settings.Endpoint,
				APIKey:           creds.APIKey,
				SessionID:        creds.SessionID,
				ExtensionVersion: version,
				Timeout:          settings.Timeout(),
			})
		}
	},
}

func providerFactory(name string, version string) (server.ProviderFactory, error) {
	build, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	creds, err := config.LoadCredentials(name)
	if err != nil {
		return nil, err
	}
	return build(creds, version), nil
}

func loadSettings(path string) (config.Settings, error) {
	if path == "" {
		return config.Defaults(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return config.Settings{}, fmt.Errorf("open settings: %w", err)
	}
	defer f.Close()

	settings, err := config.LoadFromJSON(f)
	if err != nil {
		return config.Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	// Give it some cores
	runtime.GOMAXPROCS(4)

	// Logging
	if logfile != "" {
		commonlog.Configure(verbosity, &logfile)
	} else {
		commonlog.Configure(verbosity, nil)
	}

	// Telemetry
	if traceFile != "" {
		f, err := os.OpenFile(traceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer f.Close()

		shutdown, err := telemetry.Setup(f, telemetryInterval)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Warningf("telemetry shutdown: %v", err)
			}
		}()
	}

	settings, err := loadSettings(settingsFile)
	if err != nil {
		return err
	}

	factory, err := providerFactory(providerName, Version)
	if err != nil {
		return err
	}

	// Initialize the server
	srv, err := server.NewServer(server.Options{
		ProviderName: providerName,
		NewProvider:  factory,
		Settings:     settings,
		Version:      Version,
		Debug:        verbosity > 2,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	log.Infof("Starting llm-lsp %s with provider %s", Version, providerName)

	// Run the server
	switch {
	case tcpAddress != "":
		return srv.RunTCP(tcpAddress)
	case wsAddress != "":
		return srv.RunWebSocket(wsAddress)
	default:
		return srv.RunStdio()
	}
}
