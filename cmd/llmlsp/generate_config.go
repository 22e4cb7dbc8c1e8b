package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"llmlsp/internal/config"
	"llmlsp/internal/provider/codeium"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func runGenerateConfig(cmd *cobra.Command, args []string) error {
	name := configProvider
	if name == "" {
		err := huh.NewSelect[string]().
			Title("Which provider do you want to configure?").
			Options(huh.NewOption("Codeium", "codeium")).
			Value(&name).
			Run()
		if err != nil {
			return err
		}
	}

	switch name {
	case "codeium":
		return configureCodeium(cmd.Context())
	default:
		return fmt.Errorf("unknown provider %q", name)
	}
}

func configureCodeium(ctx context.Context) error {
	sessionID := uuid.NewString()

	fmt.Println("Open the following URL in your browser and copy the token it shows:")
	fmt.Println()
	fmt.Println("  " + codeium.AuthURL(sessionID))
	fmt.Println()

	var token string
	err := huh.NewInput().
		Title("Authentication token").
		EchoMode(huh.EchoModePassword).
		Value(&token).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("token is required")
			}
			return nil
		}).
		Run()
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	apiKey, err := codeium.Register(ctx, http.DefaultClient, codeium.DefaultAPIEndpoint, strings.TrimSpace(token))
	if err != nil {
		return fmt.Errorf("failed to register with codeium: %w", err)
	}

	path, err := config.SaveCredentials("codeium", config.Credentials{
		APIKey:    apiKey,
		SessionID: sessionID,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
