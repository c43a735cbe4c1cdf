package main

import (
	"context"
	"os"

	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// A .env file is optional; real environment variables still win.
	_ = godotenv.Load()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}
	applyEnvOverrides(config)

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "seedmix",
		Usage:    "Expand a handful of seed songs into a balanced playlist",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// applyEnvOverrides lets deploy environments supply credentials without a
// config file on disk.
func applyEnvOverrides(config *shared.Config) {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		config.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		config.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Credentials.Anthropic.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		config.Credentials.Anthropic.Model = v
	}
	if v := os.Getenv("SPOTIFY_MARKET"); v != "" {
		config.Generator.Market = v
	}
}
