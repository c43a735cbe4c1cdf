package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seedmix/internal/playlist"
	"github.com/desertthunder/seedmix/internal/repositories"
	"github.com/desertthunder/seedmix/internal/services"
	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, generateCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig re-reads configuration when a command names an explicit file,
// keeping the process-wide env overrides on top.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	configPath := cmd.String("config")
	if configPath == "" || configPath == "config.toml" {
		return
	}
	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current settings", "path", configPath, "error", err)
		return
	}
	applyEnvOverrides(config)
	r.config = config
}

// catalogService builds the Spotify catalog client from configured credentials.
func (r *Runner) catalogService() (*services.SpotifyService, error) {
	creds := r.config.Credentials.Spotify
	svc, err := services.NewSpotifyService(creds.ClientID, creds.ClientSecret, r.config.Generator.Market)
	if err != nil {
		return nil, fmt.Errorf("spotify catalog unavailable: %w", err)
	}
	return svc, nil
}

// suggesterService builds the text-suggestion client, or nil when no API key
// is configured. Generation works without it; the pool is just catalog-only.
func (r *Runner) suggesterService() services.Suggester {
	creds := r.config.Credentials.Anthropic
	svc, err := services.NewAnthropicService(creds.APIKey, creds.Model)
	if err != nil {
		r.logger.Info("suggestions disabled", "reason", err)
		return nil
	}
	return svc
}

// generatorOptions maps configured tuning onto pipeline options.
func (r *Runner) generatorOptions() playlist.Options {
	gen := r.config.Generator
	return playlist.Options{
		TargetMin:          gen.TargetMin,
		TargetSmallMax:     gen.TargetSmallMax,
		TargetLargeMax:     gen.TargetLargeMax,
		MinArtists:         gen.MinArtists,
		MaxConsecutive:     gen.MaxConsecutive,
		PerArtistBuffer:    gen.PerArtistBuffer,
		Verify:             gen.Verify,
		SuggestionAttempts: gen.SuggestionAttempts,
	}
}

// openRepository opens the configured database, runs pending migrations, and
// wraps it in a history repository. The caller owns the returned handle.
func (r *Runner) openRepository() (*repositories.GenerationRepository, *sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewGenerationRepository(db), db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
