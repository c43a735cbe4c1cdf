package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/seedmix/internal/formatter"
	"github.com/desertthunder/seedmix/internal/playlist"
	"github.com/desertthunder/seedmix/internal/repositories"
	"github.com/urfave/cli/v3"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true).MarginBottom(1)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
)

// Generate runs the pipeline once from a seeds file (or stdin) and renders
// or exports the result.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	seeds, err := r.readSeeds(cmd.String("file"))
	if err != nil {
		return err
	}

	catalog, err := r.catalogService()
	if err != nil {
		return err
	}

	generator := playlist.NewGenerator(catalog, r.suggesterService(), r.logger, r.generatorOptions())

	result, err := generator.Generate(ctx, playlist.Request{
		Songs:          seeds,
		DesiredTotal:   int(cmd.Int("total")),
		DesiredArtists: int(cmd.Int("artists")),
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if cmd.Bool("save") {
		r.saveGeneration(seeds, result)
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		path, err := formatter.WriteExport(result, cmd.String("format"), outputPath)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return r.writePlain("→ Saved %d songs to %s\n", result.Count, path)
	}

	return r.renderResult(result)
}

// readSeeds loads seed lines from a file, or stdin when no path is given.
func (r *Runner) readSeeds(path string) ([]string, error) {
	var raw []byte
	var err error

	if path == "" {
		r.logger.Info("reading seeds from stdin")
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seeds: %w", err)
	}

	seeds := playlist.SplitLines(string(raw))
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seed songs found")
	}
	return seeds, nil
}

func (r *Runner) renderResult(result *playlist.Result) error {
	if err := r.writePlain("%s\n", titleStyle.Render(fmt.Sprintf("Playlist (%d songs)", result.Count))); err != nil {
		return err
	}
	for i, song := range result.Songs {
		if err := r.writePlain("%3d. %s\n", i+1, song.String()); err != nil {
			return err
		}
	}
	if result.Success {
		return r.writePlainln("%s", okStyle.Render(fmt.Sprintf("✓ Reached target of %d songs", result.TargetTotal)))
	}
	return r.writePlainln("%s", warnStyle.Render("⚠ "+result.Warning))
}

// saveGeneration records the run in history. Failures only warn; the
// playlist itself already succeeded.
func (r *Runner) saveGeneration(seeds []string, result *playlist.Result) {
	repo, db, err := r.openRepository()
	if err != nil {
		r.logger.Warn("skipping history record", "error", err)
		return
	}
	defer db.Close()

	gen := &repositories.Generation{
		SeedText:     strings.Join(seeds, "\n"),
		PlaylistText: result.Text(),
		Count:        result.Count,
		TargetTotal:  result.TargetTotal,
		Success:      result.Success,
		Warning:      result.Warning,
	}
	if err := repo.Create(gen); err != nil {
		r.logger.Warn("failed to record generation", "error", err)
		return
	}
	_ = r.writePlain("%s\n", helpStyle.Render("recorded as "+gen.ID))
}
