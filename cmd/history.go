package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// History lists recorded generations, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	repo, db, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	generations, err := repo.List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(generations, true)
	}

	if len(generations) == 0 {
		return r.writePlain("%s\n", helpStyle.Render("no generations recorded yet"))
	}

	for _, gen := range generations {
		status := okStyle.Render("✓")
		if !gen.Success {
			status = warnStyle.Render("⚠")
		}
		if err := r.writePlain("%s %s  %d/%d songs  %s\n",
			status, gen.CreatedAt.Format("2006-01-02 15:04"), gen.Count, gen.TargetTotal, helpStyle.Render(gen.ID)); err != nil {
			return err
		}
		if gen.Warning != "" {
			if err := r.writePlain("    %s\n", warnStyle.Render(gen.Warning)); err != nil {
				return err
			}
		}
		if cmd.Bool("full") {
			if err := r.writePlain("%s\n\n", gen.PlaylistText); err != nil {
				return err
			}
		}
	}
	return nil
}
