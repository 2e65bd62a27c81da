package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mcontrol/internal/formatter"
	"github.com/desertthunder/mcontrol/internal/models"
	"github.com/desertthunder/mcontrol/internal/repositories"
	"github.com/desertthunder/mcontrol/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists recorded sign-in attempts in the requested format.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if s := cmd.String("status"); s != "" {
		status, err := models.ParseAttemptStatus(s)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		criteria["status"] = status
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	attempts, err := repositories.NewAttemptRepository(db).List(criteria)
	if err != nil {
		return err
	}
	r.logger.Debug("attempts loaded", "count", len(attempts))

	if cmd.Bool("tui") {
		return r.historyTUI(attempts)
	}

	format := cmd.String("format")
	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteExport(attempts, format, out); err != nil {
			return err
		}
		r.logger.Infof("history exported to %v", out)
		return r.writePlain("✓ %d attempts written to %s\n", len(attempts), out)
	}

	data, err := formatter.Render(format, attempts)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// HistoryPrune removes finished attempts older than --older-than.
func (r *Runner) HistoryPrune(ctx context.Context, cmd *cli.Command) error {
	olderThan := cmd.Duration("older-than")
	if olderThan <= 0 {
		return fmt.Errorf("%w: --older-than must be positive", shared.ErrInvalidFlag)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := repositories.NewAttemptRepository(db).Prune(time.Now().Add(-olderThan))
	if err != nil {
		return err
	}

	r.logger.Info("pruned sign-in attempts", "count", removed, "older_than", olderThan)
	return r.writePlain("✓ Pruned %d attempts\n", removed)
}
