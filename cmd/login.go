package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mcontrol/internal/auth"
	"github.com/desertthunder/mcontrol/internal/repositories"
	"github.com/desertthunder/mcontrol/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login runs the browser sign-in flow and reports the received authorization code.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	useTUI := cmd.Bool("tui")
	openBrowser := !cmd.Bool("no-browser")

	if useTUI {
		// Redirect logs to file to avoid interfering with TUI rendering
		fileLogger, err := shared.NewFileLogger("./tmp/mcontrol-tui.log")
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []auth.Option{auth.WithLogger(r.logger), auth.WithOutput(r.output)}
	if openBrowser {
		opts = append(opts, auth.WithOpener(r.opener))
	} else {
		opts = append(opts, auth.WithOpener(nil))
	}

	if db, err := shared.OpenDatabase(config.Database); err != nil {
		r.logger.Warn("attempt history disabled", "error", err)
	} else {
		defer db.Close()
		opts = append(opts, auth.WithStore(repositories.NewAttemptRepository(db)))
	}

	flow := auth.NewFlow(config, r.bus, opts...)

	var code string
	if useTUI {
		code, err = r.loginTUI(ctx, flow, openBrowser)
	} else {
		r.writePlain("→ Waiting for authorization (%s timeout)...\n", config.OAuth.Timeout)
		code, err = flow.SignIn(ctx)
	}
	if err != nil {
		return err
	}

	r.logger.Info("authorization code received")
	if cmd.Bool("print-code") {
		return r.writePlain("%s\n", code)
	}
	return r.writePlain("✓ Sign-in successful\n")
}
