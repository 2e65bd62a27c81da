package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/mcontrol/internal/events"
	"github.com/desertthunder/mcontrol/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Bus:    events.NewBus(logger),
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "mcontrol",
		Usage:    "Sign in through the browser and capture the OAuth redirect on a loopback listener",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if exitCode(err) == exitCancelled {
			logger.Warn("sign-in cancelled")
			os.Exit(exitCancelled)
		}
		logger.Fatalf("application error: %v", err)
	}
}

const exitCancelled = 130

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shared.ErrCancelled):
		return exitCancelled
	default:
		return 1
	}
}
