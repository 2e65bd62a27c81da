// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/mcontrol/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// loginCommand runs the browser sign-in flow
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with the browser and capture the authorization code",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show an interactive screen while waiting for the callback",
			},
			&cli.BoolFlag{
				Name:  "print-code",
				Usage: "Print the received authorization code",
			},
		},
		Action: r.Login,
	}
}

// listenCommand runs a bare loopback listener for embedding hosts
func listenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "Bind a one-shot loopback listener, print its port, then print the received code",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up when no callback arrives in time (0 waits until interrupted)",
				Value: 5 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON lines",
			},
		},
		Action: r.Listen,
	}
}

// historyCommand shows and prunes recorded sign-in attempts
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded sign-in attempts",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of attempts to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show attempts with this status (pending, received, timed_out, cancelled, bind_failed)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, csv, markdown, json)",
				Value:   formatter.Text,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to this file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Browse attempts interactively",
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:  "prune",
				Usage: "Delete finished attempts older than a duration",
				Flags: []cli.Flag{
					configFlag(),
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Age of the attempts to delete",
						Value: 720 * time.Hour,
					},
				},
				Action: r.HistoryPrune,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "client-id",
						Usage: "OAuth client ID to store in the new file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
