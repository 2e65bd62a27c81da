package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mcontrol/internal/auth"
	"github.com/desertthunder/mcontrol/internal/loopback"
	"github.com/desertthunder/mcontrol/internal/shared"
	"github.com/urfave/cli/v3"
)

type listenStarted struct {
	Port        int    `json:"port"`
	RedirectURI string `json:"redirect_uri"`
}

// Listen binds a single loopback listener, prints its port and blocks until the callback arrives.
//
// The code is printed on its own line (or as {"code": ...} with --json) and also emitted on the event bus.
func (r *Runner) Listen(ctx context.Context, cmd *cli.Command) error {
	timeout := cmd.Duration("timeout")
	if timeout < 0 {
		return fmt.Errorf("%w: --timeout must not be negative", shared.ErrInvalidFlag)
	}
	useJSON := cmd.Bool("json")

	l, err := loopback.Listen(loopback.WithLogger(r.logger), loopback.WithTimeout(timeout))
	if err != nil {
		return err
	}

	if useJSON {
		err = r.writeJSON(listenStarted{Port: l.Port(), RedirectURI: l.RedirectURI()}, false)
	} else {
		err = r.writePlain("%d\n", l.Port())
	}
	if err != nil {
		l.Close()
		return err
	}

	notifications := make(chan loopback.CallbackNotification, 1)
	sink := auth.Tee(loopback.ChanSink(notifications), auth.BusSink(r.bus))

	started := time.Now()
	l.Serve(ctx, sink)

	select {
	case n := <-notifications:
		r.logger.Info("authorization code received", "port", l.Port())
		if useJSON {
			return r.writeJSON(n, false)
		}
		return r.writePlain("%s\n", n.Code)
	default:
	}

	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %v", shared.ErrCancelled, ctx.Err())
	case timeout > 0 && time.Since(started) >= timeout:
		return fmt.Errorf("%w: no callback within %s", shared.ErrTimeout, timeout)
	default:
		return fmt.Errorf("%w: no authorization code was received", shared.ErrAuthFailed)
	}
}
