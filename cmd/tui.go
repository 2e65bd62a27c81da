package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mcontrol/internal/auth"
	"github.com/desertthunder/mcontrol/internal/models"
	"github.com/desertthunder/mcontrol/internal/ui"
)

// loginTUI shows the wait screen for one sign-in attempt and returns its result.
func (r *Runner) loginTUI(ctx context.Context, flow *auth.Flow, openBrowser bool) (string, error) {
	session, err := flow.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer session.Close()

	if openBrowser {
		if err := r.opener(session.AuthURL); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
		}
	}

	model := ui.NewWaitModel(ctx, session.AuthURL, session.RedirectURI, session.Wait, r.opener)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return "", fmt.Errorf("error running TUI: %w", err)
	}

	return model.Result()
}

// historyTUI browses attempts in a full-screen list.
func (r *Runner) historyTUI(attempts []*models.Attempt) error {
	p := tea.NewProgram(ui.NewHistoryModel(attempts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
