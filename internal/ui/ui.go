package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/mcontrol/internal/shared"
)

// WaitState is the phase shown by [WaitModel].
type WaitState int

const (
	Waiting WaitState = iota
	Received
	Failed
	Aborted
)

// WaitFunc blocks until the authorization code arrives or the attempt ends.
type WaitFunc func(ctx context.Context) (string, error)

// WaitModel shows the authorization URL and a spinner until the callback arrives.
type WaitModel struct {
	ctx         context.Context
	authURL     string
	redirectURI string
	wait        WaitFunc
	open        shared.Opener
	started     time.Time
	state       WaitState
	code        string
	err         error
	notice      string
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
}

// NewWaitModel creates the wait screen for one sign-in attempt. open may be nil.
func NewWaitModel(ctx context.Context, authURL, redirectURI string, wait WaitFunc, open shared.Opener) *WaitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return &WaitModel{
		ctx:         ctx,
		authURL:     authURL,
		redirectURI: redirectURI,
		wait:        wait,
		open:        open,
		started:     time.Now(),
		spinner:     s,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init starts the spinner and the blocking wait.
func (m *WaitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForCallback())
}

// Update handles incoming messages and updates the model state.
func (m *WaitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			if m.state == Waiting {
				m.state = Aborted
				m.err = fmt.Errorf("%w: sign-in aborted", shared.ErrCancelled)
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.open):
			if m.state == Waiting && m.open != nil {
				return m, m.openBrowser()
			}
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgCallbackReceived:
			res := msg.data.(callbackResult)
			if m.state != Waiting {
				return m, nil
			}
			m.code, m.err = res.code, res.err
			if res.err != nil {
				m.state = Failed
			} else {
				m.state = Received
			}
			return m, tea.Quit
		case MsgBrowserOpened:
			if err, _ := msg.data.(error); err != nil {
				m.notice = fmt.Sprintf("Could not open browser: %v", err)
			} else {
				m.notice = "Browser opened."
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI based on the current wait state.
func (m *WaitModel) View() string {
	switch m.state {
	case Received:
		return styles.ok.Render("✓ Sign-in successful") + "\n"
	case Failed:
		return styles.err.Render(fmt.Sprintf("✗ Sign-in failed: %v", m.err)) + "\n"
	case Aborted:
		return styles.warn.Render("Sign-in aborted") + "\n"
	}

	title := styles.title.Render("Sign in to mcontrol")
	body := fmt.Sprintf(
		"Open this URL in your browser:\n\n  %s\n\n%s Waiting for the callback on %s (%s)",
		styles.link.Render(m.authURL),
		m.spinner.View(),
		m.redirectURI,
		time.Since(m.started).Round(time.Second),
	)
	if m.notice != "" {
		body += "\n" + styles.help.Render(m.notice)
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, body, m.help.View(m.keys))
}

// Result returns the received code, or why the attempt ended without one.
func (m *WaitModel) Result() (string, error) {
	if m.state == Waiting {
		return "", fmt.Errorf("%w: sign-in still in progress", shared.ErrCancelled)
	}
	return m.code, m.err
}

// State returns the current phase.
func (m *WaitModel) State() WaitState {
	return m.state
}

func (m *WaitModel) waitForCallback() tea.Cmd {
	return func() tea.Msg {
		code, err := m.wait(m.ctx)
		return callbackMsg(code, err)
	}
}

func (m *WaitModel) openBrowser() tea.Cmd {
	return func() tea.Msg {
		return browserOpenedMsg(m.open(m.authURL))
	}
}
