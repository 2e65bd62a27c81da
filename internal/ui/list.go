package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/mcontrol/internal/models"
)

var (
	_ list.Item = attemptItem{}
)

// attemptItem wraps [models.Attempt] to implement [list.Item].
type attemptItem struct {
	attempt *models.Attempt
}

func (i attemptItem) FilterValue() string { return string(i.attempt.Status()) }
func (i attemptItem) Title() string {
	return fmt.Sprintf("#%d %s", i.attempt.Sequence(), styles.status(string(i.attempt.Status())))
}
func (i attemptItem) Description() string {
	desc := i.attempt.StartedAt().Local().Format(time.DateTime)
	if i.attempt.Port() > 0 {
		desc = fmt.Sprintf("%s • port %d", desc, i.attempt.Port())
	}
	if d := i.attempt.Duration(); d > 0 {
		desc = fmt.Sprintf("%s • %s", desc, d.Round(time.Millisecond))
	}
	if i.attempt.Error() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.attempt.Error())
	}
	return desc
}

// HistoryModel lists recorded sign-in attempts, newest first.
type HistoryModel struct {
	list list.Model
	help help.Model
	quit key.Binding
}

// NewHistoryModel creates the history browser for attempts.
func NewHistoryModel(attempts []*models.Attempt) *HistoryModel {
	items := make([]list.Item, len(attempts))
	for i, a := range attempts {
		items[i] = attemptItem{attempt: a}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Sign-in attempts"
	l.SetShowHelp(false)

	return &HistoryModel{
		list: l,
		help: help.New(),
		quit: newKeyMap().quit,
	}
}

func (m *HistoryModel) Init() tea.Cmd {
	return nil
}

func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering && key.Matches(msg, m.quit) {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *HistoryModel) View() string {
	return fmt.Sprintf("%s\n\n%s", m.list.View(), m.help.ShortHelpView([]key.Binding{m.quit}))
}

// Len returns the number of listed attempts.
func (m *HistoryModel) Len() int {
	return len(m.list.Items())
}
