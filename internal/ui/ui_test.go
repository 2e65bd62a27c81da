package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/mcontrol/internal/models"
	"github.com/desertthunder/mcontrol/internal/shared"
)

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestWaitModel(wait WaitFunc, open shared.Opener) *WaitModel {
	return NewWaitModel(context.Background(), "https://accounts.example/auth?client_id=x", "http://127.0.0.1:5000", wait, open)
}

func TestWaitModel(t *testing.T) {
	t.Run("Waiting View", func(t *testing.T) {
		m := newTestWaitModel(nil, nil)
		view := m.View()

		for _, want := range []string{"client_id=x", "http://127.0.0.1:5000"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
		if _, err := m.Result(); !errors.Is(err, shared.ErrCancelled) {
			t.Errorf("expected in-progress result to be ErrCancelled, got %v", err)
		}
	})

	t.Run("Wait Command Delivers Callback", func(t *testing.T) {
		m := newTestWaitModel(func(context.Context) (string, error) { return "abc", nil }, nil)

		msg := m.waitForCallback()()
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatal("expected quit command")
		}

		code, err := m.Result()
		if err != nil || code != "abc" {
			t.Errorf("expected (abc, nil), got (%q, %v)", code, err)
		}
		if m.State() != Received {
			t.Errorf("expected Received state, got %d", m.State())
		}
		if !strings.Contains(m.View(), "Sign-in successful") {
			t.Errorf("unexpected view %q", m.View())
		}
	})

	t.Run("Failed Callback", func(t *testing.T) {
		m := newTestWaitModel(nil, nil)
		m.Update(callbackMsg("", shared.ErrTimeout))

		if _, err := m.Result(); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if m.State() != Failed {
			t.Errorf("expected Failed state, got %d", m.State())
		}
	})

	t.Run("Quit Aborts", func(t *testing.T) {
		m := newTestWaitModel(nil, nil)
		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, err := m.Result(); !errors.Is(err, shared.ErrCancelled) {
			t.Errorf("expected ErrCancelled, got %v", err)
		}

		m.Update(callbackMsg("late", nil))
		if m.State() != Aborted {
			t.Error("a late callback should not replace an aborted attempt")
		}
	})

	t.Run("Open Browser", func(t *testing.T) {
		var opened string
		m := newTestWaitModel(nil, func(url string) error {
			opened = url
			return errors.New("no display")
		})

		_, cmd := m.Update(keyPress("o"))
		if cmd == nil {
			t.Fatal("expected open command")
		}
		m.Update(cmd())

		if opened != m.authURL {
			t.Errorf("expected %s to be opened, got %s", m.authURL, opened)
		}
		if !strings.Contains(m.View(), "no display") {
			t.Error("expected browser error in view")
		}
	})
}

func TestHistoryModel(t *testing.T) {
	received := models.NewAttempt(2)
	received.Bind(5000, "http://127.0.0.1:5000")
	received.Finish(models.StatusReceived, nil)

	timedOut := models.NewAttempt(1)
	timedOut.Finish(models.StatusTimedOut, shared.ErrTimeout)

	m := NewHistoryModel([]*models.Attempt{received, timedOut})
	if m.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", m.Len())
	}

	item := attemptItem{attempt: timedOut}
	if !strings.Contains(item.Description(), shared.ErrTimeout.Error()) {
		t.Errorf("expected error in description, got %q", item.Description())
	}
	if !strings.Contains(attemptItem{attempt: received}.Description(), "port 5000") {
		t.Error("expected port in description")
	}

	if _, cmd := m.Update(keyPress("q")); cmd == nil {
		t.Error("expected quit command")
	}
}
