package models

import (
	"errors"
	"testing"
)

func TestAttempt(t *testing.T) {
	t.Run("NewAttempt Is Pending", func(t *testing.T) {
		a := NewAttempt(1)
		if a.Status() != StatusPending {
			t.Errorf("expected pending, got %s", a.Status())
		}
		if a.Duration() != 0 {
			t.Errorf("expected zero duration while pending, got %s", a.Duration())
		}
		if err := a.Validate(); err != nil {
			t.Errorf("expected valid attempt, got %v", err)
		}
	})

	t.Run("Finish", func(t *testing.T) {
		a := NewAttempt(1)
		a.Bind(4000, "http://127.0.0.1:4000")
		a.Finish(StatusTimedOut, errors.New("deadline"))

		if a.FinishedAt() == nil {
			t.Fatal("expected finish time")
		}
		if a.Error() != "deadline" {
			t.Errorf("expected error deadline, got %q", a.Error())
		}
		if err := a.Validate(); err != nil {
			t.Errorf("expected valid attempt, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Attempt)
		}{
			{name: "unknown status", mutate: func(a *Attempt) { a.Restore("lost", "", nil) }},
			{name: "port out of range", mutate: func(a *Attempt) { a.Bind(65536, "") }},
			{name: "received without port", mutate: func(a *Attempt) { a.Finish(StatusReceived, nil) }},
			{name: "terminal without finish", mutate: func(a *Attempt) { a.Restore(StatusCancelled, "", nil) }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				a := NewAttempt(1)
				tt.mutate(a)
				if err := a.Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})

	t.Run("ParseAttemptStatus", func(t *testing.T) {
		if s, err := ParseAttemptStatus("received"); err != nil || s != StatusReceived {
			t.Errorf("expected received, got %s (%v)", s, err)
		}
		if _, err := ParseAttemptStatus("done"); err == nil {
			t.Error("expected error for unknown status")
		}
	})
}
