package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// AttemptStatus describes where a sign-in attempt ended.
type AttemptStatus string

const (
	StatusPending    AttemptStatus = "pending"     // listener bound, waiting for the browser
	StatusReceived   AttemptStatus = "received"    // a code was delivered
	StatusTimedOut   AttemptStatus = "timed_out"   // nothing arrived before the deadline
	StatusCancelled  AttemptStatus = "cancelled"   // the user or host gave up
	StatusBindFailed AttemptStatus = "bind_failed" // no loopback socket could be acquired
)

// AttemptStatuses lists every status in lifecycle order.
var AttemptStatuses = []AttemptStatus{StatusPending, StatusReceived, StatusTimedOut, StatusCancelled, StatusBindFailed}

// Valid reports whether s is a known status.
func (s AttemptStatus) Valid() bool {
	return slices.Contains(AttemptStatuses, s)
}

// Terminal reports whether no further transitions are expected.
func (s AttemptStatus) Terminal() bool {
	return s.Valid() && s != StatusPending
}

// ParseAttemptStatus converts a string (e.g. from a CLI flag) to an [AttemptStatus].
func ParseAttemptStatus(s string) (AttemptStatus, error) {
	status := AttemptStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown attempt status %q", s)
	}
	return status, nil
}

var _ Model = (*Attempt)(nil)

// Attempt is one run of the loopback sign-in flow.
type Attempt struct {
	id          string
	sequence    int
	port        int
	redirectURI string
	status      AttemptStatus
	errMsg      string
	startedAt   time.Time
	finishedAt  *time.Time
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewAttempt creates a pending attempt started now.
func NewAttempt(sequence int) *Attempt {
	now := time.Now()
	return &Attempt{
		sequence:  sequence,
		status:    StatusPending,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (a *Attempt) ID() string { return a.id }
func (a *Attempt) Sequence() int { return a.sequence }
func (a *Attempt) Port() int { return a.port }
func (a *Attempt) RedirectURI() string { return a.redirectURI }
func (a *Attempt) Status() AttemptStatus { return a.status }
func (a *Attempt) Error() string { return a.errMsg }
func (a *Attempt) StartedAt() time.Time { return a.startedAt }
func (a *Attempt) FinishedAt() *time.Time { return a.finishedAt }
func (a *Attempt) CreatedAt() time.Time { return a.createdAt }
func (a *Attempt) UpdatedAt() time.Time { return a.updatedAt }
func (a *Attempt) DeletedAt() *time.Time { return a.deletedAt }
func (a *Attempt) SetID(id string) { a.id = id }
func (a *Attempt) SetSequence(seq int) { a.sequence = seq }
func (a *Attempt) SetUpdatedAt(t time.Time) { a.updatedAt = t }
func (a *Attempt) SetDeletedAt(t *time.Time) { a.deletedAt = t }

// SetStartedAt overrides the start time; used when loading from storage.
func (a *Attempt) SetStartedAt(t time.Time) {
	a.startedAt = t
	a.createdAt = t
}

// Bind records the listener the attempt is waiting on.
func (a *Attempt) Bind(port int, redirectURI string) {
	a.port = port
	a.redirectURI = redirectURI
}

// Finish moves the attempt to a terminal status. reason is stored for failures and may be nil.
func (a *Attempt) Finish(status AttemptStatus, reason error) {
	now := time.Now()
	a.status = status
	a.finishedAt = &now
	a.updatedAt = now
	if reason != nil {
		a.errMsg = reason.Error()
	}
}

// Restore sets the stored status fields; used when loading from storage.
func (a *Attempt) Restore(status AttemptStatus, errMsg string, finishedAt *time.Time) {
	a.status = status
	a.errMsg = errMsg
	a.finishedAt = finishedAt
}

// Duration returns how long the attempt ran, or zero while pending.
func (a *Attempt) Duration() time.Duration {
	if a.finishedAt == nil {
		return 0
	}
	return a.finishedAt.Sub(a.startedAt)
}

// Validate checks the attempt's invariants.
func (a *Attempt) Validate() error {
	if !a.status.Valid() {
		return fmt.Errorf("invalid status %q", a.status)
	}
	if a.port < 0 || a.port > 65535 {
		return fmt.Errorf("invalid port %d", a.port)
	}
	if a.status == StatusReceived && a.port == 0 {
		return errors.New("received attempt must have a port")
	}
	if a.status.Terminal() && a.finishedAt == nil {
		return errors.New("finished attempt must have a finish time")
	}
	return nil
}
