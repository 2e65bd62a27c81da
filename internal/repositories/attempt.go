package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mcontrol/internal/models"
	"github.com/desertthunder/mcontrol/internal/shared"
)

var _ models.Repository[*models.Attempt] = (*AttemptRepository)(nil)

const attemptColumns = `id, sequence, port, redirect_uri, status, error, started_at, finished_at, updated_at, deleted_at`

// AttemptRepository implements [models.Repository] for [models.Attempt] persistence.
type AttemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new [AttemptRepository] with the given database connection
func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create inserts a new attempt with generated ID and sequence
func (r *AttemptRepository) Create(attempt *models.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "attempts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO attempts (id, sequence, port, redirect_uri, status, error, started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		id, sequence, attempt.Port(), attempt.RedirectURI(), string(attempt.Status()), attempt.Error(),
		attempt.StartedAt(), nullTime(attempt.FinishedAt()), attempt.CreatedAt(), attempt.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}

	attempt.SetID(id)
	attempt.SetSequence(sequence)
	return nil
}

// Get retrieves an attempt by ID, excluding soft-deleted attempts
func (r *AttemptRepository) Get(id string) (*models.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE id = ? AND deleted_at IS NULL`

	attempt, err := scanAttempt(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: attempt %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query attempt: %w", err)
	}
	return attempt, nil
}

// Update writes the attempt's listener and status fields
func (r *AttemptRepository) Update(attempt *models.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	attempt.SetUpdatedAt(now)

	query := `
		UPDATE attempts
		SET port = ?, redirect_uri = ?, status = ?, error = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query,
		attempt.Port(), attempt.RedirectURI(), string(attempt.Status()), attempt.Error(),
		nullTime(attempt.FinishedAt()), now, attempt.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}

	return requireRow(result, attempt.ID())
}

// Delete soft-deletes an attempt by ID
func (r *AttemptRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE attempts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete attempt: %w", err)
	}

	return requireRow(result, id)
}

// List retrieves attempts matching the given criteria, newest first, excluding soft-deleted attempts.
//
// Supported criteria: "status" ([models.AttemptStatus] or string), "since" ([time.Time]) and "limit" (int).
func (r *AttemptRepository) List(criteria map[string]any) ([]*models.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE deleted_at IS NULL`
	args := []any{}

	switch status := criteria["status"].(type) {
	case models.AttemptStatus:
		if status != "" {
			query += " AND status = ?"
			args = append(args, string(status))
		}
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	if since, ok := criteria["since"].(time.Time); ok && !since.IsZero() {
		query += " AND started_at >= ?"
		args = append(args, since)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return attempts, nil
}

// Prune soft-deletes finished attempts that started before the cutoff and returns how many were removed.
// Pending attempts are kept.
func (r *AttemptRepository) Prune(before time.Time) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE attempts SET deleted_at = ? WHERE deleted_at IS NULL AND status != ? AND started_at < ?`,
		time.Now(), string(models.StatusPending), before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune attempts: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner) (*models.Attempt, error) {
	var (
		id          string
		sequence    int
		port        int
		redirectURI string
		status      string
		errMsg      string
		startedAt   time.Time
		finishedAt  sql.NullTime
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := s.Scan(&id, &sequence, &port, &redirectURI, &status, &errMsg, &startedAt, &finishedAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	attempt := models.NewAttempt(sequence)
	attempt.SetID(id)
	attempt.SetStartedAt(startedAt)
	attempt.Bind(port, redirectURI)

	var finished *time.Time
	if finishedAt.Valid {
		finished = &finishedAt.Time
	}
	attempt.Restore(models.AttemptStatus(status), errMsg, finished)
	attempt.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		attempt.SetDeletedAt(&deletedAt.Time)
	}

	return attempt, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: attempt %s not found or already deleted", shared.ErrNotFound, id)
	}
	return nil
}
