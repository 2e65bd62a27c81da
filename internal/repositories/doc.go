// Package repositories implements SQLite persistence for sign-in history.
//
// [AttemptRepository] stores [models.Attempt] rows with soft deletes via deleted_at timestamps; deleted records are
// excluded from queries by default.
//
// Sequence numbers provide stable, human-readable ordering (e.g. attempt #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
