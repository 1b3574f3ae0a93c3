// Package history stores credential probe attempts in PostgreSQL.
package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"keyprobe/internal/probe"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrInvalidLimit = errors.New("limit must be between 1 and 100")

// Entry is the API representation of a recorded attempt.
type Entry struct {
	ID           string    `json:"id"`
	KeyPrefix    string    `json:"keyPrefix"`
	Model        string    `json:"model"`
	Status       string    `json:"status"`
	ErrorType    string    `json:"errorType,omitempty"`
	ErrorMessage string    `json:"error,omitempty"`
	RequestID    string    `json:"upstreamRequestId,omitempty"`
	LatencyMs    int64     `json:"latencyMs"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Datastore handles persistence of probe attempts.
// It performs only database operations and returns raw errors.
type Datastore struct {
	db *sql.DB
}

// NewDatastore creates a new probe history datastore.
func NewDatastore(db *sql.DB) *Datastore {
	return &Datastore{db: db}
}

// Record inserts a probe attempt. It satisfies probe.Recorder.
func (ds *Datastore) Record(ctx context.Context, a *probe.Attempt) error {
	query := `
		INSERT INTO probe_attempts (id, key_prefix, model, status, error_type, error_message, request_id, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := ds.db.ExecContext(ctx, query,
		a.ID, a.KeyPrefix, a.Model, a.Status,
		nullString(a.ErrorType), nullString(a.ErrorMessage), nullString(a.RequestID),
		a.Latency.Milliseconds(), a.CreatedAt,
	)
	return err
}

// ListRecent returns the most recent attempts, newest first.
func (ds *Datastore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 || limit > MaxListLimit {
		return nil, ErrInvalidLimit
	}

	query := `
		SELECT id, key_prefix, model, status, error_type, error_message, request_id, latency_ms, created_at
		FROM probe_attempts
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := ds.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                              Entry
			errType, errMessage, requestID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.KeyPrefix, &e.Model, &e.Status, &errType, &errMessage, &requestID, &e.LatencyMs, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ErrorType = errType.String
		e.ErrorMessage = errMessage.String
		e.RequestID = requestID.String
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
