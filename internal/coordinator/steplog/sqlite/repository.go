// Package sqlite provides a SQLite-backed steplog.Repository.
//
// WAL mode is enabled on Open so the HTTP handler serving GET /runs/{id} can
// read while a run is appending.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/steplog"

	// Pure-Go driver, no CGO.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS step_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Many rows per run, one per transition.
    run_id          TEXT        NOT NULL,
    status          TEXT        NOT NULL,
    step            TEXT        NOT NULL DEFAULT '',
    detail          TEXT        NOT NULL DEFAULT '',

    -- JSON request, written on STARTED only.
    payload         TEXT,

    error_messages  TEXT        NOT NULL DEFAULT '[]',
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',

    -- RFC3339 TEXT, SQLite has no datetime type.
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_step_logs_run_id ON step_logs(run_id, id);
CREATE INDEX IF NOT EXISTS idx_step_logs_trace_id ON step_logs(trace_id);
`

// Repository is the SQLite implementation of steplog.Repository.
type Repository struct {
	db *sql.DB
}

var _ steplog.Repository = (*Repository)(nil)

// Open opens (or creates) the ledger database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/steps.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply step log schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends a ledger entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *steplog.Entry) error {
	const q = `
		INSERT INTO step_logs
			(run_id, status, step, detail, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.RunID,
		string(entry.Status),
		entry.Step,
		entry.Detail,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save step log for %q: %w", entry.RunID, err)
	}
	return nil
}

// List returns every entry of a run in insertion order.
func (r *Repository) List(ctx context.Context, runID string) ([]steplog.Entry, error) {
	const q = `
		SELECT run_id, status, step, detail, COALESCE(payload,''), error_messages,
		       trace_id, span_id, updated_at
		FROM   step_logs
		WHERE  run_id = ?
		ORDER  BY id ASC`

	rows, err := r.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list step log for %q: %w", runID, err)
	}
	defer rows.Close()

	var entries []steplog.Entry
	for rows.Next() {
		var (
			entry     steplog.Entry
			updatedAt string
		)
		if err := rows.Scan(
			&entry.RunID,
			&entry.Status,
			&entry.Step,
			&entry.Detail,
			&entry.Payload,
			&entry.ErrorMessages,
			&entry.TraceID,
			&entry.SpanID,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan step log for %q: %w", runID, err)
		}
		if entry.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list step log for %q: %w", runID, err)
	}

	if len(entries) == 0 {
		return nil, steplog.ErrRunNotFound
	}
	return entries, nil
}

// nullableString stores NULL instead of '' so only STARTED rows carry a payload.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
