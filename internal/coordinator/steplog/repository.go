package steplog

import (
	"context"
	"errors"
)

// ErrRunNotFound is returned by List when a run has no entries.
var ErrRunNotFound = errors.New("steplog: run not found")

// Repository persists ledger entries.
type Repository interface {
	// Save appends one entry; existing rows are never updated.
	Save(ctx context.Context, entry *Entry) error
	// List returns the entries of a run in write order.
	List(ctx context.Context, runID string) ([]Entry, error)
}
