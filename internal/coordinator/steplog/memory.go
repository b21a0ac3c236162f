package steplog

import (
	"context"
	"sync"
)

// MemoryRepository keeps the ledger in process memory. It is used when no
// ledger database is configured and in tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string][]Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[string][]Entry)}
}

func (r *MemoryRepository) Save(_ context.Context, entry *Entry) error {
	if entry == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[entry.RunID] = append(r.runs[entry.RunID], *entry)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, runID string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, ok := r.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return append([]Entry(nil), entries...), nil
}
