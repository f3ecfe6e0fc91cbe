// Package memory provides a process-local snapshot repository for demos and tests.
package memory

import (
	"context"
	"sync"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// SnapshotRepository keeps snapshots in a map.
type SnapshotRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewSnapshotRepository creates an empty repository.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{data: make(map[string][]byte)}
}

func (r *SnapshotRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.data[key]
	if !ok {
		return nil, budget.ErrSnapshotNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (r *SnapshotRepository) Save(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	r.data[key] = stored
	return nil
}
