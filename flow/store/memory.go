package store

import (
	"context"
	"sync"
)

// MemStore is an in-memory implementation of Store[S].
//
// It stores instance records in a map. Designed for:
//   - Testing and development
//   - Single-process deployments where persistence isn't required
//
// MemStore is thread-safe and serializes Update per instance ID with a
// keyed mutex, so racing triggers for the same instance never interleave
// their read-modify-write windows.
//
// Limitations:
//   - Data is lost when the process terminates
//   - Not suitable for multiple processes sharing state
//
// For durable records use SQLiteStore or MySQLStore.
//
// Type parameter S is the record type to persist.
type MemStore[S any] struct {
	mu      sync.RWMutex
	records map[string]S
	keys    *keyedMutex
}

// NewMemStore creates a new in-memory store.
//
// Example:
//
//	st := store.NewMemStore[flow.Instance]()
//	engine := flow.New(st, artifacts, clients, emitter, flow.Options{})
func NewMemStore[S any]() *MemStore[S] {
	return &MemStore[S]{
		records: make(map[string]S),
		keys:    newKeyedMutex(),
	}
}

// Get retrieves the current record for an instance.
func (m *MemStore[S]) Get(_ context.Context, id string) (S, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		var zero S
		return zero, ErrNotFound
	}
	return record, nil
}

// Update applies an atomic read-modify-write for id.
//
// The per-id lock is held across the whole mutator application, so two
// mutators for the same id are strictly serialized while unrelated ids
// proceed concurrently.
func (m *MemStore[S]) Update(_ context.Context, id string, mutate func(S) (S, error)) (S, error) {
	unlock := m.keys.lock(id)
	defer unlock()

	m.mu.RLock()
	current := m.records[id] // zero value when absent
	m.mu.RUnlock()

	next, err := mutate(current)
	if err != nil {
		var zero S
		return zero, err
	}

	m.mu.Lock()
	m.records[id] = next
	m.mu.Unlock()

	return next, nil
}
