// Package store provides persistence for workflow instance records.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a requested instance ID does not exist.
var ErrNotFound = errors.New("not found")

// Store provides durable persistence for per-instance records.
//
// The workflow engine is the only writer; it mutates records exclusively
// through Update. Semantics are last-writer-wins per instance, with writes
// flushed durably before Update returns.
//
// Concurrency contract: Update serializes the read-modify-write sequence
// per instance ID. Two triggers racing for the same ID never interleave
// their read-modify-write windows — a later mutator observes the fully
// committed result of an earlier one, never a half-applied record. The
// mutual exclusion is keyed by instance ID, not global: unrelated instances
// are never blocked on each other. No consistency is promised across IDs.
//
// Implementations:
//   - MemStore: in-memory, for tests and single-process use
//   - SQLiteStore: single-file durable store (modernc.org/sqlite)
//   - MySQLStore: shared-database store (go-sql-driver/mysql)
//
// Type parameter S is the record type to persist.
type Store[S any] interface {
	// Get retrieves the current record for an instance.
	//
	// Returns ErrNotFound if the ID has never been written.
	Get(ctx context.Context, id string) (S, error)

	// Update applies an atomic read-modify-write to the record for id.
	//
	// The mutator receives the current record, or the zero value of S if
	// the ID is absent, and returns the next record. If the mutator returns
	// an error, nothing is written and the error is returned unchanged.
	//
	// The returned record is the committed next record. The write is
	// flushed durably before Update returns.
	Update(ctx context.Context, id string, mutate func(S) (S, error)) (S, error)
}

// keyedMutex provides per-key mutual exclusion.
//
// Locks are created on first use and retained for the life of the store;
// the population is bounded by the number of distinct instance IDs.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

// lock acquires the mutex for key and returns its unlock func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
