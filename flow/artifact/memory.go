package artifact

import (
	"context"
	"sync"
)

// MemStore is an in-memory artifact store for tests and single-process use.
//
// Thread-safe for concurrent access.
type MemStore struct {
	mu     sync.RWMutex
	drafts map[string]string
}

// NewMemStore creates an empty in-memory artifact store.
func NewMemStore() *MemStore {
	return &MemStore{drafts: make(map[string]string)}
}

// SaveDraft stores html as the latest draft for an instance.
func (m *MemStore) SaveDraft(_ context.Context, instanceID, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drafts[instanceID] = html
	return nil
}

// LatestDraft returns the most recently saved draft for an instance.
func (m *MemStore) LatestDraft(_ context.Context, instanceID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	html, ok := m.drafts[instanceID]
	if !ok {
		return "", ErrNotFound
	}
	return html, nil
}
