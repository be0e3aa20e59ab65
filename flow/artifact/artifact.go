// Package artifact stores the latest drafted HTML document per instance.
//
// The workflow engine writes a draft after every successful drafting call
// and reads it back on an "approve" callback (to deliver it) and on a
// "modify" callback (to hand it to the drafting collaborator as the prior
// document). Only the latest draft is kept; earlier generations are
// overwritten.
package artifact

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no draft has been saved for an instance.
var ErrNotFound = errors.New("no draft for instance")

// Store persists the latest drafted HTML per instance.
//
// Implementations:
//   - DirStore: one file per instance under a directory
//   - MemStore: in-memory, for tests
type Store interface {
	// SaveDraft stores html as the latest draft for an instance,
	// replacing any earlier draft.
	SaveDraft(ctx context.Context, instanceID, html string) error

	// LatestDraft returns the most recently saved draft for an instance.
	// Returns ErrNotFound if no draft has been saved.
	LatestDraft(ctx context.Context, instanceID string) (string, error)
}
