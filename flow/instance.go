// Package flow implements the instance lifecycle state machine that
// coordinates an email-drafting workflow across drafting, human-review
// and delivery collaborators.
//
// An Instance is one workflow run. The Engine is its only writer: it
// receives triggers (a new send request, a review callback, an explicit
// abort), consults the stored record, invokes collaborators, computes the
// next status and persists it. Collaborator calls run outside the store's
// per-id critical section; the record is claimed with a short
// read-modify-write before the call and resolved with another one after.
package flow

import "time"

// Status is the lifecycle state of an Instance.
type Status string

const (
	// StatusActive means drafting or reviewing is in progress.
	StatusActive Status = "active"

	// StatusWait means a review was submitted and the instance is
	// awaiting an external callback.
	StatusWait Status = "wait"

	// StatusFinished means the document was delivered. Terminal.
	StatusFinished Status = "finished"

	// StatusAbort means the instance terminated without delivery. Terminal.
	StatusAbort Status = "abort"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusAbort
}

// Instance is the durable per-run record. The zero value marks an absent
// record inside store mutators.
type Instance struct {
	// ID is the opaque instance identifier. Immutable once set.
	ID string `json:"id"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// GenerationCount is incremented once per drafting invocation and
	// never decremented. The review loop index is GenerationCount - 1.
	GenerationCount int `json:"generation_count"`

	// Owner is the username that first activated the instance.
	// Immutable once set.
	Owner string `json:"owner"`

	// Note carries the reason an instance reached abort, or the last
	// review note. Informational only.
	Note string `json:"note,omitempty"`

	// Compose is the merged configuration captured at send time, so a
	// later approve callback delivers with the same subject, recipients
	// and sender the send request resolved to.
	Compose ComposeConfig `json:"compose"`

	// StartedAt is stamped once, on first activation.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is stamped once, on reaching a terminal state.
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// LoopIndex returns the zero-based review loop index for the current
// generation.
func (in Instance) LoopIndex() int {
	return in.GenerationCount - 1
}
