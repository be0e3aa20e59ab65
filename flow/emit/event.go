package emit

import "time"

// Level classifies the severity of an emitted event.
type Level string

// Severity levels used by the workflow engine.
const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event types emitted by the workflow engine.
//
// The engine emits one event at each decision point, in execution order:
// receipt of a trigger, before drafting, after a review submission, on the
// review verdict, before delivery, on every state transition, and on a
// terminal failure. Exactly one TypeTransition event is emitted per state
// transition, labeled with the new status in Meta["status"].
const (
	// TypeReceived is emitted when a trigger (send, callback, abort) is accepted.
	TypeReceived = "received"

	// TypeDrafting is emitted immediately before a drafting-collaborator call.
	TypeDrafting = "drafting"

	// TypeReviewSubmitted is emitted after a draft is handed to the review collaborator.
	TypeReviewSubmitted = "review_submitted"

	// TypeReviewAccepted is emitted when a review outcome counts as accepted.
	TypeReviewAccepted = "review_accepted"

	// TypeReviewRejected is emitted when a review outcome is not accepted.
	TypeReviewRejected = "review_rejected"

	// TypeDelivering is emitted immediately before a delivery-collaborator call.
	TypeDelivering = "delivering"

	// TypeTransition is emitted once per instance state transition.
	// Meta["status"] carries the new status.
	TypeTransition = "transition"

	// TypeFailure is emitted when a collaborator failure drives an instance
	// toward abort. Meta["error"] carries the failure detail.
	TypeFailure = "failure"
)

// Event represents one observability event emitted during an instance
// lifecycle.
//
// Events provide insight into engine behavior:
//   - Trigger receipt and validation
//   - Collaborator calls (drafting, review, delivery)
//   - State transitions
//   - Terminal failures
//
// Events are emitted to an Emitter which can:
//   - Log to stdout/stderr or an append-only file
//   - Send to OpenTelemetry
//   - Buffer in memory for tests and dashboards
type Event struct {
	// Time is when the event was created.
	Time time.Time

	// Level is the event severity (info, warn, error).
	Level Level

	// Type is one of the Type* constants.
	Type string

	// Msg is a human-readable description of the event.
	Msg string

	// InstanceID identifies the workflow instance that emitted this event.
	InstanceID string

	// Username is the owner of the triggering request, when known.
	Username string

	// TraceID correlates all events from one trigger, including detached
	// continuations. Generated when the caller does not supply one.
	TraceID string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "status": new instance status on a transition
	//   - "error": failure detail
	//   - "generation": drafting invocation count
	//   - "loop_index": zero-based review loop counter
	//   - "model": drafting model identifier
	Meta map[string]interface{}
}
