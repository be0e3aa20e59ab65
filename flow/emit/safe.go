package emit

import (
	"io"
	"log"
)

// SafeEmitter wraps another Emitter and guarantees that emission can never
// abort the triggering operation.
//
// A panic from the wrapped emitter is recovered and logged to a last-resort
// fallback writer. This enforces the best-effort delivery contract at the
// boundary between the engine and arbitrary emitter implementations.
//
// Usage:
//
//	emitter := emit.Safe(emit.NewLogEmitter(f, true), os.Stderr)
type SafeEmitter struct {
	inner    Emitter
	fallback *log.Logger
}

// Safe wraps an emitter with panic recovery.
//
// Parameters:
//   - inner: The emitter to protect (nil is treated as a NullEmitter)
//   - fallback: Last-resort writer for recovery notices (nil drops them)
func Safe(inner Emitter, fallback io.Writer) *SafeEmitter {
	if inner == nil {
		inner = NewNullEmitter()
	}
	s := &SafeEmitter{inner: inner}
	if fallback != nil {
		s.fallback = log.New(fallback, "emit: ", log.LstdFlags)
	}
	return s
}

// Emit forwards the event to the wrapped emitter, swallowing panics.
func (s *SafeEmitter) Emit(event Event) {
	defer func() {
		if r := recover(); r != nil {
			if s.fallback != nil {
				s.fallback.Printf("emitter panicked on %s event for instance %s: %v", event.Type, event.InstanceID, r)
			}
		}
	}()

	s.inner.Emit(event)
}
