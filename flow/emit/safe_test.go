package emit

import (
	"bytes"
	"strings"
	"testing"
)

type panickyEmitter struct{}

func (panickyEmitter) Emit(Event) { panic("backend unavailable") }

// TestSafeEmitter_RecoversPanic verifies a panicking backend never propagates.
func TestSafeEmitter_RecoversPanic(t *testing.T) {
	var fallback bytes.Buffer
	emitter := Safe(panickyEmitter{}, &fallback)

	// Must not panic.
	emitter.Emit(Event{Type: TypeTransition, InstanceID: "inst-001"})

	out := fallback.String()
	if !strings.Contains(out, "backend unavailable") {
		t.Errorf("expected fallback log to carry the panic detail, got: %s", out)
	}
	if !strings.Contains(out, "inst-001") {
		t.Errorf("expected fallback log to name the instance, got: %s", out)
	}
}

// TestSafeEmitter_NilFallback verifies recovery works with no fallback writer.
func TestSafeEmitter_NilFallback(t *testing.T) {
	emitter := Safe(panickyEmitter{}, nil)
	emitter.Emit(Event{Type: TypeFailure}) // must not panic
}

// TestSafeEmitter_NilInner verifies a nil inner emitter is treated as null.
func TestSafeEmitter_NilInner(t *testing.T) {
	emitter := Safe(nil, nil)
	emitter.Emit(Event{Type: TypeReceived}) // must not panic
}

// TestSafeEmitter_PassThrough verifies events reach a healthy backend.
func TestSafeEmitter_PassThrough(t *testing.T) {
	buffered := NewBufferedEmitter()
	emitter := Safe(buffered, nil)

	emitter.Emit(Event{Type: TypeReceived, InstanceID: "inst-002"})

	if len(buffered.History("inst-002")) != 1 {
		t.Error("expected event to reach the wrapped emitter")
	}
}
