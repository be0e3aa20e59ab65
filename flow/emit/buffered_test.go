package emit

import (
	"sync"
	"testing"
)

// TestBufferedEmitter_History verifies events are captured per instance in order.
func TestBufferedEmitter_History(t *testing.T) {
	emitter := NewBufferedEmitter()

	emitter.Emit(Event{Level: LevelInfo, Type: TypeReceived, InstanceID: "inst-A"})
	emitter.Emit(Event{Level: LevelInfo, Type: TypeDrafting, InstanceID: "inst-A"})
	emitter.Emit(Event{Level: LevelInfo, Type: TypeReceived, InstanceID: "inst-B"})
	emitter.Emit(Event{Level: LevelInfo, Type: TypeTransition, InstanceID: "inst-A", Meta: map[string]interface{}{"status": "wait"}})

	history := emitter.History("inst-A")
	if len(history) != 3 {
		t.Fatalf("expected 3 events for inst-A, got %d", len(history))
	}

	// Emission order is preserved.
	wantOrder := []string{TypeReceived, TypeDrafting, TypeTransition}
	for i, want := range wantOrder {
		if history[i].Type != want {
			t.Errorf("event[%d].Type = %q, want %q", i, history[i].Type, want)
		}
	}

	if len(emitter.History("inst-B")) != 1 {
		t.Errorf("expected 1 event for inst-B")
	}
	if len(emitter.History("missing")) != 0 {
		t.Errorf("expected no events for unknown instance")
	}
}

// TestBufferedEmitter_HistoryWithFilter verifies filter combinations.
func TestBufferedEmitter_HistoryWithFilter(t *testing.T) {
	emitter := NewBufferedEmitter()

	emitter.Emit(Event{Level: LevelInfo, Type: TypeReceived, InstanceID: "inst-A", TraceID: "t-1"})
	emitter.Emit(Event{Level: LevelWarn, Type: TypeReviewRejected, InstanceID: "inst-A", TraceID: "t-1"})
	emitter.Emit(Event{Level: LevelError, Type: TypeFailure, InstanceID: "inst-A", TraceID: "t-2"})
	emitter.Emit(Event{Level: LevelInfo, Type: TypeTransition, InstanceID: "inst-A", TraceID: "t-2"})

	t.Run("filter by type", func(t *testing.T) {
		got := emitter.HistoryWithFilter("inst-A", HistoryFilter{Type: TypeFailure})
		if len(got) != 1 || got[0].Type != TypeFailure {
			t.Errorf("expected single failure event, got %v", got)
		}
	})

	t.Run("filter by level", func(t *testing.T) {
		got := emitter.HistoryWithFilter("inst-A", HistoryFilter{Level: LevelInfo})
		if len(got) != 2 {
			t.Errorf("expected 2 info events, got %d", len(got))
		}
	})

	t.Run("filter by trace", func(t *testing.T) {
		got := emitter.HistoryWithFilter("inst-A", HistoryFilter{TraceID: "t-2"})
		if len(got) != 2 {
			t.Errorf("expected 2 events for trace t-2, got %d", len(got))
		}
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		got := emitter.HistoryWithFilter("inst-A", HistoryFilter{TraceID: "t-2", Level: LevelError})
		if len(got) != 1 || got[0].Type != TypeFailure {
			t.Errorf("expected the failure event only, got %v", got)
		}
	})
}

// TestBufferedEmitter_Clear verifies per-instance and global clearing.
func TestBufferedEmitter_Clear(t *testing.T) {
	emitter := NewBufferedEmitter()
	emitter.Emit(Event{Type: TypeReceived, InstanceID: "inst-A"})
	emitter.Emit(Event{Type: TypeReceived, InstanceID: "inst-B"})

	emitter.Clear("inst-A")
	if len(emitter.History("inst-A")) != 0 {
		t.Error("expected inst-A history to be cleared")
	}
	if len(emitter.History("inst-B")) != 1 {
		t.Error("expected inst-B history to survive")
	}

	emitter.ClearAll()
	if len(emitter.History("inst-B")) != 0 {
		t.Error("expected all history to be cleared")
	}
}

// TestBufferedEmitter_Concurrent verifies thread safety under concurrent emits.
func TestBufferedEmitter_Concurrent(t *testing.T) {
	emitter := NewBufferedEmitter()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				emitter.Emit(Event{Type: TypeTransition, InstanceID: "inst-shared"})
			}
		}()
	}
	wg.Wait()

	if got := len(emitter.History("inst-shared")); got != 1000 {
		t.Errorf("expected 1000 events, got %d", got)
	}
}
