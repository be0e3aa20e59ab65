package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory.
//
// This emitter captures all events and provides query capabilities for
// lifecycle analysis. Events are organized by instance ID for efficient
// retrieval and filtering.
//
// Features:
//   - Thread-safe concurrent access
//   - Query by instance ID with optional filtering
//   - Filter by type, level, trace ID
//   - Clear events by instance ID or all events
//
// Use cases:
//   - Tests asserting event order (the emitter preserves emission order)
//   - Development and debugging
//   - Inspecting detached operations, whose failures are only observable
//     through the emitter and the instance store
//
// Warning: all events are held in memory. For long-running deployments
// prefer LogEmitter or OTelEmitter and clear instances as they terminate.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // instanceID -> events in emission order
}

// HistoryFilter specifies criteria for filtering instance history.
//
// All filter fields are optional. When multiple fields are set they are
// combined with AND logic (all conditions must match).
type HistoryFilter struct {
	Type    string // Filter by event type (empty = no filter)
	Level   Level  // Filter by severity (empty = no filter)
	TraceID string // Filter by trace ID (empty = no filter)
}

// NewBufferedEmitter creates a new BufferedEmitter.
//
// Returns a BufferedEmitter that stores all events in memory and provides
// query capabilities. Safe for concurrent use.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores an event in the buffer.
//
// Events are organized by instance ID and preserved in emission order.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event.InstanceID] = append(b.events[event.InstanceID], event)
}

// History returns all events for an instance in emission order.
//
// Returns a copy; mutating the result does not affect the buffer.
func (b *BufferedEmitter) History(instanceID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[instanceID]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// HistoryWithFilter returns events for an instance matching the filter,
// in emission order.
func (b *BufferedEmitter) HistoryWithFilter(instanceID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, event := range b.events[instanceID] {
		if filter.Type != "" && event.Type != filter.Type {
			continue
		}
		if filter.Level != "" && event.Level != filter.Level {
			continue
		}
		if filter.TraceID != "" && event.TraceID != filter.TraceID {
			continue
		}
		out = append(out, event)
	}
	return out
}

// Clear removes all events for an instance.
func (b *BufferedEmitter) Clear(instanceID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.events, instanceID)
}

// ClearAll removes all buffered events.
func (b *BufferedEmitter) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = make(map[string][]Event)
}
