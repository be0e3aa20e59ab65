// Package emit provides event emission and observability for workflow
// instance execution.
package emit

// Emitter receives and processes observability events from the workflow
// engine.
//
// Emitters enable pluggable observability backends:
//   - Logging: stdout, files, syslog
//   - Distributed tracing: OpenTelemetry
//   - In-memory capture: tests, dashboards
//
// Implementations should be:
//   - Non-blocking: Avoid slowing down instance execution
//   - Thread-safe: May be called concurrently from multiple triggers
//   - Resilient: Handle failures gracefully (never crash the workflow)
//
// Delivery is best-effort by contract: the engine additionally wraps its
// emitter with Safe so that a misbehaving backend can never abort the
// triggering operation.
type Emitter interface {
	// Emit sends an observability event to the configured backend.
	//
	// Implementations should not block instance execution. If the backend
	// is unavailable or slow, events should be buffered, dropped with local
	// logging, or sent asynchronously.
	//
	// Emit should not panic. Errors should be logged internally.
	Emit(event Event)
}
