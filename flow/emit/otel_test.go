package emit

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// attributeMap flattens span attributes for assertions.
func attributeMap(attrs []attribute.KeyValue) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

// TestOTelEmitter_Emit verifies single event emission creates a span.
func TestOTelEmitter_Emit(t *testing.T) {
	// Setup in-memory span recorder for testing
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := otel.Tracer("test")
	emitter := NewOTelEmitter(tracer)

	emitter.Emit(Event{
		Level:      LevelInfo,
		Type:       TypeTransition,
		Msg:        "instance advanced",
		InstanceID: "inst-001",
		Username:   "alice",
		TraceID:    "trace-1",
		Meta: map[string]interface{}{
			"status":     "wait",
			"generation": 1,
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	span := spans[0]
	if span.Name != TypeTransition {
		t.Errorf("span name = %q, want %q", span.Name, TypeTransition)
	}

	attrs := attributeMap(span.Attributes)
	if got := attrs["mailflow.instance_id"]; got != "inst-001" {
		t.Errorf("instance_id = %v, want %q", got, "inst-001")
	}
	if got := attrs["mailflow.username"]; got != "alice" {
		t.Errorf("username = %v, want %q", got, "alice")
	}
	if got := attrs["mailflow.status"]; got != "wait" {
		t.Errorf("status = %v, want %q", got, "wait")
	}
	if got := attrs["mailflow.generation"]; got != int64(1) {
		t.Errorf("generation = %v, want 1", got)
	}
}

// TestOTelEmitter_ErrorStatus verifies error metadata sets the span status.
func TestOTelEmitter_ErrorStatus(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(otel.Tracer("test"))

	t.Run("meta error string", func(t *testing.T) {
		exporter.Reset()
		emitter.Emit(Event{
			Level:      LevelError,
			Type:       TypeFailure,
			InstanceID: "inst-002",
			Meta:       map[string]interface{}{"error": "drafting collaborator returned 500"},
		})

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Status.Code != codes.Error {
			t.Errorf("status code = %v, want Error", spans[0].Status.Code)
		}
	})

	t.Run("error level without meta", func(t *testing.T) {
		exporter.Reset()
		emitter.Emit(Event{
			Level:      LevelError,
			Type:       TypeFailure,
			Msg:        "delivery failed",
			InstanceID: "inst-003",
		})

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Status.Code != codes.Error {
			t.Errorf("status code = %v, want Error", spans[0].Status.Code)
		}
	})
}

// TestOTelEmitter_Flush verifies flush succeeds against the SDK provider.
func TestOTelEmitter_Flush(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(otel.Tracer("test"))
	if err := emitter.Flush(context.Background()); err != nil {
		t.Errorf("Flush returned error: %v", err)
	}
}
