package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestLogEmitter_StructuredOutput verifies LogEmitter outputs structured events to the writer.
func TestLogEmitter_StructuredOutput(t *testing.T) {
	t.Run("emits event with all fields", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, false)

		event := Event{
			Time:       time.Now(),
			Level:      LevelInfo,
			Type:       TypeTransition,
			Msg:        "instance advanced",
			InstanceID: "inst-001",
			Username:   "alice",
			TraceID:    "trace-1",
			Meta: map[string]interface{}{
				"status": "wait",
			},
		}

		emitter.Emit(event)

		output := buf.String()
		if output == "" {
			t.Fatal("expected output, got empty string")
		}

		for _, want := range []string{"inst-001", "alice", "trace-1", "transition", "wait"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got: %s", want, output)
			}
		}
	})

	t.Run("emits multiple events as separate lines", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, false)

		emitter.Emit(Event{Level: LevelInfo, Type: TypeReceived, InstanceID: "inst-001"})
		emitter.Emit(Event{Level: LevelInfo, Type: TypeDrafting, InstanceID: "inst-001"})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Errorf("expected 2 lines of output, got %d", len(lines))
		}
	})

	t.Run("nil writer defaults to stdout without panic", func(t *testing.T) {
		emitter := NewLogEmitter(nil, false)
		if emitter.writer == nil {
			t.Error("expected writer to be defaulted")
		}
	})
}

// TestLogEmitter_JSONFormatting verifies LogEmitter can output JSONL format.
func TestLogEmitter_JSONFormatting(t *testing.T) {
	t.Run("emits valid JSON line", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, true)

		emitter.Emit(Event{
			Level:      LevelError,
			Type:       TypeFailure,
			Msg:        "delivery failed",
			InstanceID: "inst-002",
			Meta: map[string]interface{}{
				"error": "502 from delivery collaborator",
			},
		})

		var decoded struct {
			Level      string                 `json:"level"`
			Type       string                 `json:"type"`
			Msg        string                 `json:"msg"`
			InstanceID string                 `json:"instanceID"`
			Meta       map[string]interface{} `json:"meta"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
		}

		if decoded.Level != "error" {
			t.Errorf("level = %q, want %q", decoded.Level, "error")
		}
		if decoded.Type != TypeFailure {
			t.Errorf("type = %q, want %q", decoded.Type, TypeFailure)
		}
		if decoded.InstanceID != "inst-002" {
			t.Errorf("instanceID = %q, want %q", decoded.InstanceID, "inst-002")
		}
		if decoded.Meta["error"] != "502 from delivery collaborator" {
			t.Errorf("meta.error = %v, want upstream detail", decoded.Meta["error"])
		}
	})

	t.Run("omits empty optional fields", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, true)

		emitter.Emit(Event{Level: LevelInfo, Type: TypeReceived, InstanceID: "inst-003"})

		output := buf.String()
		if strings.Contains(output, "username") {
			t.Errorf("expected username to be omitted, got: %s", output)
		}
		if strings.Contains(output, "meta") {
			t.Errorf("expected meta to be omitted, got: %s", output)
		}
	})
}
