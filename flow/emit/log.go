package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogEmitter implements Emitter by writing structured log output to a writer.
//
// Supports two output modes:
//   - Text mode (default): Human-readable format with key=value pairs
//   - JSON mode: Machine-readable JSON format, one event per line (JSONL)
//
// Example text output:
//
//	[info] transition instance=inst-001 user=alice trace=t-1 msg="instance advanced" meta={"status":"wait"}
//
// Example JSON output:
//
//	{"time":"...","level":"info","type":"transition","msg":"instance advanced","instanceID":"inst-001","username":"alice","traceID":"t-1","meta":{"status":"wait"}}
//
// Usage:
//
//	// Text output to stdout
//	emitter := emit.NewLogEmitter(os.Stdout, false)
//
//	// JSONL output to an append-only file
//	f, _ := os.OpenFile("events.jsonl", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
//	defer f.Close()
//	emitter := emit.NewLogEmitter(f, true)
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a new LogEmitter.
//
// Parameters:
//   - writer: Where to write the log output (nil defaults to os.Stdout)
//   - jsonMode: If true, emit JSONL format; if false, emit text format
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{
		writer:   writer,
		jsonMode: jsonMode,
	}
}

// Emit writes an event to the configured writer.
//
// Writes are serialized so concurrent triggers never interleave lines.
func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		l.emitJSON(event)
	} else {
		l.emitText(event)
	}
}

// emitJSON writes the event as a single JSON line.
func (l *LogEmitter) emitJSON(event Event) {
	data, err := json.Marshal(struct {
		Time       time.Time              `json:"time"`
		Level      Level                  `json:"level"`
		Type       string                 `json:"type"`
		Msg        string                 `json:"msg"`
		InstanceID string                 `json:"instanceID"`
		Username   string                 `json:"username,omitempty"`
		TraceID    string                 `json:"traceID,omitempty"`
		Meta       map[string]interface{} `json:"meta,omitempty"`
	}{
		Time:       event.Time,
		Level:      event.Level,
		Type:       event.Type,
		Msg:        event.Msg,
		InstanceID: event.InstanceID,
		Username:   event.Username,
		TraceID:    event.TraceID,
		Meta:       event.Meta,
	})
	if err != nil {
		// Fallback to error message if marshal fails
		fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal event: %v\"}\n", err)
		return
	}

	fmt.Fprintf(l.writer, "%s\n", data)
}

// emitText writes the event in human-readable form.
func (l *LogEmitter) emitText(event Event) {
	fmt.Fprintf(l.writer, "[%s] %s instance=%s", event.Level, event.Type, event.InstanceID)

	if event.Username != "" {
		fmt.Fprintf(l.writer, " user=%s", event.Username)
	}
	if event.TraceID != "" {
		fmt.Fprintf(l.writer, " trace=%s", event.TraceID)
	}
	if event.Msg != "" {
		fmt.Fprintf(l.writer, " msg=%q", event.Msg)
	}

	if len(event.Meta) > 0 {
		metaJSON, err := json.Marshal(event.Meta)
		if err == nil {
			fmt.Fprintf(l.writer, " meta=%s", metaJSON)
		} else {
			fmt.Fprintf(l.writer, " meta=%v", event.Meta)
		}
	}

	fmt.Fprint(l.writer, "\n")
}
