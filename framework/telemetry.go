package framework

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// EventType categorizes telemetry events.
type EventType string

const (
	EventLoopStart     EventType = "loop_start"
	EventLoopFinish    EventType = "loop_finish"
	EventModelCall     EventType = "model_call"
	EventModelResponse EventType = "model_response"
	EventParseError    EventType = "parse_error"
	EventToolCall      EventType = "tool_call"
	EventToolResult    EventType = "tool_result"
	EventStageStart    EventType = "stage_start"
	EventStageFinish   EventType = "stage_finish"
	EventCheckpoint    EventType = "checkpoint"
)

// Event captures structured telemetry data.
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Stage     string                 `json:"stage,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Telemetry captures execution traces emitted by the loop and the workflow
// runner. Production deployments can plug exporters in here while tests swap
// in lightweight recorders.
type Telemetry interface {
	Emit(event Event)
}

// MultiplexTelemetry broadcasts events to multiple sinks.
type MultiplexTelemetry struct {
	Sinks []Telemetry
}

// Emit forwards the event to all registered sinks.
func (m MultiplexTelemetry) Emit(event Event) {
	for _, s := range m.Sinks {
		s.Emit(event)
	}
}

// LogTelemetry writes events through the standard logger.
type LogTelemetry struct {
	Prefix string
}

// Emit prints a single line per event.
func (l LogTelemetry) Emit(event Event) {
	prefix := l.Prefix
	if prefix == "" {
		prefix = "[trace]"
	}
	log.Printf("%s %s stage=%s session=%s %s", prefix, event.Type, event.Stage, event.SessionID, event.Message)
}

// JSONFileTelemetry writes events as newline-delimited JSON to a file so
// external tools can tail and process the stream.
type JSONFileTelemetry struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewJSONFileTelemetry opens (or creates) the log file.
func NewJSONFileTelemetry(path string) (*JSONFileTelemetry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileTelemetry{file: f, enc: json.NewEncoder(f)}, nil
}

// Emit writes the JSON record.
func (j *JSONFileTelemetry) Emit(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(event)
}

// Close releases the file handle.
func (j *JSONFileTelemetry) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// emit is a nil-safe helper used by the loop and runner.
func emit(t Telemetry, event Event) {
	if t == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	t.Emit(event)
}
