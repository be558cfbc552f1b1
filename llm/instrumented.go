package llm

import (
	"context"
	"time"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
)

// InstrumentedModel wraps a ModelClient and emits telemetry for prompts and
// responses without the loop having to know about observability at all.
type InstrumentedModel struct {
	Inner     framework.ModelClient
	Telemetry framework.Telemetry
}

// NewInstrumentedModel wires telemetry around an existing client.
func NewInstrumentedModel(inner framework.ModelClient, telemetry framework.Telemetry) *InstrumentedModel {
	return &InstrumentedModel{Inner: inner, Telemetry: telemetry}
}

// Generate forwards to the inner client, recording prompt size, latency,
// and failure state.
func (m *InstrumentedModel) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	m.emit(framework.Event{
		Type: framework.EventModelCall,
		Metadata: map[string]interface{}{
			"system_chars": len(systemPrompt),
			"user_chars":   len(userPrompt),
		},
	})
	raw, err := m.Inner.Generate(ctx, systemPrompt, userPrompt)
	meta := map[string]interface{}{
		"latency_ms": time.Since(start).Milliseconds(),
	}
	event := framework.Event{Type: framework.EventModelResponse, Metadata: meta}
	if err != nil {
		event.Message = err.Error()
		meta["failed"] = true
	} else {
		event.Message = clip(raw, 1024)
	}
	m.emit(event)
	return raw, err
}

func (m *InstrumentedModel) emit(event framework.Event) {
	if m.Telemetry == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	m.Telemetry.Emit(event)
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
