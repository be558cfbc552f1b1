package framework

import (
	"encoding/json"
	"fmt"
)

// ActionRequest is the parsed form of one model turn. It exists only within
// the loop iteration that produced it; only its rendered text survives into
// the scratchpad.
type ActionRequest struct {
	Thought     string
	Action      string
	ActionInput map[string]interface{}
	Answer      string
	HasAnswer   bool
}

// IsDispatch reports whether the turn requests a tool call. Answer presence
// always wins, so a turn carrying both keys terminates the loop instead.
func (a *ActionRequest) IsDispatch() bool {
	return !a.HasAnswer && a.Action != ""
}

// IsNoOp reports a turn carrying neither an action nor an answer. These are
// logged and the loop continues; they are never fatal.
func (a *ActionRequest) IsNoOp() bool {
	return !a.HasAnswer && a.Action == ""
}

// ParseEnvelope validates the strict JSON contract exchanged with the model:
// a single JSON object with optional keys thought, action, action_input, and
// answer. Anything that fails to decode as one object is a ParseError.
func ParseEnvelope(raw string) (*ActionRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	req := &ActionRequest{}
	if v, ok := fields["thought"]; ok {
		if err := json.Unmarshal(v, &req.Thought); err != nil {
			return nil, &ParseError{Raw: raw, Err: fmt.Errorf("thought: %w", err)}
		}
	}
	if v, ok := fields["action"]; ok {
		if err := json.Unmarshal(v, &req.Action); err != nil {
			return nil, &ParseError{Raw: raw, Err: fmt.Errorf("action: %w", err)}
		}
	}
	if v, ok := fields["action_input"]; ok {
		req.ActionInput = decodeActionInput(v)
	}
	if v, ok := fields["answer"]; ok {
		if err := json.Unmarshal(v, &req.Answer); err != nil {
			return nil, &ParseError{Raw: raw, Err: fmt.Errorf("answer: %w", err)}
		}
		req.HasAnswer = true
	}
	return req, nil
}

// decodeActionInput coerces action_input into a map. Models occasionally
// stringify their arguments; nested JSON is unwrapped so tools always
// receive structured input.
func decodeActionInput(raw json.RawMessage) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		var nested map[string]interface{}
		if err := json.Unmarshal([]byte(str), &nested); err == nil {
			return nested
		}
		return map[string]interface{}{"value": str}
	}
	return map[string]interface{}{}
}

// RenderObservation produces the pretty-printed observation envelope fed
// back to the model after a dispatch.
func RenderObservation(payload interface{}) string {
	encoded, err := json.MarshalIndent(map[string]interface{}{
		"observation": payload,
	}, "", "    ")
	if err != nil {
		// Payloads are tool-produced JSON-ish values; anything that cannot be
		// marshalled is surfaced as its string form.
		return fmt.Sprintf("{\n    \"observation\": %q\n}", fmt.Sprint(payload))
	}
	return string(encoded)
}
