package framework

import (
	"errors"
	"fmt"
)

// ErrEmptyModelResponse signals that the model endpoint answered with an
// empty body. It is distinct from a transport failure so callers can decide
// whether to retry at their own layer.
var ErrEmptyModelResponse = errors.New("empty response from model")

// TransportError marks an infrastructure failure: the model endpoint or a
// tool backend could not be reached, or answered with a non-success status.
// Transport errors are fatal to the current loop invocation and are never
// converted into observations.
type TransportError struct {
	Op  string
	Err error
}

// Error describes the failed operation.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports model output that failed structural validation. The raw
// text is retained so the error can be fed back to the model verbatim.
type ParseError struct {
	Raw string
	Err error
}

// Error renders the parse failure.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

// Unwrap exposes the decode error.
func (e *ParseError) Unwrap() error { return e.Err }

// StepLimitError indicates the iteration budget was exhausted before a final
// answer appeared. It is a reported failure, never a silent truncation.
type StepLimitError struct {
	Limit int
}

// Error names the exhausted budget.
func (e *StepLimitError) Error() string {
	return fmt.Sprintf("step limit of %d exceeded without a final answer", e.Limit)
}

// DuplicateToolError is returned when a tool name is registered twice.
type DuplicateToolError struct {
	Name string
}

// Error names the colliding tool.
func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %s already registered", e.Name)
}

// UnknownToolError is returned by Resolve when no tool carries the requested
// name. The loop converts it into an observation instead of failing.
type UnknownToolError struct {
	Name string
}

// Error names the missing tool.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %s is not registered", e.Name)
}
