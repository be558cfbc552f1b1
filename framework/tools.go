package framework

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Tool defines a named capability the model may request. Each implementation
// can wrap anything from a static fixture to a hypervisor API client. The
// metadata doubles as a schema the LLM can reason about when deciding which
// tool to call.
type Tool interface {
	Name() string
	Description() string
	Parameters() []ToolParameter
	Invoke(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// ToolParameter describes an argument the tool accepts.
type ToolParameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     interface{}
}

// ToolOutcome is produced by every dispatch. Failed invocations carry the
// failure message in Payload so the model can observe its own mistakes.
type ToolOutcome struct {
	Success bool
	Payload interface{}
}

// ToolSignature is the human-readable catalog entry rendered into prompts.
type ToolSignature struct {
	Name      string
	Signature string
}

// ToolRegistry maintains the set of invocable tools. Registration order is
// preserved so the rendered catalog, and therefore the prompt, is stable
// across runs with identical tool sets.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewToolRegistry builds an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool. Duplicate names are rejected eagerly rather than
// silently shadowing the earlier registration.
func (r *ToolRegistry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return &DuplicateToolError{Name: name}
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Resolve fetches a tool by name.
func (r *ToolRegistry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	return tool, nil
}

// Invoke looks up the named tool and calls it. Capability failures, panics
// included, are captured into a failed ToolOutcome instead of propagating;
// the single exception is a TransportError, which marks the tool backend as
// unreachable and is returned alongside the outcome so the caller can abort.
func (r *ToolRegistry) Invoke(ctx context.Context, name string, args map[string]interface{}) (outcome ToolOutcome, err error) {
	tool, resolveErr := r.Resolve(name)
	if resolveErr != nil {
		return ToolOutcome{Success: false, Payload: resolveErr.Error()}, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			outcome = ToolOutcome{
				Success: false,
				Payload: fmt.Sprintf("Error executing tool %s: panic: %v", name, rec),
			}
			err = nil
		}
	}()
	payload, invokeErr := tool.Invoke(ctx, args)
	if invokeErr != nil {
		var transport *TransportError
		if errors.As(invokeErr, &transport) {
			return ToolOutcome{Success: false, Payload: invokeErr.Error()}, invokeErr
		}
		return ToolOutcome{
			Success: false,
			Payload: fmt.Sprintf("Error executing tool %s: %v", name, invokeErr),
		}, nil
	}
	return ToolOutcome{Success: true, Payload: payload}, nil
}

// All returns the registered tools in registration order.
func (r *ToolRegistry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		res = append(res, r.tools[name])
	}
	return res
}

// Names returns the tool names in registration order.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// DescribeAll renders the catalog used by the prompt composer. Ordering
// follows registration so prompts are reproducible.
func (r *ToolRegistry) DescribeAll() []ToolSignature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	catalog := make([]ToolSignature, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		catalog = append(catalog, ToolSignature{
			Name:      name,
			Signature: renderSignature(tool),
		})
	}
	return catalog
}

// renderSignature produces the "name: description, args: {...}" line for a
// single tool.
func renderSignature(tool Tool) string {
	sig := fmt.Sprintf("%s - %s", tool.Name(), tool.Description())
	params := tool.Parameters()
	if len(params) == 0 {
		return sig + " (no arguments)"
	}
	sig += " args:"
	for _, p := range params {
		req := "optional"
		if p.Required {
			req = "required"
		}
		if p.Default != nil {
			req = fmt.Sprintf("%s, default %v", req, p.Default)
		}
		sig += fmt.Sprintf(" %s(%s, %s): %s;", p.Name, p.Type, req, p.Description)
	}
	return sig
}
