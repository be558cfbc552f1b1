// Package workflow composes agent stages into a strictly linear pipeline.
// Each stage consumes the accumulated WorkflowState, writes its own slot,
// and the runner checkpoints the state between stages so an interrupted
// session can resume where it stopped.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
)

// State is the mapping of named slots threaded through all stages: the
// initial input plus one response slot per completed stage. It is the only
// unit that crosses stage boundaries.
type State map[string]interface{}

// Clone copies the slot map. Slot values are treated as immutable once
// written, so a shallow copy is sufficient.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// InputSlot is the reserved slot carrying the user's initial request.
const InputSlot = "input"

// StageFunc transforms the workflow state. Implementations read the slots
// they need and return the state with their own slot written.
type StageFunc func(ctx context.Context, state State) (State, error)

// Stage is one named unit of work in the pipeline.
type Stage struct {
	Name string
	Run  StageFunc
}

// Checkpoint is a durable snapshot of the workflow state plus the number of
// completed stages, keyed by session.
type Checkpoint struct {
	SessionID string    `json:"session_id"`
	Step      int       `json:"step"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckpointStore persists checkpoints between runs. The persistence
// package provides SQLite and in-memory implementations.
type CheckpointStore interface {
	Save(ctx context.Context, checkpoint *Checkpoint) error
	Load(ctx context.Context, sessionID string) (*Checkpoint, bool, error)
}

// Runner executes stages in order, one at a time, with no branching or
// fan-out. Stage i+1 runs only after stage i completed and its checkpoint
// was persisted.
type Runner struct {
	Stages    []Stage
	Store     CheckpointStore
	Telemetry framework.Telemetry
}

// NewRunner builds a pipeline over the given stages.
func NewRunner(stages []Stage, store CheckpointStore) (*Runner, error) {
	if len(stages) == 0 {
		return nil, errors.New("workflow requires at least one stage")
	}
	seen := make(map[string]bool, len(stages))
	for _, stage := range stages {
		if stage.Name == "" {
			return nil, errors.New("workflow stage missing name")
		}
		if stage.Run == nil {
			return nil, fmt.Errorf("stage %s missing run function", stage.Name)
		}
		if seen[stage.Name] {
			return nil, fmt.Errorf("stage %s defined twice", stage.Name)
		}
		seen[stage.Name] = true
	}
	return &Runner{Stages: stages, Store: store}, nil
}

// Run executes the pipeline for the given session. When a checkpoint exists
// for the session, execution resumes at the stage after the last completed
// one instead of starting over. stepLimit bounds the number of stages
// executed in this invocation; exceeding it is a reported failure, not a
// silent truncation. Loop-backed stages receive the same ceiling for their
// internal iteration budget at construction time.
func (r *Runner) Run(ctx context.Context, input, sessionID string, stepLimit int) (State, error) {
	if stepLimit <= 0 {
		return nil, errors.New("workflow requires a positive step limit")
	}
	state := State{InputSlot: input}
	start := 0
	if r.Store != nil {
		checkpoint, found, err := r.Store.Load(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load checkpoint for session %s: %w", sessionID, err)
		}
		if found {
			state = checkpoint.State.Clone()
			start = checkpoint.Step
		}
	}

	for i := start; i < len(r.Stages); i++ {
		if i >= stepLimit {
			return state, &framework.StepLimitError{Limit: stepLimit}
		}
		stage := r.Stages[i]
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		default:
		}
		r.emit(framework.Event{Type: framework.EventStageStart, SessionID: sessionID, Stage: stage.Name})
		next, err := stage.Run(ctx, state.Clone())
		if err != nil {
			r.emit(framework.Event{Type: framework.EventStageFinish, SessionID: sessionID, Stage: stage.Name, Message: err.Error()})
			return state, fmt.Errorf("stage %s failed: %w", stage.Name, err)
		}
		if next == nil {
			next = state
		}
		state = next
		if r.Store != nil {
			checkpoint := &Checkpoint{
				SessionID: sessionID,
				Step:      i + 1,
				State:     state.Clone(),
				CreatedAt: time.Now().UTC(),
			}
			if err := r.Store.Save(ctx, checkpoint); err != nil {
				return state, fmt.Errorf("checkpoint after stage %s: %w", stage.Name, err)
			}
			r.emit(framework.Event{Type: framework.EventCheckpoint, SessionID: sessionID, Stage: stage.Name, Metadata: map[string]interface{}{"step": i + 1}})
		}
		r.emit(framework.Event{Type: framework.EventStageFinish, SessionID: sessionID, Stage: stage.Name})
	}
	return state, nil
}

// emit is a nil-safe telemetry helper.
func (r *Runner) emit(event framework.Event) {
	if r.Telemetry == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	r.Telemetry.Emit(event)
}
