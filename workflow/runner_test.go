package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
)

// recordingStore is a minimal in-memory CheckpointStore that also counts
// saves.
type recordingStore struct {
	checkpoints map[string]*Checkpoint
	saves       int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{checkpoints: make(map[string]*Checkpoint)}
}

func (s *recordingStore) Save(ctx context.Context, checkpoint *Checkpoint) error {
	s.saves++
	copied := *checkpoint
	copied.State = checkpoint.State.Clone()
	s.checkpoints[checkpoint.SessionID] = &copied
	return nil
}

func (s *recordingStore) Load(ctx context.Context, sessionID string) (*Checkpoint, bool, error) {
	checkpoint, ok := s.checkpoints[sessionID]
	if !ok {
		return nil, false, nil
	}
	copied := *checkpoint
	copied.State = checkpoint.State.Clone()
	return &copied, true, nil
}

// countingStage records executions and writes its own slot.
func countingStage(name string, counter *int, fail *bool) Stage {
	return Stage{
		Name: name,
		Run: func(ctx context.Context, state State) (State, error) {
			*counter++
			if fail != nil && *fail {
				return nil, errors.New("induced failure")
			}
			state[name+"_response"] = fmt.Sprintf("%s saw %v", name, state[InputSlot])
			return state, nil
		},
	}
}

func TestRunnerLinearExecution(t *testing.T) {
	var first, second int
	store := newRecordingStore()
	runner, err := NewRunner([]Stage{
		countingStage("plan", &first, nil),
		countingStage("review", &second, nil),
	}, store)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	state, err := runner.Run(context.Background(), "migrate db-01", "session-1", 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if first != 1 || second != 1 {
		t.Fatalf("stage executions = %d, %d", first, second)
	}
	if state["plan_response"] != "plan saw migrate db-01" {
		t.Fatalf("plan slot = %v", state["plan_response"])
	}
	if state["review_response"] != "review saw migrate db-01" {
		t.Fatalf("review slot = %v", state["review_response"])
	}
	if store.saves != 2 {
		t.Fatalf("checkpoint saves = %d, want one per stage", store.saves)
	}
}

func TestRunnerResumesAfterFailure(t *testing.T) {
	var first, second int
	fail := true
	store := newRecordingStore()
	runner, err := NewRunner([]Stage{
		countingStage("plan", &first, nil),
		countingStage("review", &second, &fail),
	}, store)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	_, err = runner.Run(context.Background(), "migrate db-01", "session-2", 10)
	if err == nil {
		t.Fatal("expected the induced failure")
	}
	if first != 1 {
		t.Fatalf("plan executions = %d", first)
	}

	// Second invocation with the same session resumes after the completed
	// stage instead of starting over.
	fail = false
	state, err := runner.Run(context.Background(), "ignored on resume", "session-2", 10)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if first != 1 {
		t.Fatalf("plan re-executed on resume: %d", first)
	}
	if second != 2 {
		t.Fatalf("review executions = %d", second)
	}
	if state["plan_response"] != "plan saw migrate db-01" {
		t.Fatalf("resumed state lost plan slot: %v", state["plan_response"])
	}
}

func TestRunnerStepLimit(t *testing.T) {
	var first, second int
	runner, err := NewRunner([]Stage{
		countingStage("plan", &first, nil),
		countingStage("review", &second, nil),
	}, newRecordingStore())
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	_, err = runner.Run(context.Background(), "anything", "session-3", 1)
	var limitErr *framework.StepLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected StepLimitError, got %v", err)
	}
	if first != 1 || second != 0 {
		t.Fatalf("executions = %d, %d", first, second)
	}
}

func TestRunnerStepLimitRequired(t *testing.T) {
	var n int
	runner, _ := NewRunner([]Stage{countingStage("plan", &n, nil)}, nil)
	if _, err := runner.Run(context.Background(), "x", "s", 0); err == nil {
		t.Fatal("zero step limit must be rejected")
	}
}

func TestNewRunnerValidation(t *testing.T) {
	var n int
	if _, err := NewRunner(nil, nil); err == nil {
		t.Fatal("empty pipeline must be rejected")
	}
	if _, err := NewRunner([]Stage{{Name: "", Run: countingStage("x", &n, nil).Run}}, nil); err == nil {
		t.Fatal("unnamed stage must be rejected")
	}
	if _, err := NewRunner([]Stage{{Name: "plan"}}, nil); err == nil {
		t.Fatal("stage without run func must be rejected")
	}
	dup := countingStage("plan", &n, nil)
	if _, err := NewRunner([]Stage{dup, dup}, nil); err == nil {
		t.Fatal("duplicate stage names must be rejected")
	}
}

func TestStateCloneIsolation(t *testing.T) {
	original := State{InputSlot: "request"}
	clone := original.Clone()
	clone["extra"] = "value"
	if _, ok := original["extra"]; ok {
		t.Fatal("clone must not leak writes into the original")
	}
}
