// Package agents builds runnable agents on top of the framework loop and
// exposes them as workflow stages.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
	"github.com/gsampaio-rh/virt-llm-agents/workflow"
)

// answerPrefix is the sentence opener the system prompt instructs the model
// to use when it has a final result.
const answerPrefix = "I have the answer:"

// TrimAnswerPrefix strips the conventional answer opener so downstream
// stages receive only the result text. Unprefixed answers pass through
// unchanged.
func TrimAnswerPrefix(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if strings.HasPrefix(trimmed, answerPrefix) {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, answerPrefix))
		trimmed = strings.TrimSuffix(trimmed, ".")
	}
	return trimmed
}

// ResponseSlot names the workflow slot an agent with the given role writes.
func ResponseSlot(role string) string {
	return role + "_response"
}

// ReactAgent runs the full reasoning loop for one named role. Each
// invocation starts from an empty scratchpad; cross-stage memory travels
// through workflow slots, never through the transcript.
type ReactAgent struct {
	Role      string
	Model     framework.ModelClient
	Tools     *framework.ToolRegistry
	Composer  *framework.PromptComposer
	MaxSteps  int
	Telemetry framework.Telemetry
	Debug     bool

	// SourceSlot, when set, names the slot whose value is appended to the
	// user's request so a stage can build on an earlier stage's output.
	SourceSlot string
}

// Run executes one reasoning session for the request.
func (a *ReactAgent) Run(ctx context.Context, request string) (*framework.LoopResult, error) {
	loop := &framework.ReactLoop{
		Model:      a.Model,
		Tools:      a.Tools,
		Composer:   a.Composer,
		Scratchpad: framework.NewScratchpad(),
		MaxSteps:   a.MaxSteps,
		Telemetry:  a.Telemetry,
		Debug:      a.Debug,
	}
	return loop.Run(ctx, request)
}

// Stage adapts the agent into a workflow stage. The stage reads the input
// slot (plus SourceSlot when configured), runs the loop, and writes the
// trimmed answer into the agent's response slot.
func (a *ReactAgent) Stage() workflow.Stage {
	return workflow.Stage{
		Name: a.Role,
		Run: func(ctx context.Context, state workflow.State) (workflow.State, error) {
			request, err := composeRequest(state, a.SourceSlot)
			if err != nil {
				return nil, err
			}
			result, err := a.Run(ctx, request)
			if err != nil {
				return nil, err
			}
			state[ResponseSlot(a.Role)] = TrimAnswerPrefix(result.Answer)
			return state, nil
		},
	}
}

// composeRequest assembles the stage's prompt text from the workflow state.
func composeRequest(state workflow.State, sourceSlot string) (string, error) {
	input, ok := state[workflow.InputSlot].(string)
	if !ok || input == "" {
		return "", fmt.Errorf("workflow state missing %q slot", workflow.InputSlot)
	}
	if sourceSlot == "" {
		return input, nil
	}
	source, ok := state[sourceSlot].(string)
	if !ok {
		return "", fmt.Errorf("workflow state missing %q slot", sourceSlot)
	}
	return input + "\n\nContext from previous step:\n" + source, nil
}
