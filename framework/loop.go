package framework

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// loopState names the phases of the reasoning state machine. Making the
// transitions explicit keeps termination conditions and error-recovery paths
// independently testable instead of hiding them in mutable loop locals.
type loopState string

const (
	stateAwaitingModel loopState = "awaiting_model"
	stateParsing       loopState = "parsing_response"
	stateDispatching   loopState = "dispatching"
	stateRecovering    loopState = "recovering_from_error"
	stateTerminating   loopState = "terminating"
)

// LoopResult is the terminal value of a reasoning session.
type LoopResult struct {
	Answer string
	Steps  int
}

// ReactLoop drives the thought, action, observation cycle: invoke the model,
// parse, dispatch, append, re-render, repeat until a final answer or the
// step ceiling. The entire prompt is recomputed from the scratchpad every
// turn rather than mutating incremental conversation state; the token cost
// buys deterministic replay of any session.
type ReactLoop struct {
	Model      ModelClient
	Tools      *ToolRegistry
	Composer   *PromptComposer
	Scratchpad *Scratchpad

	// MaxSteps bounds the number of model invocations. A standalone loop
	// must supply it explicitly; the workflow runner threads its own step
	// limit through here for loop-backed stages.
	MaxSteps int

	Telemetry Telemetry
	Debug     bool
}

// debugf logs gated diagnostics.
func (l *ReactLoop) debugf(format string, args ...interface{}) {
	if !l.Debug {
		return
	}
	log.Printf("[react] "+format, args...)
}

// Run executes the loop for a single user request. The returned error is
// one of the fatal conditions: model transport failure, tool transport
// failure, or an exhausted step budget. Malformed model output, unknown
// tool names, and tool execution failures are all recovered inside the loop.
func (l *ReactLoop) Run(ctx context.Context, request string) (*LoopResult, error) {
	if l.Model == nil {
		return nil, errors.New("react loop missing model client")
	}
	if l.MaxSteps <= 0 {
		return nil, errors.New("react loop requires an explicit step limit")
	}
	if l.Tools == nil {
		l.Tools = NewToolRegistry()
	}
	if l.Composer == nil {
		l.Composer = NewPromptComposer(Environment{CurrentDate: CurrentUTCTimestamp()})
	}
	if l.Scratchpad == nil {
		l.Scratchpad = NewScratchpad()
	}

	catalog := l.Tools.DescribeAll()
	initialTurn := l.Composer.RenderUserTurn(request)
	userPrompt := initialTurn

	emit(l.Telemetry, Event{Type: EventLoopStart, Message: request})

	var (
		raw        string
		parsed     *ActionRequest
		recoverErr error
		steps      int
	)

	state := stateAwaitingModel
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		switch state {
		case stateAwaitingModel:
			if steps >= l.MaxSteps {
				err := &StepLimitError{Limit: l.MaxSteps}
				emit(l.Telemetry, Event{Type: EventLoopFinish, Message: err.Error()})
				return nil, err
			}
			steps++
			systemPrompt := l.Composer.RenderSystemPrompt(catalog, l.Scratchpad, initialTurn)
			emit(l.Telemetry, Event{Type: EventModelCall, Metadata: map[string]interface{}{"step": steps}})
			var err error
			raw, err = l.Model.Generate(ctx, systemPrompt, userPrompt)
			if err != nil {
				var transport *TransportError
				if !errors.As(err, &transport) {
					err = &TransportError{Op: "model generate", Err: err}
				}
				return nil, err
			}
			emit(l.Telemetry, Event{Type: EventModelResponse, Message: raw})
			state = stateParsing

		case stateParsing:
			var err error
			parsed, err = ParseEnvelope(raw)
			if err != nil {
				recoverErr = err
				state = stateRecovering
				continue
			}
			// The raw turn is preserved before any dispatch so the model's
			// reasoning survives even when the tool fails.
			l.Scratchpad.Append(EntryModelTurn, l.Composer.RenderAssistantTurn(raw))
			switch {
			case parsed.HasAnswer:
				// Answer presence wins even when an action rides along.
				state = stateTerminating
			case parsed.IsDispatch():
				state = stateDispatching
			default:
				// No-op turn: logged, never fatal.
				l.debugf("no-op turn: %s", parsed.Thought)
				state = stateAwaitingModel
			}

		case stateRecovering:
			// Feed the failure back so the model sees its own mistake on the
			// next turn. Exactly one error entry per malformed output; no
			// answer slot is consumed.
			emit(l.Telemetry, Event{Type: EventParseError, Message: recoverErr.Error()})
			l.Scratchpad.Append(EntryErrorTurn, l.Composer.RenderToolTurn(recoverErr.Error()))
			recoverErr = nil
			state = stateAwaitingModel

		case stateDispatching:
			emit(l.Telemetry, Event{Type: EventToolCall, Message: parsed.Action})
			l.debugf("dispatching tool=%s input=%v", parsed.Action, parsed.ActionInput)
			outcome, err := l.Tools.Invoke(ctx, parsed.Action, parsed.ActionInput)
			if err != nil {
				// Only transport failures escape Invoke; they are fatal.
				return nil, err
			}
			observation := RenderObservation(outcome.Payload)
			emit(l.Telemetry, Event{Type: EventToolResult, Message: observation, Metadata: map[string]interface{}{"success": outcome.Success}})
			l.Scratchpad.Append(EntryToolResult, l.Composer.RenderToolTurn(observation))
			userPrompt = observation
			state = stateAwaitingModel

		case stateTerminating:
			result := &LoopResult{Answer: parsed.Answer, Steps: steps}
			emit(l.Telemetry, Event{Type: EventLoopFinish, Message: result.Answer})
			return result, nil

		default:
			return nil, fmt.Errorf("react loop entered unknown state %q", state)
		}
	}
}
