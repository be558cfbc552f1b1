package agents

import (
	"context"
	"strings"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
	"github.com/gsampaio-rh/virt-llm-agents/workflow"
)

// BasicAgent answers in a single model call with no tool access and no
// scratchpad. It covers roles that only transform text, summarization and
// report writing, where the reasoning loop would be overhead.
type BasicAgent struct {
	Role     string
	Model    framework.ModelClient
	Composer *framework.PromptComposer

	SourceSlot string
}

// Run performs the single completion.
func (a *BasicAgent) Run(ctx context.Context, request string) (string, error) {
	composer := a.Composer
	if composer == nil {
		composer = framework.NewPromptComposer(framework.Environment{CurrentDate: framework.CurrentUTCTimestamp()})
	}
	systemPrompt := composer.RenderBasicPrompt()
	userPrompt := composer.RenderUserTurn(request)
	raw, err := a.Model.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// Stage adapts the agent into a workflow stage writing its response slot.
func (a *BasicAgent) Stage() workflow.Stage {
	return workflow.Stage{
		Name: a.Role,
		Run: func(ctx context.Context, state workflow.State) (workflow.State, error) {
			request, err := composeRequest(state, a.SourceSlot)
			if err != nil {
				return nil, err
			}
			answer, err := a.Run(ctx, request)
			if err != nil {
				return nil, err
			}
			state[ResponseSlot(a.Role)] = answer
			return state, nil
		},
	}
}
