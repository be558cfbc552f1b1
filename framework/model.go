package framework

import (
	"context"
	"time"
)

// ModelClient is the narrow contract the loop needs from a model backend.
// The concrete HTTP client (llm package) implements it; tests substitute
// scripted oracles. Keeping the interface to a single call means alternate
// backends can be swapped in without touching the loop.
type ModelClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CurrentUTCTimestamp formats the current time the way prompts expect it.
func CurrentUTCTimestamp() string {
	now := time.Now().UTC()
	return now.Format("2006-01-02 15:04:05.000") + " UTC"
}
