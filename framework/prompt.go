package framework

import (
	"fmt"
	"strings"
)

// Environment carries the metadata block rendered into every system prompt.
// The current date is supplied by the caller, not sampled inside the
// composer, so re-rendering with the same inputs is byte-identical.
type Environment struct {
	Name            string
	CurrentDate     string
	KnowledgeCutoff string
}

// PromptComposer renders the system prompt and the individual turn frames of
// the reasoning transcript. It holds no mutable state: every render is a
// pure function of its inputs, which is what allows the loop to rebuild the
// entire prompt from the scratchpad on each iteration instead of mutating a
// running context.
type PromptComposer struct {
	Env Environment
}

// NewPromptComposer builds a composer for the given environment metadata.
func NewPromptComposer(env Environment) *PromptComposer {
	if env.Name == "" {
		env.Name = "ipython"
	}
	if env.KnowledgeCutoff == "" {
		env.KnowledgeCutoff = "December 2023"
	}
	return &PromptComposer{Env: env}
}

const reactPromptTemplate = `<|begin_of_text|><|start_header_id|>system<|end_header_id|>

Environment: %s
Tools: %s
Knowledge Cutoff Date: %s
Current Date: %s

You are an intelligent assistant designed to handle various tasks, including answering questions, providing summaries, and performing detailed analyses. All outputs must strictly be in JSON format.

---

## Tools
You have access to a variety of tools to assist in completing tasks. You are responsible for determining the appropriate sequence of tool usage to break down complex tasks into subtasks when necessary.

The available tools include:

%s

---

## Output Format:
To complete the task, please use the following format:

{
  "thought": "Describe your thought process here, including why a tool may be necessary to proceed.",
  "action": "Specify the tool you want to use.",
  "action_input": {
    "key": "Value inputs to the tool in valid JSON format."
  }
}

After performing an action, the tool will provide a response in the following format:

{
  "observation": "The result of the tool invocation"
}

You should keep repeating the format (thought, action, observation) until you have the answer to the original question.

If the tool result is successful and the task is complete:

{
  "answer": "I have the answer: <result>."
}

Or, if you cannot answer:

{
  "answer": "Sorry, I cannot answer your query."
}

---

### Remember:
- **If a tool provides a complete and clear answer, do not continue invoking further tools.**
- Use the tools effectively and ensure inputs match the required format exactly as described in the task.
- Maintain the JSON format and ensure all fields are filled out correctly.
- Do not include additional metadata such as title, description, or type in the action_input.

<|eot_id|>
%s
%s`

// RenderSystemPrompt assembles the full system prompt from the tool catalog,
// the accumulated scratchpad, and the user turn. Tool descriptions are
// escaped so stray braces cannot be mistaken for envelope structure.
func (p *PromptComposer) RenderSystemPrompt(catalog []ToolSignature, pad *Scratchpad, userTurn string) string {
	names := make([]string, 0, len(catalog))
	lines := make([]string, 0, len(catalog))
	for _, sig := range catalog {
		names = append(names, sig.Name)
		lines = append(lines, "- "+EscapeDelimiters(sig.Signature))
	}
	toolNames := strings.Join(names, ", ")
	if toolNames == "" {
		toolNames = "none"
	}
	toolCatalog := strings.Join(lines, "\n")
	if toolCatalog == "" {
		toolCatalog = "(no tools registered)"
	}
	scratch := ""
	if pad != nil {
		scratch = pad.Render()
	}
	return fmt.Sprintf(reactPromptTemplate,
		p.Env.Name,
		toolNames,
		p.Env.KnowledgeCutoff,
		p.Env.CurrentDate,
		toolCatalog,
		userTurn,
		scratch,
	)
}

const basicPromptTemplate = `<|begin_of_text|><|start_header_id|>system<|end_header_id|>

Cutoff Knowledge Date: %s
Current Date: %s

You are a helpful assistant. Your job is to answer questions clearly and concisely. Make sure your responses are easy to understand and provide useful information.

---

### Key Points:
- **Be Direct:** Answer only what is asked, without extra information.
- **Be Polite:** Maintain a friendly and helpful tone.
<|eot_id|>`

// RenderBasicPrompt assembles the single-shot system prompt used by agents
// that never dispatch tools.
func (p *PromptComposer) RenderBasicPrompt() string {
	return fmt.Sprintf(basicPromptTemplate, p.Env.KnowledgeCutoff, p.Env.CurrentDate)
}

// RenderUserTurn frames the user's request in the wire format the model was
// trained on.
func (p *PromptComposer) RenderUserTurn(text string) string {
	return fmt.Sprintf("<|start_header_id|>user<|end_header_id|>\n\n%s<|eot_id|>", text)
}

// RenderAssistantTurn frames raw model output for scratchpad replay.
func (p *PromptComposer) RenderAssistantTurn(raw string) string {
	return fmt.Sprintf("<|start_header_id|>assistant<|end_header_id|>\n\n%s<|eot_id|>", raw)
}

// RenderToolTurn frames an observation (or an error correction) as tool
// output for scratchpad replay.
func (p *PromptComposer) RenderToolTurn(text string) string {
	return fmt.Sprintf("<|start_header_id|>ipython<|end_header_id|>\n\n%s<|eot_id|>", text)
}

// EscapeDelimiters doubles every brace so tool descriptions cannot collide
// with the structural delimiters of the output envelope.
func EscapeDelimiters(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
