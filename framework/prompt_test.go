package framework

import (
	"strings"
	"testing"
)

func testComposer() *PromptComposer {
	return NewPromptComposer(Environment{
		Name:            "ipython",
		CurrentDate:     "2024-11-02 10:00:00.000 UTC",
		KnowledgeCutoff: "December 2023",
	})
}

func TestRenderSystemPromptDeterministic(t *testing.T) {
	composer := testComposer()
	registry := NewToolRegistry()
	registry.Register(&stubTool{name: "list_vms", desc: "List all VMs."})
	pad := NewScratchpad()
	pad.Append(EntryModelTurn, composer.RenderAssistantTurn(`{"thought": "check inventory"}`))
	pad.Append(EntryToolResult, composer.RenderToolTurn(`{"observation": ["db-01"]}`))

	userTurn := composer.RenderUserTurn("which VMs exist?")
	first := composer.RenderSystemPrompt(registry.DescribeAll(), pad, userTurn)
	second := composer.RenderSystemPrompt(registry.DescribeAll(), pad, userTurn)
	if first != second {
		t.Fatal("identical inputs must render byte-identical prompts")
	}
}

func TestRenderSystemPromptContainsCatalogAndScratchpad(t *testing.T) {
	composer := testComposer()
	registry := NewToolRegistry()
	registry.Register(&stubTool{name: "list_vms", desc: "List all VMs."})
	pad := NewScratchpad()
	pad.Append(EntryToolResult, composer.RenderToolTurn("observation text"))

	prompt := composer.RenderSystemPrompt(registry.DescribeAll(), pad, composer.RenderUserTurn("hi"))
	for _, fragment := range []string{
		"Environment: ipython",
		"Tools: list_vms",
		"Current Date: 2024-11-02 10:00:00.000 UTC",
		"- list_vms",
		"observation text",
		"<|start_header_id|>user<|end_header_id|>",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q", fragment)
		}
	}
}

func TestRenderSystemPromptEmptyCatalog(t *testing.T) {
	composer := testComposer()
	prompt := composer.RenderSystemPrompt(nil, NewScratchpad(), composer.RenderUserTurn("hi"))
	if !strings.Contains(prompt, "Tools: none") {
		t.Fatal("empty catalog must render as none")
	}
	if !strings.Contains(prompt, "(no tools registered)") {
		t.Fatal("empty catalog placeholder missing")
	}
}

func TestEscapeDelimiters(t *testing.T) {
	in := `returns {"name": "value"}`
	out := EscapeDelimiters(in)
	if out != `returns {{"name": "value"}}` {
		t.Fatalf("escaped = %q", out)
	}
}

func TestCatalogBracesEscapedInPrompt(t *testing.T) {
	composer := testComposer()
	registry := NewToolRegistry()
	registry.Register(&stubTool{name: "emit", desc: `outputs {"k": 1}`})
	prompt := composer.RenderSystemPrompt(registry.DescribeAll(), nil, "")
	if !strings.Contains(prompt, `{{"k": 1}}`) {
		t.Fatal("tool description braces must be escaped")
	}
}

func TestScratchpadRenderExcludesTimestamps(t *testing.T) {
	first := NewScratchpad()
	first.Append(EntryModelTurn, "turn one")
	first.Append(EntryToolResult, "turn two")

	second := NewScratchpad()
	second.Append(EntryModelTurn, "turn one")
	second.Append(EntryToolResult, "turn two")

	if first.Render() != second.Render() {
		t.Fatal("render must depend only on entry text and order")
	}
}

func TestScratchpadEntriesAreCopied(t *testing.T) {
	pad := NewScratchpad()
	pad.Append(EntryModelTurn, "original")
	entries := pad.Entries()
	entries[0].Text = "mutated"
	if pad.Entries()[0].Text != "original" {
		t.Fatal("callers must not be able to mutate history")
	}
}
