package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true).
			Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// renderTranscript pretty-prints a finished session's scratchpad with one
// colored block per turn.
func renderTranscript(pad *framework.Scratchpad) string {
	var b strings.Builder
	for _, entry := range pad.Entries() {
		text := stripTurnFraming(entry.Text)
		switch entry.Kind {
		case framework.EntryModelTurn:
			b.WriteString(assistantStyle.Render("assistant: "+text) + "\n")
		case framework.EntryToolResult:
			b.WriteString(toolStyle.Render("observation: "+text) + "\n")
		case framework.EntryErrorTurn:
			b.WriteString(errorStyle.Render("error: "+text) + "\n")
		default:
			b.WriteString(text + "\n")
		}
	}
	return b.String()
}

// renderRequest formats the user's request line.
func renderRequest(request string) string {
	return userStyle.Render("user: "+request) + "\n"
}

// renderAnswer boxes the final answer.
func renderAnswer(answer string) string {
	return answerStyle.Render(answer) + "\n"
}

// stripTurnFraming removes the wire-format header tokens so transcripts read
// as plain text.
func stripTurnFraming(text string) string {
	for _, token := range []string{
		"<|start_header_id|>user<|end_header_id|>",
		"<|start_header_id|>assistant<|end_header_id|>",
		"<|start_header_id|>ipython<|end_header_id|>",
		"<|eot_id|>",
	} {
		text = strings.ReplaceAll(text, token, "")
	}
	return strings.TrimSpace(text)
}

// printf writes to stdout; isolated so commands stay testable.
func printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}
