package framework

import (
	"strings"
	"time"
)

// EntryKind categorizes scratchpad entries.
type EntryKind string

const (
	// EntryModelTurn records raw model output that parsed successfully.
	EntryModelTurn EntryKind = "model_turn"
	// EntryToolResult records the rendered observation fed back to the model.
	EntryToolResult EntryKind = "tool_result"
	// EntryErrorTurn records a parse failure surfaced to the model as a
	// correction signal.
	EntryErrorTurn EntryKind = "error_turn"
)

// Entry is a single turn of a reasoning session. Entries are immutable once
// appended; only the rendered text participates in prompt reconstruction.
type Entry struct {
	Kind      EntryKind `json:"kind"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Scratchpad is the append-only, ordered record of every turn. Rendering it
// in order reproduces the full conversation history fed back to the model,
// which is what makes any session replayable.
type Scratchpad struct {
	entries []Entry
}

// NewScratchpad builds an empty log.
func NewScratchpad() *Scratchpad {
	return &Scratchpad{}
}

// Append records a turn. Entries are never reordered or mutated afterwards.
func (s *Scratchpad) Append(kind EntryKind, text string) {
	s.entries = append(s.entries, Entry{
		Kind:      kind,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
}

// Entries returns a copy of the log so callers cannot mutate history.
func (s *Scratchpad) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Len reports the number of recorded turns.
func (s *Scratchpad) Len() int { return len(s.entries) }

// CountKind reports how many entries of the given kind were appended.
func (s *Scratchpad) CountKind(kind EntryKind) int {
	n := 0
	for _, e := range s.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Render folds the rendered text of every entry, in order, into the
// scratchpad block of the system prompt. Timestamps are deliberately
// excluded so two renders of the same snapshot are byte-identical.
func (s *Scratchpad) Render() string {
	if len(s.entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range s.entries {
		b.WriteString(strings.TrimSpace(e.Text))
		b.WriteString("\n")
	}
	return b.String()
}
