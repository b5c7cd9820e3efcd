package research

import (
	"fmt"
	"time"
)

// NoteCategory classifies scratchpad entries.
type NoteCategory string

const (
	NoteFact     NoteCategory = "fact"
	NoteFollowUp NoteCategory = "follow-up"
	NoteURL      NoteCategory = "url"
)

// Note is one scratchpad entry.
type Note struct {
	Timestamp time.Time
	Category  NoteCategory
	Text      string
}

// Notes is the per-run scratchpad. It is created at run start, owned
// exclusively by the controller, and discarded with the run; no mutex is
// needed because the control loop is sequential.
type Notes struct {
	entries []Note
	now     func() time.Time
}

// NewNotes builds an empty scratchpad stamped by the given clock.
func NewNotes(now func() time.Time) *Notes {
	if now == nil {
		now = time.Now
	}
	return &Notes{now: now}
}

// Add appends a formatted note.
func (n *Notes) Add(cat NoteCategory, format string, args ...any) {
	n.entries = append(n.entries, Note{
		Timestamp: n.now(),
		Category:  cat,
		Text:      fmt.Sprintf(format, args...),
	})
}

// All returns every note in insertion order.
func (n *Notes) All() []Note {
	return append([]Note(nil), n.entries...)
}

// ByCategory returns notes of one category in insertion order.
func (n *Notes) ByCategory(cat NoteCategory) []Note {
	var out []Note
	for _, note := range n.entries {
		if note.Category == cat {
			out = append(out, note)
		}
	}
	return out
}

// Len reports the number of notes taken.
func (n *Notes) Len() int { return len(n.entries) }
