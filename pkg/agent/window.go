package agent

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// windowEntry is the stored output of one completed question.
type windowEntry struct {
	question  string
	ragOutput string
	webOutput string
}

// ContextWindow is the bounded recent history fed into each new
// appraisal call. Append-only during a run; Render only ever exposes
// the most recent entries, snipped to keep the prompt bounded.
type ContextWindow struct {
	entries   []windowEntry
	maxRecent int
	snipChars int
}

func NewContextWindow(maxRecent, snipChars int) *ContextWindow {
	if maxRecent <= 0 {
		maxRecent = 2
	}
	if snipChars <= 0 {
		snipChars = 1000
	}
	return &ContextWindow{
		maxRecent: maxRecent,
		snipChars: snipChars,
	}
}

func (w *ContextWindow) Append(question, ragOutput, webOutput string) {
	w.entries = append(w.entries, windowEntry{
		question:  question,
		ragOutput: ragOutput,
		webOutput: webOutput,
	})
}

func (w *ContextWindow) Len() int {
	return len(w.entries)
}

// Render builds the prior-context text from at most the maxRecent
// most recent entries. Older entries are dropped entirely.
func (w *ContextWindow) Render() string {
	start := len(w.entries) - w.maxRecent
	if start < 0 {
		start = 0
	}

	parts := make([]string, 0, w.maxRecent)
	for i, entry := range w.entries[start:] {
		parts = append(parts, fmt.Sprintf("Q%d: %s\nRAG: %s\nWEB: %s",
			i+1, entry.question, w.snip(entry.ragOutput), w.snip(entry.webOutput)))
	}
	return strings.Join(parts, "\n\n")
}

func (w *ContextWindow) snip(text string) string {
	if len(text) <= w.snipChars {
		return text
	}
	// Back up to a rune boundary so the cut never splits a character.
	cut := w.snipChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
