package agent

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestContextWindowTruncation(t *testing.T) {
	window := NewContextWindow(2, 1000)

	window.Append("question one", "rag one", "web one")
	window.Append("question two", "rag two", "web two")
	window.Append("question three", "rag three", "web three")

	rendered := window.Render()

	if strings.Contains(rendered, "question one") {
		t.Error("oldest entry should be dropped from the rendered context")
	}
	if !strings.Contains(rendered, "question two") || !strings.Contains(rendered, "question three") {
		t.Errorf("the two most recent entries should be present, got:\n%s", rendered)
	}
}

func TestContextWindowSnipping(t *testing.T) {
	window := NewContextWindow(2, 50)
	window.Append("q", strings.Repeat("a", 200), strings.Repeat("b", 200))

	rendered := window.Render()
	if strings.Count(rendered, "a") != 50 {
		t.Errorf("rag output should be snipped to 50 chars, got %d", strings.Count(rendered, "a"))
	}
	if strings.Count(rendered, "b") != 50 {
		t.Errorf("web output should be snipped to 50 chars, got %d", strings.Count(rendered, "b"))
	}
}

func TestContextWindowSnipRuneBoundary(t *testing.T) {
	// "é" is two bytes; a 5-byte budget lands mid-rune and must back up.
	window := NewContextWindow(2, 5)
	window.Append("q", strings.Repeat("é", 10), "web")

	rendered := window.Render()
	if !utf8.ValidString(rendered) {
		t.Errorf("snipped context contains a broken rune: %q", rendered)
	}
}

func TestContextWindowEmpty(t *testing.T) {
	window := NewContextWindow(2, 1000)
	if got := window.Render(); got != "" {
		t.Errorf("empty window should render empty context, got %q", got)
	}
}
