package extract

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantVal string
		wantErr bool
	}{
		{
			name:    "clean json",
			raw:     `{"budget": "$500,000"}`,
			wantKey: "budget",
			wantVal: "$500,000",
		},
		{
			name:    "fenced json block",
			raw:     "Here is the extraction:\n```json\n{\"budget\": \"$500,000\"}\n```\nLet me know if you need more.",
			wantKey: "budget",
			wantVal: "$500,000",
		},
		{
			name:    "single quotes and trailing comma",
			raw:     `{'budget': '$500,000',}`,
			wantKey: "budget",
			wantVal: "$500,000",
		},
		{
			name:    "object buried in prose",
			raw:     `The document specifies the following. {"deadline": "Dec 31 2024"} That covers it.`,
			wantKey: "deadline",
			wantVal: "Dec 31 2024",
		},
		{
			name:    "unrecoverable",
			raw:     "I could not find any structured information in the documents.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				var extErr *ExtractionError
				if !errors.As(err, &extErr) {
					t.Fatalf("expected ExtractionError, got %T", err)
				}
				if extErr.Excerpt == "" {
					t.Error("ExtractionError should carry a raw-reply excerpt")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got[tt.wantKey] != tt.wantVal {
				t.Errorf("got[%q] = %v, want %q", tt.wantKey, got[tt.wantKey], tt.wantVal)
			}
		})
	}
}

func TestParseJSONExcerptBounded(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	_, err := ParseJSON(string(long))
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if len(extErr.Excerpt) > 1000 {
		t.Errorf("excerpt length %d, want <= 1000", len(extErr.Excerpt))
	}
}

func TestParseJSONExcerptRuneBoundary(t *testing.T) {
	// The leading byte shifts every two-byte rune off an even offset,
	// so the 1000-byte cut lands mid-rune and must back up.
	_, err := ParseJSON("x" + strings.Repeat("é", 700))
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if !utf8.ValidString(extErr.Excerpt) {
		t.Errorf("excerpt contains a broken rune: %q", extErr.Excerpt[len(extErr.Excerpt)-4:])
	}
}

func TestStripCodeFence(t *testing.T) {
	got, changed := StripCodeFence("```json\n{\"a\": 1}\n```")
	if !changed {
		t.Error("expected change flag")
	}
	if got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeQuoting(t *testing.T) {
	got, _ := NormalizeQuoting(`{"items": [1, 2,], "a": "b",}`)
	if got != `{"items": [1, 2], "a": "b"}` {
		t.Errorf("got %q", got)
	}
}

func TestRenderPromptBuiltin(t *testing.T) {
	prompt, err := RenderPrompt(builtinTemplate, []string{"chunk one", "chunk two"}, "Extract all key information")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"chunk one", "chunk two", "Extract all key information"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
