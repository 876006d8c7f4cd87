package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ExtractionError is returned when every recovery strategy failed to
// produce parseable JSON. It carries an excerpt of the raw reply so
// callers can log what the model actually said.
type ExtractionError struct {
	Reason  string
	Excerpt string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

// RepairStrategy is one pure text-to-text recovery step. It returns
// the transformed text and whether it changed anything worth retrying.
type RepairStrategy struct {
	Name  string
	Apply func(text string) (string, bool)
}

var (
	fencedJSONRe   = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fenceMarkerRe  = regexp.MustCompile("```.*\\n|```")
	trailingObjRe  = regexp.MustCompile(`,\s*}`)
	trailingArrRe  = regexp.MustCompile(`,\s*]`)
	objectSpanRe   = regexp.MustCompile(`(?s)(\{.*\})`)
)

// Strategies is the ordered recovery ladder. Each step is applied to
// the previous step's output, with a parse attempt in between.
var Strategies = []RepairStrategy{
	{Name: "strip-code-fence", Apply: StripCodeFence},
	{Name: "normalize-quoting", Apply: NormalizeQuoting},
	{Name: "extract-object-span", Apply: ExtractObjectSpan},
}

// StripCodeFence unwraps a ```json ... ``` block and removes any
// stray fence markers left behind.
func StripCodeFence(text string) (string, bool) {
	original := text
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	text = fenceMarkerRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	return text, text != strings.TrimSpace(original)
}

// NormalizeQuoting replaces single quotes with double quotes and drops
// trailing commas before closing braces/brackets.
func NormalizeQuoting(text string) (string, bool) {
	fixed := strings.ReplaceAll(text, "'", `"`)
	fixed = trailingObjRe.ReplaceAllString(fixed, "}")
	fixed = trailingArrRe.ReplaceAllString(fixed, "]")
	return fixed, fixed != text
}

// ExtractObjectSpan pulls the widest {...} span out of surrounding
// prose. Greedy on purpose: the model tends to wrap one object in
// explanation text, not emit several.
func ExtractObjectSpan(text string) (string, bool) {
	if m := objectSpanRe.FindStringSubmatch(text); m != nil {
		return m[1], m[1] != text
	}
	return text, false
}

// ParseJSON parses raw LLM output into a JSON object, walking the
// recovery ladder on failure. The first parseable candidate wins.
func ParseJSON(raw string) (map[string]interface{}, error) {
	candidate := strings.TrimSpace(raw)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
		return parsed, nil
	}

	var lastErr error
	for _, strategy := range Strategies {
		repaired, _ := strategy.Apply(candidate)
		candidate = repaired
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, nil
		} else {
			lastErr = err
		}
	}

	excerpt := raw
	if len(excerpt) > 1000 {
		// Back up to a rune boundary so the cut never splits a character.
		cut := 1000
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut]
	}
	return nil, &ExtractionError{
		Reason:  fmt.Sprintf("all recovery strategies exhausted: %v", lastErr),
		Excerpt: excerpt,
	}
}
