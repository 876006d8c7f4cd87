package agent

import (
	"regexp"
	"strconv"
	"strings"
)

// AppraisalRecord is the structured form of one appraisal reply.
// Score is always in [0,5]; 0 means unscored or parse failure.
type AppraisalRecord struct {
	Score           int
	Scoring         string
	AgentCommentary string
}

var (
	scoreRe      = regexp.MustCompile(`[Ss]core:?\s*(\d+)(?:\s*/\s*|\s+out\s+of\s+)5`)
	appraisalRe  = regexp.MustCompile(`(?s)Appraisal:(.*?)(?:Agent Commentary:|$)`)
	commentaryRe = regexp.MustCompile(`(?s)Agent Commentary:(.*)$`)
)

// ParseAppraisal extracts the three labeled sections from raw
// appraisal text. It never fails: missing sections degrade to zero
// score or empty strings, the caller decides how to annotate those.
func ParseAppraisal(text string) AppraisalRecord {
	record := AppraisalRecord{}

	if m := scoreRe.FindStringSubmatch(text); m != nil {
		if score, err := strconv.Atoi(m[1]); err == nil && score >= 0 && score <= 5 {
			record.Score = score
		}
	}

	if m := appraisalRe.FindStringSubmatch(text); m != nil {
		record.Scoring = strings.TrimSpace(m[1])
	} else {
		// No labeled appraisal section: treat everything after the
		// score line as the narrative.
		body := text
		if idx := strings.Index(text, "Score:"); idx >= 0 {
			body = text[idx+len("Score:"):]
			if lineEnd := strings.Index(body, "\n"); lineEnd >= 0 {
				body = body[lineEnd:]
			}
		}
		record.Scoring = strings.TrimSpace(body)
	}

	if m := commentaryRe.FindStringSubmatch(text); m != nil {
		record.AgentCommentary = strings.TrimSpace(m[1])
	}

	return record
}

// ExtractSources pulls cited sources out of an appraisal narrative.
// Only lines that actually carry a URL are considered citations;
// plain narrative lines are left alone.
func ExtractSources(narrative string) map[string]*string {
	var cited []string
	for _, line := range strings.Split(narrative, "\n") {
		if strings.Contains(line, "http") {
			cited = append(cited, line)
		}
	}
	if len(cited) == 0 {
		return map[string]*string{}
	}
	return ParseSourceLines(strings.Join(cited, "\n"))
}

// ParseSourceLines turns a free-text sources section into a
// name -> URL mapping using a best-effort line heuristic: lines
// containing "http" split into a name and a trailing parenthesized
// URL; lines without one map to nil.
func ParseSourceLines(raw string) map[string]*string {
	sources := make(map[string]*string)
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.Contains(line, "http") {
			sources[line] = nil
			continue
		}
		openIdx := strings.LastIndex(line, "(")
		if openIdx <= 0 {
			sources[line] = nil
			continue
		}
		name := strings.TrimSpace(line[:openIdx])
		url := strings.Trim(line[openIdx:], "() ")
		sources[name] = &url
	}
	return sources
}
