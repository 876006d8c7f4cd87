package agent

import (
	"context"
	"fmt"
	"strings"

	"rfp-analysis-be/pkg/websearch"
)

// WebSearchTool corroborates a question against the public web,
// scoped to a company-name qualifier for precision. If the exact
// qualifier yields nothing it retries once with the relaxed one.
type WebSearchTool struct {
	searcher         websearch.Searcher
	qualifier        string
	relaxedQualifier string
	maxResults       int
}

var _ Tool = &WebSearchTool{}

func NewWebSearchTool(searcher websearch.Searcher, qualifier, relaxedQualifier string, maxResults int) *WebSearchTool {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &WebSearchTool{
		searcher:         searcher,
		qualifier:        qualifier,
		relaxedQualifier: relaxedQualifier,
		maxResults:       maxResults,
	}
}

func (t *WebSearchTool) Name() string {
	return "web_search"
}

func (t *WebSearchTool) Invoke(ctx context.Context, input ToolInput) string {
	query := fmt.Sprintf("%q %s", t.qualifier, input.Question)
	results, err := t.searcher.Search(ctx, query, t.maxResults)
	if err != nil {
		return fmt.Sprintf("Web search encountered an error: %v", err)
	}

	if len(results) == 0 && t.relaxedQualifier != "" {
		query = fmt.Sprintf("%q %s", t.relaxedQualifier, input.Question)
		results, err = t.searcher.Search(ctx, query, t.maxResults)
		if err != nil {
			return fmt.Sprintf("Web search encountered an error: %v", err)
		}
	}

	if len(results) == 0 {
		return fmt.Sprintf("Web search returned no relevant results for %s.", t.relaxedOrExact())
	}

	formatted := make([]string, 0, len(results))
	for _, res := range results {
		title := res.Title
		if title == "" {
			title = "No Title"
		}
		formatted = append(formatted, fmt.Sprintf("- %s\n  %s\n  [Source](%s)", title, res.Snippet, res.Link))
	}

	return "Web Search Results:\n" + strings.Join(formatted, "\n\n")
}

func (t *WebSearchTool) relaxedOrExact() string {
	if t.relaxedQualifier != "" {
		return t.relaxedQualifier
	}
	return t.qualifier
}
