package agent

import (
	"context"
	"fmt"
	"strings"

	"rfp-analysis-be/pkg/llm"
)

const appraisalPromptTemplate = `You are a financial analyst preparing a due diligence review for a private equity investment committee.

Your task is to evaluate the information collected from a company pitch deck (via RAG) and external sources (via web search), considering both their consistency and credibility.

QUESTION:
%s

--- Response from Company Deck (RAG Tool) ---
%s

--- External Validation (Web Search) ---
%s

--- Previous Context from Other Questions ---
%s

Instructions:
- SCORE from 1 (very weak) to 5 (exceptional), based on the strength of the evidence and quality of the response.
- Are there any contradictions between the Deck and the Web?
- Which points are confirmed externally, and which are unsupported?
- Flag any suspicious claims or missing disclosures.
- Offer a clear, professional analyst opinion on the reliability of the combined data.

FORMAT YOUR RESPONSE EXACTLY AS FOLLOWS:

Score: X/5

Appraisal:
[Your detailed appraisal in the neutral style of an FT Journalist]

Agent Commentary:
[Add your additional insights, observations, and recommendations here]

IMPORTANT: Ensure your response includes ALL THREE sections: Score, Appraisal, and Agent Commentary.`

const appraisalErrorTemplate = `Score: 2/5

Appraisal:
Error encountered during analysis. The available information was insufficient to provide a comprehensive appraisal.

Agent Commentary:
An error occurred during processing: %v`

// AppraisalTool scores a question's combined RAG and web evidence.
// Its output always contains the Score / Appraisal / Agent Commentary
// section labels, inserting defaults when the model drops one, so the
// parser downstream has a stable contract to work against.
type AppraisalTool struct {
	provider    llm.LLMProvider
	temperature float64
	maxTokens   int
}

var _ Tool = &AppraisalTool{}

func NewAppraisalTool(provider llm.LLMProvider, temperature float64, maxTokens int) *AppraisalTool {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &AppraisalTool{
		provider:    provider,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (t *AppraisalTool) Name() string {
	return "analyst_appraisal"
}

func (t *AppraisalTool) Invoke(ctx context.Context, input ToolInput) string {
	prompt := fmt.Sprintf(appraisalPromptTemplate,
		input.Question, input.RAGOutput, input.WebOutput, input.PriorContext)

	history := []llm.Message{
		{Role: "system", Content: "You are a professional financial analyst."},
		{Role: "user", Content: prompt},
	}

	content, err := t.provider.Chat(ctx, history,
		llm.WithTemperature(t.temperature),
		llm.WithMaxTokens(t.maxTokens),
	)
	if err != nil {
		return fmt.Sprintf(appraisalErrorTemplate, err)
	}

	return EnsureSections(strings.TrimSpace(content))
}

// EnsureSections guarantees all three section labels are present in
// the raw appraisal text, synthesizing defaults for missing ones.
func EnsureSections(content string) string {
	if !strings.Contains(content, "Score:") {
		content = "Score: 3/5\n\n" + content
	}
	if !strings.Contains(content, "Appraisal:") {
		// Insert the label after the score line so everything that
		// follows it becomes the appraisal body.
		scoreIdx := strings.Index(content, "Score:")
		lineEnd := strings.Index(content[scoreIdx:], "\n")
		if lineEnd < 0 {
			content += "\n\nAppraisal:"
		} else {
			insertAt := scoreIdx + lineEnd
			content = content[:insertAt] + "\n\nAppraisal:" + content[insertAt:]
		}
	}
	if !strings.Contains(content, "Agent Commentary:") {
		content += "\n\nAgent Commentary:\nAdditional insights based on the available information."
	}
	return content
}
