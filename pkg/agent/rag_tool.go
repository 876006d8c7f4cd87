package agent

import (
	"context"
	"fmt"
	"strings"

	"rfp-analysis-be/pkg/llm"
)

// RAGTool answers a question strictly from retrieved document chunks
// and appends numbered source snippets to the answer.
type RAGTool struct {
	retriever Retriever
	provider  llm.LLMProvider
	topK      int
}

var _ Tool = &RAGTool{}

func NewRAGTool(retriever Retriever, provider llm.LLMProvider, topK int) *RAGTool {
	if topK <= 0 {
		topK = 5
	}
	return &RAGTool{
		retriever: retriever,
		provider:  provider,
		topK:      topK,
	}
}

func (t *RAGTool) Name() string {
	return "rag"
}

func (t *RAGTool) Invoke(ctx context.Context, input ToolInput) string {
	chunks, err := t.retriever.Retrieve(ctx, input.Question, t.topK)
	if err != nil {
		return fmt.Sprintf("RAG Error: %v\n\nNo relevant information was found in the company documents.", err)
	}
	if len(chunks) == 0 {
		return fmt.Sprintf("The document analysis found no relevant information about: %s", input.Question)
	}

	var contextSb strings.Builder
	for _, chunk := range chunks {
		contextSb.WriteString(chunk.Content)
		contextSb.WriteString("\n")
	}

	prompt := fmt.Sprintf(
		"Answer the question using ONLY the context below. If the context does not contain the answer, say so.\n\nContext:\n%s\nQuestion: %s",
		contextSb.String(), input.Question,
	)

	answer, err := t.provider.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return fmt.Sprintf("RAG Error: %v\n\nNo relevant information was found in the company documents.", err)
	}

	var srcSb strings.Builder
	for i, chunk := range chunks {
		srcSb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, chunk.Content))
	}

	return fmt.Sprintf("%s\n\n---\n%s", answer, srcSb.String())
}
