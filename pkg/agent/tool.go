package agent

import "context"

// ToolInput carries everything a tool may need. RAG and web search
// only read Question; the appraisal tool reads all four fields.
type ToolInput struct {
	Question     string
	RAGOutput    string
	WebOutput    string
	PriorContext string
}

// Tool is the single calling convention every capability implements.
// Tools are total: they always return text, never an error. Provider
// failures are encoded into the returned text so the downstream
// parser is never blocked by upstream flakiness.
type Tool interface {
	Name() string
	Invoke(ctx context.Context, input ToolInput) string
}

// RetrievedChunk is one document fragment with its similarity score.
type RetrievedChunk struct {
	Content        string
	SourceFilename string
	Score          float64
}

// Retriever is the read path of a session's vector index.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]RetrievedChunk, error)
	CountDocuments(ctx context.Context) (int64, error)
}
