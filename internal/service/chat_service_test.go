package service

import (
	"context"
	"testing"

	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLLM captures the chat history it was handed.
type recordingLLM struct {
	response string
	history  []llm.Message
}

func (r *recordingLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	r.history = history
	return r.response, nil
}

func (r *recordingLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return r.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func TestChatGroundsAnswerInRetrievedChunks(t *testing.T) {
	indexSvc, factory := newTestIndexService(testIndexConfig())
	embedder := &stubEmbedder{vector: []float32{1, 0, 0, 0}}
	model := &recordingLLM{response: "The contract value is $500,000."}
	svc := NewChatService(indexSvc, embedder, model, 0.3, 5)

	ctx := context.Background()
	sessionID := uuid.NewString()
	handle, err := indexSvc.Create(ctx, sessionID)
	require.NoError(t, err)
	seedChunk(t, factory, handle.IndexName, "The total contract value is $500,000.", []float32{1, 0, 0, 0})

	res, err := svc.Chat(ctx, &dto.ChatRequest{
		SessionID: sessionID,
		Message:   "What is the contract worth?",
	})
	require.NoError(t, err)

	assert.Equal(t, "The contract value is $500,000.", res.Answer)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "seed.txt", res.Sources[0].Filename)
	assert.InDelta(t, 1.0, res.Sources[0].Score, 0.01)

	// The system prompt must carry the retrieved excerpt, and the user
	// turn the raw question.
	require.Len(t, model.history, 2)
	assert.Equal(t, "system", model.history[0].Role)
	assert.Contains(t, model.history[0].Content, "Information Memorandum analyst")
	assert.Contains(t, model.history[0].Content, "The total contract value is $500,000.")
	assert.Equal(t, "What is the contract worth?", model.history[1].Content)
}

func TestChatWithEmptyIndex(t *testing.T) {
	indexSvc, _ := newTestIndexService(testIndexConfig())
	embedder := &stubEmbedder{vector: []float32{1, 0, 0, 0}}
	model := &recordingLLM{response: "I cannot find that in the documents."}
	svc := NewChatService(indexSvc, embedder, model, 0.3, 5)

	ctx := context.Background()
	sessionID := uuid.NewString()
	_, err := indexSvc.Create(ctx, sessionID)
	require.NoError(t, err)

	res, err := svc.Chat(ctx, &dto.ChatRequest{SessionID: sessionID, Message: "Anything?"})
	require.NoError(t, err)
	assert.Empty(t, res.Sources)
	assert.Contains(t, model.history[0].Content, "No relevant excerpts were found")
}

func TestChatUnknownSession(t *testing.T) {
	indexSvc, _ := newTestIndexService(testIndexConfig())
	svc := NewChatService(indexSvc, &stubEmbedder{vector: []float32{1, 0, 0, 0}}, &recordingLLM{}, 0.3, 5)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionID: uuid.NewString(), Message: "hello"})
	assert.ErrorIs(t, err, ErrIndexNotFound)
}
