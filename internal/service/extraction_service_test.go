package service

import (
	"context"
	"errors"
	"log"
	"testing"

	"rfp-analysis-be/internal/config"
	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/internal/repository/memory"
	"rfp-analysis-be/pkg/extract"
	"rfp-analysis-be/pkg/llm"

	"github.com/google/uuid"
)

type stubEmbedder struct {
	vector []float32
	calls  int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.vector, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		s.calls++
		out[i] = s.vector
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return len(s.vector) }

type stubLLM struct {
	response string
	calls    int
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	return s.response, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.calls++
	return s.response, nil
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		Temperature:         0.3,
		AppraisalMaxTokens:  2048,
		ExtractionMaxTokens: 16384,
		ExtractionTimeoutS:  180,
	}
}

func newTestExtractionService(t *testing.T, llmResponse string) (IExtractionService, IIndexService, *memory.RepositoryFactory, *memory.ExtractionCache, *stubLLM) {
	t.Helper()
	indexSvc, factory := newTestIndexService(testIndexConfig())
	cache := memory.NewExtractionCache()
	embedder := &stubEmbedder{vector: []float32{1, 0, 0, 0}}
	model := &stubLLM{response: llmResponse}
	loader := extract.NewTemplateLoader("", log.New(log.Writer(), "", 0))

	svc := NewExtractionService(indexSvc, embedder, model, loader, cache, testAIConfig(), 40, nopLogger{})
	return svc, indexSvc, factory, cache, model
}

func TestExtractParsesFencedResponse(t *testing.T) {
	response := "```json\n{\"contract_value\": \"$500,000\", \"duration\": \"3 years\"}\n```"
	svc, indexSvc, factory, _, _ := newTestExtractionService(t, response)
	ctx := context.Background()
	sessionID := uuid.NewString()

	handle, err := indexSvc.Create(ctx, sessionID)
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	seedChunk(t, factory, handle.IndexName, "The total contract value is $500,000 over 3 years.", []float32{1, 0, 0, 0})

	res, err := svc.Extract(ctx, &dto.ExtractRequest{SessionID: sessionID})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if res.Cached {
		t.Error("first extraction reported as cached")
	}
	if res.TemplateType != "standard" {
		t.Errorf("expected default template type, got %q", res.TemplateType)
	}
	if got := res.Data["contract_value"]; got != "$500,000" {
		t.Errorf("contract_value = %v, want $500,000", got)
	}
}

func TestExtractCachesBySessionAndTemplate(t *testing.T) {
	svc, indexSvc, factory, _, model := newTestExtractionService(t, `{"summary": "ok"}`)
	ctx := context.Background()
	sessionID := uuid.NewString()

	handle, err := indexSvc.Create(ctx, sessionID)
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	seedChunk(t, factory, handle.IndexName, "Some document text.", []float32{1, 0, 0, 0})

	if _, err := svc.Extract(ctx, &dto.ExtractRequest{SessionID: sessionID, TemplateType: "standard"}); err != nil {
		t.Fatalf("first extract failed: %v", err)
	}
	second, err := svc.Extract(ctx, &dto.ExtractRequest{SessionID: sessionID, TemplateType: "standard"})
	if err != nil {
		t.Fatalf("second extract failed: %v", err)
	}
	if !second.Cached {
		t.Error("second extraction with same key should come from cache")
	}
	if model.calls != 1 {
		t.Errorf("model called %d times, want 1", model.calls)
	}

	// A different template type is a different cache entry.
	if _, err := svc.Extract(ctx, &dto.ExtractRequest{SessionID: sessionID, TemplateType: "detailed"}); err != nil {
		t.Fatalf("extract with other template failed: %v", err)
	}
	if model.calls != 2 {
		t.Errorf("model called %d times after new template, want 2", model.calls)
	}
}

func TestExtractRecomputesAfterInvalidation(t *testing.T) {
	svc, indexSvc, factory, cache, model := newTestExtractionService(t, `{"summary": "ok"}`)
	ctx := context.Background()
	sessionID := uuid.NewString()

	handle, err := indexSvc.Create(ctx, sessionID)
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	seedChunk(t, factory, handle.IndexName, "Some document text.", []float32{1, 0, 0, 0})

	if _, err := svc.Extract(ctx, &dto.ExtractRequest{SessionID: sessionID}); err != nil {
		t.Fatalf("first extract failed: %v", err)
	}
	cache.InvalidateSession(sessionID)

	res, err := svc.Extract(ctx, &dto.ExtractRequest{SessionID: sessionID})
	if err != nil {
		t.Fatalf("extract after invalidation failed: %v", err)
	}
	if res.Cached {
		t.Error("extraction after invalidation should not be cached")
	}
	if model.calls != 2 {
		t.Errorf("model called %d times, want 2", model.calls)
	}
}

func TestExtractUnrecoverableOutput(t *testing.T) {
	svc, indexSvc, factory, _, _ := newTestExtractionService(t, "I could not find any structured data.")
	ctx := context.Background()
	sessionID := uuid.NewString()

	handle, err := indexSvc.Create(ctx, sessionID)
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	seedChunk(t, factory, handle.IndexName, "Some document text.", []float32{1, 0, 0, 0})

	_, err = svc.Extract(ctx, &dto.ExtractRequest{SessionID: sessionID})
	if err == nil {
		t.Fatal("expected extraction error for non-JSON output")
	}
	var extractionErr *extract.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected *extract.ExtractionError, got %T", err)
	}
}

func TestExtractWithoutIndex(t *testing.T) {
	svc, _, _, _, _ := newTestExtractionService(t, `{}`)
	_, err := svc.Extract(context.Background(), &dto.ExtractRequest{SessionID: uuid.NewString()})
	if err == nil {
		t.Fatal("expected error for missing session index")
	}
}
