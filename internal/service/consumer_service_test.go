package service

import (
	"context"
	"encoding/json"
	"testing"

	"rfp-analysis-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

func newTestConsumer(t *testing.T) (*consumerService, IIndexService) {
	t.Helper()
	indexSvc, factory := newTestIndexService(testIndexConfig())
	cs := &consumerService{
		uowFactory:        factory,
		embeddingProvider: &stubEmbedder{vector: []float32{1, 0, 0, 0}},
	}
	return cs, indexSvc
}

func embedMessage(t *testing.T, payload dto.PublishEmbedChunksMessage) *message.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return message.NewMessage(uuid.NewString(), raw)
}

func TestConsumerPersistsPageNumbers(t *testing.T) {
	cs, indexSvc := newTestConsumer(t)
	ctx := context.Background()
	sessionID := uuid.NewString()

	handle, err := indexSvc.Create(ctx, sessionID)
	if err != nil {
		t.Fatalf("create index: %v", err)
	}

	page := 7
	cs.processMessage(ctx, embedMessage(t, dto.PublishEmbedChunksMessage{
		SessionID:  sessionID,
		IndexName:  handle.IndexName,
		Generation: handle.Generation,
		Filename:   "rfp.pdf",
		Chunks: []dto.EmbedChunk{
			{Content: "Budget is fixed at $500,000.", PageNumber: &page},
			{Content: "Delivery runs twelve months."},
		},
	}))

	matches, err := indexSvc.Query(ctx, handle, []float32{1, 0, 0, 0}, 10)
	if err != nil {
		t.Fatalf("query after ingest: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d chunks, want 2", len(matches))
	}
	byContent := map[string]*int{}
	for _, m := range matches {
		byContent[m.Chunk.Content] = m.Chunk.PageNumber
	}
	pn := byContent["Budget is fixed at $500,000."]
	if pn == nil || *pn != 7 {
		t.Errorf("paged chunk lost its page number: %v", pn)
	}
	if byContent["Delivery runs twelve months."] != nil {
		t.Error("unpaged chunk should keep a nil page number")
	}
}

func TestConsumerDropsStaleGeneration(t *testing.T) {
	cs, indexSvc := newTestConsumer(t)
	ctx := context.Background()
	sessionID := uuid.NewString()

	handle, err := indexSvc.Create(ctx, sessionID)
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	stale := dto.PublishEmbedChunksMessage{
		SessionID:  sessionID,
		IndexName:  handle.IndexName,
		Generation: handle.Generation,
		Filename:   "rfp.pdf",
		Chunks:     []dto.EmbedChunk{{Content: "Queued before the reset."}},
	}

	fresh, err := indexSvc.Reset(ctx, sessionID)
	if err != nil {
		t.Fatalf("reset index: %v", err)
	}

	cs.processMessage(ctx, embedMessage(t, stale))

	matches, err := indexSvc.Query(ctx, fresh, []float32{1, 0, 0, 0}, 10)
	if err != nil {
		t.Fatalf("query after drop: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("stale batch was indexed: %d chunks", len(matches))
	}
}
