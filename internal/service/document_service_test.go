package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/internal/repository/memory"
	"rfp-analysis-be/pkg/chunker"

	"github.com/google/uuid"
)

type capturingPublisher struct {
	payloads [][]byte
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

func newTestDocumentService(t *testing.T) (IDocumentService, IIndexService, *capturingPublisher, *memory.ExtractionCache) {
	t.Helper()
	indexSvc, _ := newTestIndexService(testIndexConfig())
	cache := memory.NewExtractionCache()
	publisher := &capturingPublisher{}
	splitter := chunker.NewSplitter(3, 1)

	svc := NewDocumentService(indexSvc, publisher, cache, splitter, nil, nopLogger{})
	return svc, indexSvc, publisher, cache
}

func TestUploadQueuesChunks(t *testing.T) {
	svc, indexSvc, publisher, _ := newTestDocumentService(t)
	ctx := context.Background()
	sessionID := uuid.NewString()

	content := "The vendor shall deliver by March. Payment follows acceptance. " +
		"Support runs for one year. Renewals are optional. A bond is required."

	res, err := svc.Upload(ctx, &dto.UploadDocumentRequest{
		SessionID: sessionID,
		Filename:  "rfp.txt",
		Content:   content,
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if res.SessionID != sessionID {
		t.Errorf("session id changed: %q", res.SessionID)
	}
	if res.ChunkCount == 0 {
		t.Error("expected at least one chunk")
	}
	if !strings.HasPrefix(res.IndexName, "rfp-analysis-") {
		t.Errorf("unexpected index name %q", res.IndexName)
	}

	if len(publisher.payloads) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(publisher.payloads))
	}
	var msg dto.PublishEmbedChunksMessage
	if err := json.Unmarshal(publisher.payloads[0], &msg); err != nil {
		t.Fatalf("unmarshal published message: %v", err)
	}
	if msg.IndexName != res.IndexName {
		t.Errorf("message index name %q, want %q", msg.IndexName, res.IndexName)
	}
	if msg.Generation != 1 {
		t.Errorf("message generation %d, want 1", msg.Generation)
	}
	if len(msg.Chunks) != res.ChunkCount {
		t.Errorf("message carries %d chunks, response says %d", len(msg.Chunks), res.ChunkCount)
	}

	// Upload must have registered the index.
	if _, err := indexSvc.Resolve(ctx, sessionID); err != nil {
		t.Errorf("resolve after upload: %v", err)
	}
}

func TestUploadPerPagePayload(t *testing.T) {
	svc, _, publisher, _ := newTestDocumentService(t)
	sessionID := uuid.NewString()

	res, err := svc.Upload(context.Background(), &dto.UploadDocumentRequest{
		SessionID: sessionID,
		Filename:  "rfp.pdf",
		Pages: []dto.DocumentPage{
			{PageNumber: 1, Content: "Scope covers design. Build follows. Testing closes the phase."},
			{PageNumber: 2, Content: "   "},
			{PageNumber: 3, Content: "Budget is fixed. Payment is milestone based."},
		},
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if res.ChunkCount == 0 {
		t.Fatal("expected chunks from the non-blank pages")
	}

	var msg dto.PublishEmbedChunksMessage
	if err := json.Unmarshal(publisher.payloads[0], &msg); err != nil {
		t.Fatalf("unmarshal published message: %v", err)
	}
	for i, c := range msg.Chunks {
		if c.PageNumber == nil {
			t.Fatalf("chunk %d has no page number", i)
		}
		if *c.PageNumber == 2 {
			t.Error("the blank page should not yield chunks")
		}
	}
	first, last := msg.Chunks[0], msg.Chunks[len(msg.Chunks)-1]
	if *first.PageNumber != 1 {
		t.Errorf("first chunk page = %d, want 1", *first.PageNumber)
	}
	if *last.PageNumber != 3 {
		t.Errorf("last chunk page = %d, want 3", *last.PageNumber)
	}
}

func TestUploadGeneratesSessionID(t *testing.T) {
	svc, _, _, _ := newTestDocumentService(t)

	res, err := svc.Upload(context.Background(), &dto.UploadDocumentRequest{
		Filename: "rfp.txt",
		Content:  "One sentence only.",
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if res.SessionID == "" {
		t.Error("expected a generated session id")
	}
}

func TestUploadEmptyDocument(t *testing.T) {
	svc, _, publisher, _ := newTestDocumentService(t)

	_, err := svc.Upload(context.Background(), &dto.UploadDocumentRequest{
		Filename: "empty.txt",
		Content:  "   ",
	})
	if err == nil {
		t.Fatal("expected error for empty document")
	}
	if len(publisher.payloads) != 0 {
		t.Error("nothing should be published for an empty document")
	}
}

func TestUploadInvalidatesExtractionCache(t *testing.T) {
	svc, _, _, cache := newTestDocumentService(t)
	sessionID := uuid.NewString()

	cache.Set(sessionID, "standard", map[string]interface{}{"stale": true})

	_, err := svc.Upload(context.Background(), &dto.UploadDocumentRequest{
		SessionID: sessionID,
		Filename:  "rfp.txt",
		Content:   "New material arrived.",
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if _, found := cache.Get(sessionID, "standard"); found {
		t.Error("extraction cache should be invalidated by a new upload")
	}
}

func TestClearResetsIndexAndCache(t *testing.T) {
	svc, indexSvc, _, cache := newTestDocumentService(t)
	ctx := context.Background()
	sessionID := uuid.NewString()

	if _, err := svc.Upload(ctx, &dto.UploadDocumentRequest{
		SessionID: sessionID,
		Filename:  "rfp.txt",
		Content:   "Initial content here.",
	}); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	cache.Set(sessionID, "standard", map[string]interface{}{"x": 1})

	res, err := svc.Clear(ctx, sessionID)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if res.IndexName == "" {
		t.Error("clear should report the index name")
	}
	if _, found := cache.Get(sessionID, "standard"); found {
		t.Error("clear should drop cached extractions")
	}

	handle, err := indexSvc.Resolve(ctx, sessionID)
	if err != nil {
		t.Fatalf("resolve after clear: %v", err)
	}
	if handle.Generation != 2 {
		t.Errorf("generation after clear = %d, want 2", handle.Generation)
	}
}

func TestCleanupRemovesIndex(t *testing.T) {
	svc, indexSvc, _, cache := newTestDocumentService(t)
	ctx := context.Background()
	sessionID := uuid.NewString()

	if _, err := svc.Upload(ctx, &dto.UploadDocumentRequest{
		SessionID: sessionID,
		Filename:  "rfp.txt",
		Content:   "Initial content here.",
	}); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	cache.Set(sessionID, "standard", map[string]interface{}{"x": 1})

	if err := svc.Cleanup(ctx, sessionID); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if _, err := indexSvc.Resolve(ctx, sessionID); err == nil {
		t.Error("index should be gone after cleanup")
	}
	if _, found := cache.Get(sessionID, "standard"); found {
		t.Error("cleanup should drop cached extractions")
	}
}
