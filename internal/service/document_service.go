package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/internal/pkg/logger"
	"rfp-analysis-be/internal/repository/memory"
	"rfp-analysis-be/pkg/chunker"
	"rfp-analysis-be/pkg/events"
	pktNats "rfp-analysis-be/pkg/nats"

	"github.com/google/uuid"
)

type IDocumentService interface {
	// Upload splits the document and queues its chunks for embedding.
	// A blank session id gets a fresh one.
	Upload(ctx context.Context, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	// Clear wipes the session's chunks but keeps the index, and drops
	// all cached extractions for the session.
	Clear(ctx context.Context, sessionID string) (*dto.ClearDocumentsResponse, error)
	// Cleanup removes the session's index entirely along with its
	// cached extractions.
	Cleanup(ctx context.Context, sessionID string) error
}

type documentService struct {
	indexService     IIndexService
	publisherService IPublisherService
	extractionCache  *memory.ExtractionCache
	splitter         *chunker.Splitter
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewDocumentService(
	indexService IIndexService,
	publisherService IPublisherService,
	extractionCache *memory.ExtractionCache,
	splitter *chunker.Splitter,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		indexService:     indexService,
		publisherService: publisherService,
		extractionCache:  extractionCache,
		splitter:         splitter,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *documentService) Upload(ctx context.Context, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	handle, err := s.indexService.Create(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	embedChunks, err := s.splitDocument(req)
	if err != nil {
		return nil, err
	}

	payload := dto.PublishEmbedChunksMessage{
		SessionID:  sessionID,
		IndexName:  handle.IndexName,
		Generation: handle.Generation,
		Filename:   req.Filename,
		Chunks:     embedChunks,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payloadJson); err != nil {
		return nil, err
	}

	// A new document invalidates any extraction computed before it.
	s.extractionCache.InvalidateSession(sessionID)

	s.logger.Info("DocumentService", "Document queued for embedding", map[string]interface{}{
		"session_id":  sessionID,
		"index_name":  handle.IndexName,
		"filename":    req.Filename,
		"chunk_count": len(embedChunks),
	})

	return &dto.UploadDocumentResponse{
		SessionID:  sessionID,
		IndexName:  handle.IndexName,
		Filename:   req.Filename,
		ChunkCount: len(embedChunks),
	}, nil
}

// splitDocument chunks either the flat content or each page in turn.
// Page-splitting keeps windows inside page boundaries so every chunk
// carries a single page number.
func (s *documentService) splitDocument(req *dto.UploadDocumentRequest) ([]dto.EmbedChunk, error) {
	if len(req.Pages) == 0 {
		chunks, err := s.splitter.Split(req.Content, req.Filename)
		if err != nil {
			if errors.Is(err, chunker.ErrEmptyInput) {
				return nil, fmt.Errorf("document %s contains no extractable text", req.Filename)
			}
			return nil, err
		}
		out := make([]dto.EmbedChunk, len(chunks))
		for i, c := range chunks {
			out[i] = dto.EmbedChunk{Content: c.Text}
		}
		return out, nil
	}

	var out []dto.EmbedChunk
	for _, page := range req.Pages {
		chunks, err := s.splitter.Split(page.Content, req.Filename)
		if err != nil {
			if errors.Is(err, chunker.ErrEmptyInput) {
				continue // blank pages are common in scanned documents
			}
			return nil, err
		}
		pn := page.PageNumber
		for _, c := range chunks {
			out = append(out, dto.EmbedChunk{Content: c.Text, PageNumber: &pn})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("document %s contains no extractable text", req.Filename)
	}
	return out, nil
}

func (s *documentService) Clear(ctx context.Context, sessionID string) (*dto.ClearDocumentsResponse, error) {
	handle, err := s.indexService.Reset(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.extractionCache.InvalidateSession(sessionID)

	return &dto.ClearDocumentsResponse{
		SessionID: sessionID,
		IndexName: handle.IndexName,
	}, nil
}

func (s *documentService) Cleanup(ctx context.Context, sessionID string) error {
	if err := s.indexService.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.extractionCache.InvalidateSession(sessionID)

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "SESSION_CLEANED_UP",
			Data: map[string]interface{}{
				"session_id": sessionID,
			},
			OccurredAt: time.Now(),
		}
		// Auxiliary notification, failure does not fail the request.
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("DocumentService", "Failed to publish SESSION_CLEANED_UP event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}
