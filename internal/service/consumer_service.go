package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/internal/entity"
	"rfp-analysis-be/internal/repository/unitofwork"
	"rfp-analysis-be/pkg/embedding"
	"rfp-analysis-be/pkg/events"
	pktNats "rfp-analysis-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	eventPublisher    *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedChunksMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing %d chunks for index %s (file: %s)", len(payload.Chunks), payload.IndexName, payload.Filename)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// Drop batches whose index was reset or deleted after the upload
	// was queued. Their vectors would land in the wrong incarnation.
	index, err := uow.VectorIndexRepository().FindByName(ctx, payload.IndexName)
	if err != nil {
		log.Printf("[ERROR] Failed to look up index %s: %v", payload.IndexName, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if index == nil || index.Generation != payload.Generation {
		log.Printf("[WARN] Index %s gone or reset since upload, dropping batch", payload.IndexName)
		msg.Ack()
		return
	}

	texts := make([]string, len(payload.Chunks))
	for i, c := range payload.Chunks {
		texts[i] = c.Content
	}
	vectors, err := cs.embeddingProvider.EmbedBatch(ctx, texts)
	if err != nil {
		log.Printf("[ERROR] Failed to embed chunks for index %s: %v", payload.IndexName, err)
		msg.Nack()
		return
	}

	newChunks := make([]*entity.DocumentChunk, 0, len(payload.Chunks))
	for i, c := range payload.Chunks {
		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:             uuid.New(),
			IndexName:      payload.IndexName,
			Content:        c.Content,
			SourceFilename: payload.Filename,
			PageNumber:     c.PageNumber,
			ChunkIndex:     i,
			Metadata: map[string]interface{}{
				"session_id": payload.SessionID,
			},
			EmbeddingValue: vectors[i],
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if len(newChunks) > 0 {
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create bulk chunks: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Indexed %d chunks into %s for session %s", len(newChunks), payload.IndexName, payload.SessionID)
	msg.Ack()

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "DOCUMENT_INGESTED",
			Data: map[string]interface{}{
				"session_id":  payload.SessionID,
				"index_name":  payload.IndexName,
				"filename":    payload.Filename,
				"chunk_count": len(newChunks),
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish DOCUMENT_INGESTED event: %v", err)
		}
	}
}
