package contract

import (
	"context"

	"rfp-analysis-be/internal/entity"
	"rfp-analysis-be/internal/repository/specification"
)

// ScoredDocumentChunk wraps DocumentChunk with its similarity score
type ScoredDocumentChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByIndexName(ctx context.Context, indexName string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns the top chunks of one index by
	// cosine similarity to the query vector, descending.
	SearchSimilarWithScore(ctx context.Context, indexName string, embedding []float32, limit int) ([]*ScoredDocumentChunk, error)
	// FirstVector returns any stored vector from the index, used as a
	// comparison probe against other indexes.
	FirstVector(ctx context.Context, indexName string) ([]float32, error)
}
