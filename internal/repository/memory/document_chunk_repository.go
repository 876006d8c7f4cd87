package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"rfp-analysis-be/internal/entity"
	"rfp-analysis-be/internal/repository/contract"
	"rfp-analysis-be/internal/repository/specification"

	"github.com/google/uuid"
)

// DocumentChunkRepository is an in-memory stand-in for the pgvector
// implementation. Similarity is exact cosine, so ordering matches the
// database behavior. Only the ByIndexName specification is honored;
// the rest require SQL.
type DocumentChunkRepository struct {
	mu     sync.RWMutex
	chunks map[string][]*entity.DocumentChunk // index name -> chunks
}

var _ contract.DocumentChunkRepository = &DocumentChunkRepository{}

func NewDocumentChunkRepository() *DocumentChunkRepository {
	return &DocumentChunkRepository{
		chunks: make(map[string][]*entity.DocumentChunk),
	}
}

func (r *DocumentChunkRepository) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	return r.CreateBulk(ctx, []*entity.DocumentChunk{chunk})
}

func (r *DocumentChunkRepository) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chunk := range chunks {
		if chunk.Id == uuid.Nil {
			chunk.Id = uuid.New()
		}
		r.chunks[chunk.IndexName] = append(r.chunks[chunk.IndexName], chunk)
	}
	return nil
}

func (r *DocumentChunkRepository) DeleteByIndexName(ctx context.Context, indexName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chunks, indexName)
	return nil
}

func (r *DocumentChunkRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := indexNameFrom(specs); ok {
		out := make([]*entity.DocumentChunk, len(r.chunks[name]))
		copy(out, r.chunks[name])
		return out, nil
	}

	var all []*entity.DocumentChunk
	for _, chunks := range r.chunks {
		all = append(all, chunks...)
	}
	return all, nil
}

func (r *DocumentChunkRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func indexNameFrom(specs []specification.Specification) (string, bool) {
	for _, spec := range specs {
		if byName, ok := spec.(specification.ByIndexName); ok {
			return byName.IndexName, true
		}
	}
	return "", false
}

func (r *DocumentChunkRepository) SearchSimilarWithScore(ctx context.Context, indexName string, embedding []float32, limit int) ([]*contract.ScoredDocumentChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	scored := make([]*contract.ScoredDocumentChunk, 0, len(r.chunks[indexName]))
	for _, chunk := range r.chunks[indexName] {
		scored = append(scored, &contract.ScoredDocumentChunk{
			Chunk:      chunk,
			Similarity: cosineSimilarity(embedding, chunk.EmbeddingValue),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (r *DocumentChunkRepository) FirstVector(ctx context.Context, indexName string) ([]float32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if chunks := r.chunks[indexName]; len(chunks) > 0 {
		return chunks[0].EmbeddingValue, nil
	}
	return nil, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
