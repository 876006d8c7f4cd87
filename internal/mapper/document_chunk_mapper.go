package mapper

import (
	"encoding/json"
	"time"

	"rfp-analysis-be/internal/entity"
	"rfp-analysis-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(c.Metadata) > 0 {
		// Metadata is best-effort provenance; a corrupt blob should not
		// poison the chunk itself.
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	return &entity.DocumentChunk{
		Id:             c.Id,
		IndexName:      c.IndexName,
		Content:        c.Content,
		SourceFilename: c.SourceFilename,
		PageNumber:     c.PageNumber,
		ChunkIndex:     c.ChunkIndex,
		Metadata:       metadata,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	var metadata datatypes.JSON
	if c.Metadata != nil {
		if raw, err := json.Marshal(c.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.DocumentChunk{
		Id:             c.Id,
		IndexName:      c.IndexName,
		Content:        c.Content,
		SourceFilename: c.SourceFilename,
		PageNumber:     c.PageNumber,
		ChunkIndex:     c.ChunkIndex,
		Metadata:       metadata,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToEntities(chunks []*model.DocumentChunk) []*entity.DocumentChunk {
	entities := make([]*entity.DocumentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *DocumentChunkMapper) ToModels(chunks []*entity.DocumentChunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}

type VectorIndexMapper struct{}

func NewVectorIndexMapper() *VectorIndexMapper {
	return &VectorIndexMapper{}
}

func (m *VectorIndexMapper) ToEntity(v *model.VectorIndex) *entity.VectorIndex {
	if v == nil {
		return nil
	}

	var updatedAt *time.Time
	if !v.UpdatedAt.IsZero() {
		t := v.UpdatedAt
		updatedAt = &t
	}

	return &entity.VectorIndex{
		Name:           v.Name,
		SessionID:      v.SessionID,
		Dimension:      v.Dimension,
		EmbeddingModel: v.EmbeddingModel,
		Generation:     v.Generation,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *VectorIndexMapper) ToModel(v *entity.VectorIndex) *model.VectorIndex {
	if v == nil {
		return nil
	}

	var updatedAt time.Time
	if v.UpdatedAt != nil {
		updatedAt = *v.UpdatedAt
	}

	return &model.VectorIndex{
		Name:           v.Name,
		SessionID:      v.SessionID,
		Dimension:      v.Dimension,
		EmbeddingModel: v.EmbeddingModel,
		Generation:     v.Generation,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}
