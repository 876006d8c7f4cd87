package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one embedded span of an uploaded document.
// Immutable once written; destroyed when its index is reset or deleted.
type DocumentChunk struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	IndexName      string
	Content        string
	SourceFilename string
	PageNumber     *int
	ChunkIndex     int
	Metadata       map[string]interface{}
	EmbeddingValue []float32
	CreatedAt      time.Time
}
