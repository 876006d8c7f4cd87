package entity

import "time"

// VectorIndex is the registry row for one session's isolated index.
// Generation increments on every reset so handles issued against the
// old incarnation can be detected as stale.
type VectorIndex struct {
	Name           string
	SessionID      string
	Dimension      int
	EmbeddingModel string
	Generation     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
