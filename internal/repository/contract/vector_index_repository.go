package contract

import (
	"context"

	"rfp-analysis-be/internal/entity"
)

type VectorIndexRepository interface {
	// Upsert creates the registry row if absent; existing rows are
	// left untouched so create stays idempotent.
	Upsert(ctx context.Context, index *entity.VectorIndex) error
	FindByName(ctx context.Context, name string) (*entity.VectorIndex, error)
	FindBySessionID(ctx context.Context, sessionID string) (*entity.VectorIndex, error)
	List(ctx context.Context) ([]*entity.VectorIndex, error)
	Delete(ctx context.Context, name string) error
	// IncrementGeneration bumps the index generation during a reset
	// and returns the new value.
	IncrementGeneration(ctx context.Context, name string) (int, error)
}
