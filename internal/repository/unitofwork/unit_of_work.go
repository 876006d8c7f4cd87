package unitofwork

import (
	"context"

	"rfp-analysis-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentChunkRepository() contract.DocumentChunkRepository
	VectorIndexRepository() contract.VectorIndexRepository
}
