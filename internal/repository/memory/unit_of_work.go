package memory

import (
	"context"

	"rfp-analysis-be/internal/repository/contract"
	"rfp-analysis-be/internal/repository/unitofwork"
)

// RepositoryFactory hands out units of work that share one in-memory
// store. Begin/Commit/Rollback are accepted but not transactional;
// tests that exercise rollback behavior need the persistent stack.
type RepositoryFactory struct {
	chunks  *DocumentChunkRepository
	indexes *VectorIndexRepository
}

var _ unitofwork.RepositoryFactory = &RepositoryFactory{}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{
		chunks:  NewDocumentChunkRepository(),
		indexes: NewVectorIndexRepository(),
	}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{factory: f}
}

type unitOfWork struct {
	factory *RepositoryFactory
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return u.factory.chunks
}

func (u *unitOfWork) VectorIndexRepository() contract.VectorIndexRepository {
	return u.factory.indexes
}
