package memory

import (
	"context"
	"sync"

	"rfp-analysis-be/internal/entity"
	"rfp-analysis-be/internal/repository/contract"
)

// VectorIndexRepository is an in-memory index registry with the same
// semantics as the persistent one.
type VectorIndexRepository struct {
	mu      sync.RWMutex
	indexes map[string]*entity.VectorIndex
}

var _ contract.VectorIndexRepository = &VectorIndexRepository{}

func NewVectorIndexRepository() *VectorIndexRepository {
	return &VectorIndexRepository{
		indexes: make(map[string]*entity.VectorIndex),
	}
}

func (r *VectorIndexRepository) Upsert(ctx context.Context, index *entity.VectorIndex) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.indexes[index.Name]; ok {
		*index = *existing
		return nil
	}
	stored := *index
	r.indexes[index.Name] = &stored
	return nil
}

func (r *VectorIndexRepository) FindByName(ctx context.Context, name string) (*entity.VectorIndex, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index, ok := r.indexes[name]; ok {
		copied := *index
		return &copied, nil
	}
	return nil, nil
}

func (r *VectorIndexRepository) FindBySessionID(ctx context.Context, sessionID string) (*entity.VectorIndex, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, index := range r.indexes {
		if index.SessionID == sessionID {
			copied := *index
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *VectorIndexRepository) List(ctx context.Context) ([]*entity.VectorIndex, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.VectorIndex, 0, len(r.indexes))
	for _, index := range r.indexes {
		copied := *index
		out = append(out, &copied)
	}
	return out, nil
}

func (r *VectorIndexRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.indexes, name)
	return nil
}

func (r *VectorIndexRepository) IncrementGeneration(ctx context.Context, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	index, ok := r.indexes[name]
	if !ok {
		return 0, nil
	}
	index.Generation++
	return index.Generation, nil
}
