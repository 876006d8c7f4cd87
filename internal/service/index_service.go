package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rfp-analysis-be/internal/config"
	"rfp-analysis-be/internal/entity"
	"rfp-analysis-be/internal/pkg/logger"
	"rfp-analysis-be/internal/repository/contract"
	"rfp-analysis-be/internal/repository/specification"
	"rfp-analysis-be/internal/repository/unitofwork"
)

var (
	// ErrProtectedIndex rejects deletion of allowlisted index names.
	ErrProtectedIndex = errors.New("cannot delete protected index")
	// ErrStaleIndex means the handle was issued before a reset and the
	// caller must re-resolve it.
	ErrStaleIndex = errors.New("index handle is stale, re-resolve the session index")
	// ErrIndexNotFound means no index exists for the session yet.
	ErrIndexNotFound = errors.New("no index found for session")
)

// IndexHandle pins one incarnation of a session index. Queries made
// through a handle fail with ErrStaleIndex once the index is reset.
type IndexHandle struct {
	IndexName      string
	SessionID      string
	EmbeddingModel string
	Generation     int
}

type IIndexService interface {
	// Create is idempotent: an existing session index is returned as-is.
	Create(ctx context.Context, sessionID string) (*IndexHandle, error)
	Resolve(ctx context.Context, sessionID string) (*IndexHandle, error)
	Query(ctx context.Context, handle *IndexHandle, vector []float32, topK int) ([]*contract.ScoredDocumentChunk, error)
	CountDocuments(ctx context.Context, handle *IndexHandle) (int64, error)
	// Reset atomically clears and recreates the session's index,
	// invalidating all previously issued handles.
	Reset(ctx context.Context, sessionID string) (*IndexHandle, error)
	// Delete removes the session's index entirely. Protected names are
	// refused unconditionally, before any side effect.
	Delete(ctx context.Context, sessionID string) error
	// Compare probes the session index's vectors against a reference
	// index and reports the average similarity.
	Compare(ctx context.Context, sessionID string, referenceIndex string, topK int) (float64, int, error)
	DeriveName(sessionID string) string
}

type indexService struct {
	uowFactory unitofwork.RepositoryFactory
	cfg        config.IndexConfig
	model      string
	logger     logger.ILogger

	// sessionLocks serializes destructive operations against queries
	// and writes for the same session.
	sessionLocks sync.Map // session id -> *sync.Mutex
}

func NewIndexService(uowFactory unitofwork.RepositoryFactory, cfg config.IndexConfig, embeddingModel string, log logger.ILogger) IIndexService {
	return &indexService{
		uowFactory: uowFactory,
		cfg:        cfg,
		model:      embeddingModel,
		logger:     log,
	}
}

// DeriveName maps a session id to its index name: base name plus the
// first 8 characters of the session id, truncated to the maximum
// index-name length. Pure, so cleanup can locate the index without a
// side table.
func (s *indexService) DeriveName(sessionID string) string {
	shortID := sessionID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	name := fmt.Sprintf("%s-%s", s.cfg.BaseName, shortID)
	if len(name) > s.cfg.MaxNameLength {
		name = name[:s.cfg.MaxNameLength]
	}
	return name
}

func (s *indexService) lock(sessionID string) *sync.Mutex {
	mu, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *indexService) Create(ctx context.Context, sessionID string) (*IndexHandle, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	name := s.DeriveName(sessionID)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	index := &entity.VectorIndex{
		Name:           name,
		SessionID:      sessionID,
		Dimension:      s.cfg.Dimension,
		EmbeddingModel: s.model,
		Generation:     1,
		CreatedAt:      time.Now(),
	}
	if err := uow.VectorIndexRepository().Upsert(ctx, index); err != nil {
		return nil, err
	}

	s.logger.Info("IndexService", "Index ready", map[string]interface{}{
		"index_name": name,
		"session_id": sessionID,
		"generation": index.Generation,
	})
	return &IndexHandle{
		IndexName:      index.Name,
		SessionID:      sessionID,
		EmbeddingModel: index.EmbeddingModel,
		Generation:     index.Generation,
	}, nil
}

func (s *indexService) Resolve(ctx context.Context, sessionID string) (*IndexHandle, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	index, err := uow.VectorIndexRepository().FindByName(ctx, s.DeriveName(sessionID))
	if err != nil {
		return nil, err
	}
	if index == nil {
		return nil, ErrIndexNotFound
	}
	return &IndexHandle{
		IndexName:      index.Name,
		SessionID:      sessionID,
		EmbeddingModel: index.EmbeddingModel,
		Generation:     index.Generation,
	}, nil
}

// checkFresh verifies the handle still points at the live incarnation.
func (s *indexService) checkFresh(ctx context.Context, uow unitofwork.UnitOfWork, handle *IndexHandle) error {
	index, err := uow.VectorIndexRepository().FindByName(ctx, handle.IndexName)
	if err != nil {
		return err
	}
	if index == nil || index.Generation != handle.Generation {
		return ErrStaleIndex
	}
	return nil
}

func (s *indexService) Query(ctx context.Context, handle *IndexHandle, vector []float32, topK int) ([]*contract.ScoredDocumentChunk, error) {
	mu := s.lock(handle.SessionID)
	mu.Lock()
	defer mu.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.checkFresh(ctx, uow, handle); err != nil {
		return nil, err
	}
	return uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, handle.IndexName, vector, topK)
}

func (s *indexService) CountDocuments(ctx context.Context, handle *IndexHandle) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.checkFresh(ctx, uow, handle); err != nil {
		return 0, err
	}
	return uow.DocumentChunkRepository().Count(ctx, specification.ByIndexName{IndexName: handle.IndexName})
}

func (s *indexService) Reset(ctx context.Context, sessionID string) (*IndexHandle, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	name := s.DeriveName(sessionID)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	index, err := uow.VectorIndexRepository().FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if index == nil {
		// Nothing to clear; fall through to a plain create.
		index = &entity.VectorIndex{
			Name:           name,
			SessionID:      sessionID,
			Dimension:      s.cfg.Dimension,
			EmbeddingModel: s.model,
			Generation:     1,
			CreatedAt:      time.Now(),
		}
		if err := uow.VectorIndexRepository().Upsert(ctx, index); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &IndexHandle{IndexName: name, SessionID: sessionID, EmbeddingModel: index.EmbeddingModel, Generation: index.Generation}, nil
	}

	if err := uow.DocumentChunkRepository().DeleteByIndexName(ctx, name); err != nil {
		return nil, err
	}
	generation, err := uow.VectorIndexRepository().IncrementGeneration(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("IndexService", "Index reset", map[string]interface{}{
		"index_name": name,
		"session_id": sessionID,
		"generation": generation,
	})
	return &IndexHandle{
		IndexName:      name,
		SessionID:      sessionID,
		EmbeddingModel: index.EmbeddingModel,
		Generation:     generation,
	}, nil
}

func (s *indexService) Delete(ctx context.Context, sessionID string) error {
	name := s.DeriveName(sessionID)

	// The protected check is unconditional and happens before any
	// deletion side effect, regardless of caller intent.
	for _, protected := range s.cfg.ProtectedNames {
		if name == protected {
			s.logger.Warn("IndexService", "Refusing to delete protected index", map[string]interface{}{
				"index_name": name,
			})
			return ErrProtectedIndex
		}
	}

	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	index, err := uow.VectorIndexRepository().FindByName(ctx, name)
	if err != nil {
		return err
	}
	if index == nil {
		return ErrIndexNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByIndexName(ctx, name); err != nil {
		return err
	}
	if err := uow.VectorIndexRepository().Delete(ctx, name); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("IndexService", "Index deleted", map[string]interface{}{
		"index_name": name,
		"session_id": sessionID,
	})
	return nil
}

func (s *indexService) Compare(ctx context.Context, sessionID string, referenceIndex string, topK int) (float64, int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	name := s.DeriveName(sessionID)
	probe, err := uow.DocumentChunkRepository().FirstVector(ctx, name)
	if err != nil {
		return 0, 0, err
	}
	if probe == nil {
		return 0, 0, fmt.Errorf("no vectors found in %s index", name)
	}

	matches, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, referenceIndex, probe, topK)
	if err != nil {
		return 0, 0, err
	}
	if len(matches) == 0 {
		return 0, 0, nil
	}

	var sum float64
	for _, m := range matches {
		sum += m.Similarity
	}
	return sum / float64(len(matches)), len(matches), nil
}
