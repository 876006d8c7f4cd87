package implementation

import (
	"context"
	"errors"

	"rfp-analysis-be/internal/entity"
	"rfp-analysis-be/internal/mapper"
	"rfp-analysis-be/internal/model"
	"rfp-analysis-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VectorIndexRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VectorIndexMapper
}

func NewVectorIndexRepository(db *gorm.DB) contract.VectorIndexRepository {
	return &VectorIndexRepositoryImpl{
		db:     db,
		mapper: mapper.NewVectorIndexMapper(),
	}
}

func (r *VectorIndexRepositoryImpl) Upsert(ctx context.Context, index *entity.VectorIndex) error {
	m := r.mapper.ToModel(index)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(m).Error
	if err != nil {
		return err
	}

	// Re-read so callers observe the surviving row on conflict.
	var current model.VectorIndex
	if err := r.db.WithContext(ctx).First(&current, "name = ?", m.Name).Error; err != nil {
		return err
	}
	*index = *r.mapper.ToEntity(&current)
	return nil
}

func (r *VectorIndexRepositoryImpl) FindByName(ctx context.Context, name string) (*entity.VectorIndex, error) {
	var m model.VectorIndex
	if err := r.db.WithContext(ctx).First(&m, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *VectorIndexRepositoryImpl) FindBySessionID(ctx context.Context, sessionID string) (*entity.VectorIndex, error) {
	var m model.VectorIndex
	if err := r.db.WithContext(ctx).First(&m, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *VectorIndexRepositoryImpl) List(ctx context.Context) ([]*entity.VectorIndex, error) {
	var models []*model.VectorIndex
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.VectorIndex, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *VectorIndexRepositoryImpl) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Delete(&model.VectorIndex{}, "name = ?", name).Error
}

func (r *VectorIndexRepositoryImpl) IncrementGeneration(ctx context.Context, name string) (int, error) {
	var generation int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.VectorIndex
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "name = ?", name).Error; err != nil {
			return err
		}
		m.Generation++
		generation = m.Generation
		return tx.Save(&m).Error
	})
	return generation, err
}
