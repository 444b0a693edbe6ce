package persistence

import (
	"context"
	"errors"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSyncRunRepository implements catalog.SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Save creates or updates a run
func (r *GormSyncRunRepository) Save(ctx context.Context, run *catalog.SyncRun) error {
	return r.db.WithContext(ctx).Save(models.SyncRunModelFromDomain(run)).Error
}

// FindLatest returns the most recently started run
func (r *GormSyncRunRepository) FindLatest(ctx context.Context) (*catalog.SyncRun, error) {
	var model models.SyncRunModel
	if err := r.db.WithContext(ctx).Order("started_at DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormSyncRunRepository implements catalog.SyncRunRepository
var _ catalog.SyncRunRepository = (*GormSyncRunRepository)(nil)
