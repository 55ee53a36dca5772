package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bizdesk/internal/domain/module"
	"bizdesk/internal/infrastructure/persistence/mappers"
	"bizdesk/internal/infrastructure/persistence/models"
	"bizdesk/internal/shared/db"
	apperrors "bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

// ModuleRepositoryImpl implements the module.Repository interface.
type ModuleRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ModuleMapper
	logger logger.Interface
}

// NewModuleRepository creates a new module repository instance.
func NewModuleRepository(db *gorm.DB, logger logger.Interface) module.Repository {
	return &ModuleRepositoryImpl{
		db:     db,
		mapper: mappers.NewModuleMapper(),
		logger: logger,
	}
}

// Create inserts the module and records the assigned insertion sequence.
func (r *ModuleRepositoryImpl) Create(ctx context.Context, m *module.Module) error {
	model, err := r.mapper.ToModel(m)
	if err != nil {
		return fmt.Errorf("failed to map module entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("module already exists", m.ID())
		}
		r.logger.Errorw("failed to create module in database", "id", m.ID(), "error", err)
		return fmt.Errorf("failed to create module: %w", err)
	}

	if err := m.SetSeq(model.ID); err != nil {
		return fmt.Errorf("failed to set module sequence: %w", err)
	}

	r.logger.Infow("module created successfully", "id", m.ID(), "tab_url", m.TabURL())
	return nil
}

func (r *ModuleRepositoryImpl) GetByID(ctx context.Context, id string) (*module.Module, error) {
	var model models.ModuleModel

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("sid = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get module by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *ModuleRepositoryImpl) GetByTabURL(ctx context.Context, tabURL string) (*module.Module, error) {
	var model models.ModuleModel

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.Scopes(db.NotDeleted()).
		Where("tab_url = ?", tabURL).
		Order("id ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get module by tab URL", "tab_url", tabURL, "error", err)
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *ModuleRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]*module.Module, error) {
	if len(ids) == 0 {
		return []*module.Module{}, nil
	}

	var modelList []*models.ModuleModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("sid IN ?", ids).Order("number ASC, id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to get modules by IDs", "count", len(ids), "error", err)
		return nil, fmt.Errorf("failed to get modules: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// List applies only the filters that are set. An empty ParentID selects roots.
func (r *ModuleRepositoryImpl) List(ctx context.Context, filter module.Filter) ([]*module.Module, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ModuleModel{})

	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsDeleted != nil {
		query = query.Scopes(db.WithDeleted(*filter.IsDeleted))
	}
	if filter.ParentID != nil {
		if *filter.ParentID == "" {
			query = query.Where("parent_id IS NULL")
		} else {
			query = query.Where("parent_id = ?", *filter.ParentID)
		}
	}

	var modelList []*models.ModuleModel
	if err := query.Order("number ASC, id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list modules", "error", err)
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// ListForUpdate locks every module row with SELECT ... FOR UPDATE. SQLite
// has no row locks; its single writer already serializes the transaction.
func (r *ModuleRepositoryImpl) ListForUpdate(ctx context.Context) ([]*module.Module, error) {
	query := db.GetTxFromContext(ctx, r.db)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var modelList []*models.ModuleModel
	if err := query.Order("number ASC, id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to lock modules", "error", err)
		return nil, fmt.Errorf("failed to lock modules: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

func (r *ModuleRepositoryImpl) Update(ctx context.Context, m *module.Module) error {
	model, err := r.mapper.ToModel(m)
	if err != nil {
		return fmt.Errorf("failed to map module entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.ModuleModel{}).
		Where("sid = ?", model.SID).
		Updates(map[string]any{
			"tab_name":   model.TabName,
			"name":       model.Name,
			"tab_url":    model.TabURL,
			"number":     model.Number,
			"parent_id":  model.ParentID,
			"has_view":   model.HasView,
			"has_add":    model.HasAdd,
			"has_edit":   model.HasEdit,
			"has_delete": model.HasDelete,
			"is_default": model.IsDefault,
			"is_active":  model.IsActive,
			"is_deleted": model.IsDeleted,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update module", "id", model.SID, "error", result.Error)
		return fmt.Errorf("failed to update module: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("module not found", model.SID)
	}

	r.logger.Infow("module updated successfully", "id", model.SID)
	return nil
}

// ExistsByTabURL reports whether a non-deleted module other than excludeID
// already uses tabURL.
func (r *ModuleRepositoryImpl) ExistsByTabURL(ctx context.Context, tabURL string, excludeID string) (bool, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ModuleModel{}).
		Scopes(db.NotDeleted()).
		Where("tab_url = ?", tabURL)
	if excludeID != "" {
		query = query.Where("sid <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		r.logger.Errorw("failed to check module tab URL", "tab_url", tabURL, "error", err)
		return false, fmt.Errorf("failed to check module tab URL: %w", err)
	}
	return count > 0, nil
}
