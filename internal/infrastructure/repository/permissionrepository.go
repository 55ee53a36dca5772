package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bizdesk/internal/domain/permission"
	"bizdesk/internal/infrastructure/persistence/mappers"
	"bizdesk/internal/infrastructure/persistence/models"
	"bizdesk/internal/shared/db"
	apperrors "bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

// PermissionRepositoryImpl implements permission.Repository on gorm.
type PermissionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PermissionMapper
	logger logger.Interface
}

func NewPermissionRepository(db *gorm.DB, logger logger.Interface) permission.Repository {
	return &PermissionRepositoryImpl{
		db:     db,
		mapper: mappers.NewPermissionMapper(),
		logger: logger,
	}
}

func (r *PermissionRepositoryImpl) GetByUserAndModule(ctx context.Context, userID uint, moduleID string) (*permission.Permission, error) {
	return r.first(ctx, db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND module_id = ?", userID, moduleID))
}

func (r *PermissionRepositoryImpl) GetActiveByUserAndModule(ctx context.Context, userID uint, moduleID string) (*permission.Permission, error) {
	return r.first(ctx, db.GetTxFromContext(ctx, r.db).
		Scopes(db.NotDeleted()).
		Where("user_id = ? AND module_id = ?", userID, moduleID))
}

func (r *PermissionRepositoryImpl) first(_ context.Context, query *gorm.DB) (*permission.Permission, error) {
	var model models.PermissionModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get permission", "error", err)
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *PermissionRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*permission.Permission, error) {
	return r.list(db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID), userID)
}

func (r *PermissionRepositoryImpl) ListActiveByUser(ctx context.Context, userID uint) ([]*permission.Permission, error) {
	return r.list(db.GetTxFromContext(ctx, r.db).Scopes(db.NotDeleted()).Where("user_id = ?", userID), userID)
}

func (r *PermissionRepositoryImpl) list(query *gorm.DB, userID uint) ([]*permission.Permission, error) {
	var modelList []*models.PermissionModel
	if err := query.Order("id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list permissions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return r.mapper.ToEntities(modelList)
}

// Create inserts a new row. The (user_id, module_id) unique index turns a
// second row for the same pair into a conflict.
func (r *PermissionRepositoryImpl) Create(ctx context.Context, p *permission.Permission) error {
	model := r.mapper.ToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("permission already exists for module", p.ModuleID())
		}
		r.logger.Errorw("failed to create permission", "user_id", p.UserID(), "module_id", p.ModuleID(), "error", err)
		return fmt.Errorf("failed to create permission: %w", err)
	}
	return nil
}

func (r *PermissionRepositoryImpl) Update(ctx context.Context, p *permission.Permission) error {
	model := r.mapper.ToModel(p)

	result := db.GetTxFromContext(ctx, r.db).Model(&models.PermissionModel{}).
		Where("sid = ?", model.SID).
		Updates(map[string]any{
			"can_view":   model.CanView,
			"can_add":    model.CanAdd,
			"can_edit":   model.CanEdit,
			"can_delete": model.CanDelete,
			"is_blocked": model.IsBlocked,
			"is_deleted": model.IsDeleted,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update permission", "id", model.SID, "error", result.Error)
		return fmt.Errorf("failed to update permission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("permission not found", model.SID)
	}
	return nil
}
