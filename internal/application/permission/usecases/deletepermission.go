package usecases

import (
	"context"

	"bizdesk/internal/domain/permission"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

type DeletePermissionCommand struct {
	UserID   uint
	ModuleID string
}

type DeletePermissionUseCase struct {
	permissionRepo permission.Repository
	cache          GrantCacheInvalidator
	logger         logger.Interface
}

func NewDeletePermissionUseCase(
	permissionRepo permission.Repository,
	cache GrantCacheInvalidator,
	logger logger.Interface,
) *DeletePermissionUseCase {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &DeletePermissionUseCase{
		permissionRepo: permissionRepo,
		cache:          cache,
		logger:         logger,
	}
}

func (uc *DeletePermissionUseCase) Execute(ctx context.Context, cmd DeletePermissionCommand) error {
	uc.logger.Infow("executing delete permission use case", "user_id", cmd.UserID, "module_id", cmd.ModuleID)

	// read the store directly; the cached view may lag behind a recent edit
	row, err := uc.permissionRepo.GetByUserAndModule(ctx, cmd.UserID, cmd.ModuleID)
	if err != nil {
		uc.logger.Errorw("failed to load permission", "error", err)
		return errors.WrapPersistence("load permission", err)
	}
	if row == nil {
		return errors.NewNotFoundError("permission not found", cmd.ModuleID)
	}

	if err := row.MarkDeleted(); err != nil {
		return err
	}
	if err := uc.permissionRepo.Update(ctx, row); err != nil {
		uc.logger.Errorw("failed to delete permission", "error", err)
		return errors.WrapPersistence("delete permission", err)
	}

	if err := uc.cache.Invalidate(ctx, cmd.UserID); err != nil {
		uc.logger.Errorw("grant change saved but cache invalidation failed", "user_id", cmd.UserID, "error", err)
		return errors.NewInternalError("permission deleted but cached grants could not be refreshed")
	}

	uc.logger.Infow("permission deleted successfully", "user_id", cmd.UserID, "module_id", cmd.ModuleID)
	return nil
}
