package usecases

import (
	"context"

	"bizdesk/internal/application/permission/dto"
	"bizdesk/internal/domain/module"
	"bizdesk/internal/domain/permission"
	"bizdesk/internal/domain/user"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/id"
	"bizdesk/internal/shared/logger"
)

type EditPermissionsCommand struct {
	UserID uint
	Edits  []permission.Edit
}

// EditPermissionsUseCase upserts grant rows of one user in a single
// transaction. The pair (user, module) keeps one row; a retired row is revived.
type EditPermissionsUseCase struct {
	permissionRepo permission.Repository
	moduleRepo     module.Repository
	userRepo       user.Repository
	txManager      TransactionRunner
	cache          GrantCacheInvalidator
	logger         logger.Interface
}

func NewEditPermissionsUseCase(
	permissionRepo permission.Repository,
	moduleRepo module.Repository,
	userRepo user.Repository,
	txManager TransactionRunner,
	cache GrantCacheInvalidator,
	logger logger.Interface,
) *EditPermissionsUseCase {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &EditPermissionsUseCase{
		permissionRepo: permissionRepo,
		moduleRepo:     moduleRepo,
		userRepo:       userRepo,
		txManager:      txManager,
		cache:          cache,
		logger:         logger,
	}
}

func (uc *EditPermissionsUseCase) Execute(ctx context.Context, cmd EditPermissionsCommand) ([]*dto.PermissionDTO, error) {
	uc.logger.Infow("executing edit permissions use case", "user_id", cmd.UserID, "count", len(cmd.Edits))

	moduleIDs, err := uc.validateCommand(cmd)
	if err != nil {
		return nil, err
	}

	exists, err := uc.userRepo.Exists(ctx, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to check user", "user_id", cmd.UserID, "error", err)
		return nil, errors.WrapPersistence("load user", err)
	}
	if !exists {
		return nil, errors.NewNotFoundError("user not found")
	}

	if err := uc.checkModules(ctx, moduleIDs); err != nil {
		return nil, err
	}

	var rows []*permission.Permission
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		rows = rows[:0]
		for _, edit := range cmd.Edits {
			row, err := uc.upsert(txCtx, cmd.UserID, edit)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("permission edit rolled back", "user_id", cmd.UserID, "error", err)
		return nil, errors.WrapPersistence("save permissions", err)
	}

	if err := uc.cache.Invalidate(ctx, cmd.UserID); err != nil {
		uc.logger.Errorw("grant change saved but cache invalidation failed", "user_id", cmd.UserID, "error", err)
		return nil, errors.NewInternalError("permissions saved but cached grants could not be refreshed", "retry the request")
	}

	uc.logger.Infow("permissions updated successfully", "user_id", cmd.UserID, "count", len(rows))
	return dto.ToPermissionDTOs(rows), nil
}

func (uc *EditPermissionsUseCase) validateCommand(cmd EditPermissionsCommand) ([]string, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}
	if len(cmd.Edits) == 0 {
		return nil, errors.NewValidationError("at least one permission edit is required")
	}

	seen := make(map[string]bool, len(cmd.Edits))
	ids := make([]string, 0, len(cmd.Edits))
	for _, e := range cmd.Edits {
		if e.ModuleID == "" {
			return nil, errors.NewValidationError("module ID is required")
		}
		if seen[e.ModuleID] {
			return nil, errors.NewValidationError("module appears more than once", e.ModuleID)
		}
		seen[e.ModuleID] = true
		ids = append(ids, e.ModuleID)
	}
	return ids, nil
}

func (uc *EditPermissionsUseCase) checkModules(ctx context.Context, ids []string) error {
	modules, err := uc.moduleRepo.GetByIDs(ctx, ids)
	if err != nil {
		uc.logger.Errorw("failed to load modules", "error", err)
		return errors.WrapPersistence("load modules", err)
	}

	live := make(map[string]bool, len(modules))
	for _, m := range modules {
		if !m.IsDeleted() {
			live[m.ID()] = true
		}
	}
	for _, moduleID := range ids {
		if !live[moduleID] {
			return errors.NewValidationError("unknown module", moduleID)
		}
	}
	return nil
}

func (uc *EditPermissionsUseCase) upsert(ctx context.Context, userID uint, edit permission.Edit) (*permission.Permission, error) {
	row, err := uc.permissionRepo.GetByUserAndModule(ctx, userID, edit.ModuleID)
	if err != nil {
		return nil, err
	}

	if row != nil {
		row.Apply(edit)
		if err := uc.permissionRepo.Update(ctx, row); err != nil {
			return nil, err
		}
		return row, nil
	}

	permissionID, err := id.NewPermissionID()
	if err != nil {
		return nil, errors.NewInternalError("failed to generate permission ID")
	}
	row, err = permission.NewPermission(permissionID, userID, edit.ModuleID)
	if err != nil {
		return nil, err
	}
	row.Apply(edit)
	if err := uc.permissionRepo.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}
