package usecases

import (
	"context"

	"bizdesk/internal/application/permission/dto"
	"bizdesk/internal/domain/module"
	"bizdesk/internal/domain/permission"
	"bizdesk/internal/domain/user"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

// GetUserPermissionsUseCase lists the stored active grant rows of a user.
type GetUserPermissionsUseCase struct {
	permissionRepo permission.Repository
	userRepo       user.Repository
	logger         logger.Interface
}

func NewGetUserPermissionsUseCase(
	permissionRepo permission.Repository,
	userRepo user.Repository,
	logger logger.Interface,
) *GetUserPermissionsUseCase {
	return &GetUserPermissionsUseCase{
		permissionRepo: permissionRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

func (uc *GetUserPermissionsUseCase) Execute(ctx context.Context, userID uint) ([]*dto.PermissionDTO, error) {
	exists, err := uc.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, errors.WrapPersistence("load user", err)
	}
	if !exists {
		return nil, errors.NewNotFoundError("user not found")
	}

	rows, err := uc.permissionRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to list permissions", "user_id", userID, "error", err)
		return nil, errors.WrapPersistence("list permissions", err)
	}
	return dto.ToPermissionDTOs(rows), nil
}

type ResolvePermissionsQuery struct {
	UserID uint
	// ModuleID narrows the result to one module and its descendants.
	ModuleID string
}

// ResolvePermissionsUseCase computes effective grants. Each module is decided
// on its own; nothing is inherited from a parent.
type ResolvePermissionsUseCase struct {
	moduleRepo module.Repository
	userRepo   user.Repository
	resolver   *permission.Resolver
	logger     logger.Interface
}

func NewResolvePermissionsUseCase(
	moduleRepo module.Repository,
	userRepo user.Repository,
	resolver *permission.Resolver,
	logger logger.Interface,
) *ResolvePermissionsUseCase {
	return &ResolvePermissionsUseCase{
		moduleRepo: moduleRepo,
		userRepo:   userRepo,
		resolver:   resolver,
		logger:     logger,
	}
}

func (uc *ResolvePermissionsUseCase) Execute(ctx context.Context, query ResolvePermissionsQuery) ([]*dto.EffectivePermissionDTO, error) {
	u, err := uc.userRepo.GetByID(ctx, query.UserID)
	if err != nil {
		return nil, errors.WrapPersistence("load user", err)
	}
	if u == nil {
		return nil, errors.NewNotFoundError("user not found")
	}
	subject := permission.Subject{UserID: u.ID(), Role: u.Role()}

	all, err := uc.moduleRepo.List(ctx, module.Filter{})
	if err != nil {
		uc.logger.Errorw("failed to load modules", "error", err)
		return nil, errors.WrapPersistence("load modules", err)
	}

	var targets []*module.Module
	if query.ModuleID == "" {
		for _, m := range all {
			if !m.IsDeleted() {
				targets = append(targets, m)
			}
		}
	} else {
		ix := module.NewIndex(all)
		if m, ok := ix.Get(query.ModuleID); !ok || m.IsDeleted() {
			return nil, errors.NewNotFoundError("module not found", query.ModuleID)
		}
		targets = ix.Descendants(query.ModuleID)
	}

	effective, err := uc.resolver.ResolveAll(ctx, subject, targets)
	if err != nil {
		uc.logger.Errorw("failed to resolve permissions", "user_id", query.UserID, "error", err)
		return nil, err
	}
	return dto.ToEffectivePermissionDTOs(effective), nil
}
