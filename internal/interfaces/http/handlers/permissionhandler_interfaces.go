package handlers

import (
	"context"

	permissiondto "bizdesk/internal/application/permission/dto"
	permissionusecases "bizdesk/internal/application/permission/usecases"
	"bizdesk/internal/domain/permission"
	vo "bizdesk/internal/domain/permission/value_objects"
)

// Use case interfaces for PermissionHandler

type editPermissionsUseCase interface {
	Execute(ctx context.Context, cmd permissionusecases.EditPermissionsCommand) ([]*permissiondto.PermissionDTO, error)
}

type deletePermissionUseCase interface {
	Execute(ctx context.Context, cmd permissionusecases.DeletePermissionCommand) error
}

type getUserPermissionsUseCase interface {
	Execute(ctx context.Context, userID uint) ([]*permissiondto.PermissionDTO, error)
}

type resolvePermissionsUseCase interface {
	Execute(ctx context.Context, query permissionusecases.ResolvePermissionsQuery) ([]*permissiondto.EffectivePermissionDTO, error)
}

type accessChecker interface {
	Check(ctx context.Context, subject permission.Subject, moduleID string, capability vo.Capability) (permission.Decision, error)
}
