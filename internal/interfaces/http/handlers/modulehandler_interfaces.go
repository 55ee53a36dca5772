package handlers

import (
	"context"

	moduledto "bizdesk/internal/application/module/dto"
	moduleusecases "bizdesk/internal/application/module/usecases"
)

// Use case interfaces for ModuleHandler

type addModuleUseCase interface {
	Execute(ctx context.Context, cmd moduleusecases.AddModuleCommand) (*moduledto.ModuleDTO, error)
}

type editModuleUseCase interface {
	Execute(ctx context.Context, cmd moduleusecases.EditModuleCommand) (*moduledto.ModuleDTO, error)
}

type bulkEditModulesUseCase interface {
	Execute(ctx context.Context, cmd moduleusecases.BulkEditModulesCommand) ([]*moduledto.ModuleDTO, error)
}

type deleteModuleUseCase interface {
	Execute(ctx context.Context, moduleID string) error
}

type listModulesUseCase interface {
	Execute(ctx context.Context, query moduleusecases.ListModulesQuery) ([]*moduledto.ModuleDTO, error)
}

type getModuleUseCase interface {
	Execute(ctx context.Context, moduleID string) (*moduledto.ModuleDTO, error)
}

type getModuleTreeUseCase interface {
	Execute(ctx context.Context) ([]*moduledto.ModuleTreeNodeDTO, error)
}
