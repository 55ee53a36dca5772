package usecases

import (
	"context"

	"bizdesk/internal/application/module/dto"
	"bizdesk/internal/domain/module"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

type ListModulesQuery struct {
	IsActive  *bool
	IsDeleted *bool
	// ParentID filters children of one module; a pointer to "" selects roots.
	ParentID *string
}

type ListModulesUseCase struct {
	moduleRepo module.Repository
	logger     logger.Interface
}

func NewListModulesUseCase(moduleRepo module.Repository, logger logger.Interface) *ListModulesUseCase {
	return &ListModulesUseCase{moduleRepo: moduleRepo, logger: logger}
}

func (uc *ListModulesUseCase) Execute(ctx context.Context, query ListModulesQuery) ([]*dto.ModuleDTO, error) {
	modules, err := uc.moduleRepo.List(ctx, module.Filter{
		IsActive:  query.IsActive,
		IsDeleted: query.IsDeleted,
		ParentID:  query.ParentID,
	})
	if err != nil {
		uc.logger.Errorw("failed to list modules", "error", err)
		return nil, errors.WrapPersistence("list modules", err)
	}
	return dto.ToModuleDTOs(modules), nil
}

type GetModuleUseCase struct {
	moduleRepo module.Repository
	logger     logger.Interface
}

func NewGetModuleUseCase(moduleRepo module.Repository, logger logger.Interface) *GetModuleUseCase {
	return &GetModuleUseCase{moduleRepo: moduleRepo, logger: logger}
}

// Execute returns the module whatever its lifecycle state.
func (uc *GetModuleUseCase) Execute(ctx context.Context, moduleID string) (*dto.ModuleDTO, error) {
	m, err := uc.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		uc.logger.Errorw("failed to load module", "module_id", moduleID, "error", err)
		return nil, errors.WrapPersistence("load module", err)
	}
	if m == nil {
		return nil, errors.NewNotFoundError("module not found", moduleID)
	}
	return dto.ToModuleDTO(m), nil
}

type GetModuleTreeUseCase struct {
	moduleRepo module.Repository
	logger     logger.Interface
}

func NewGetModuleTreeUseCase(moduleRepo module.Repository, logger logger.Interface) *GetModuleTreeUseCase {
	return &GetModuleTreeUseCase{moduleRepo: moduleRepo, logger: logger}
}

// Execute loads the whole registry, deleted modules included, so children of
// a deleted module can be re-attached to its nearest live ancestor.
func (uc *GetModuleTreeUseCase) Execute(ctx context.Context) ([]*dto.ModuleTreeNodeDTO, error) {
	modules, err := uc.moduleRepo.List(ctx, module.Filter{})
	if err != nil {
		uc.logger.Errorw("failed to load modules", "error", err)
		return nil, errors.WrapPersistence("load modules", err)
	}
	return dto.ToTreeDTO(module.NewIndex(modules).Tree()), nil
}
