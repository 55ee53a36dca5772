package usecases

import (
	"context"

	"bizdesk/internal/domain/module"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

// DeleteModuleUseCase retires a module. Children keep their parent_id and
// are re-attached by the tree view.
type DeleteModuleUseCase struct {
	moduleRepo module.Repository
	logger     logger.Interface
}

func NewDeleteModuleUseCase(moduleRepo module.Repository, logger logger.Interface) *DeleteModuleUseCase {
	return &DeleteModuleUseCase{
		moduleRepo: moduleRepo,
		logger:     logger,
	}
}

func (uc *DeleteModuleUseCase) Execute(ctx context.Context, moduleID string) error {
	uc.logger.Infow("executing delete module use case", "module_id", moduleID)

	m, err := uc.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		uc.logger.Errorw("failed to load module", "module_id", moduleID, "error", err)
		return errors.WrapPersistence("load module", err)
	}
	if m == nil {
		return errors.NewNotFoundError("module not found", moduleID)
	}

	if err := m.MarkDeleted(); err != nil {
		return err
	}

	if err := uc.moduleRepo.Update(ctx, m); err != nil {
		uc.logger.Errorw("failed to delete module", "module_id", moduleID, "error", err)
		return errors.WrapPersistence("delete module", err)
	}

	uc.logger.Infow("module deleted successfully", "module_id", moduleID)
	return nil
}
