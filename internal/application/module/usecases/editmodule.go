package usecases

import (
	"context"

	"bizdesk/internal/application/module/dto"
	"bizdesk/internal/domain/module"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
	"bizdesk/internal/shared/services/sanitize"
)

type EditModuleCommand struct {
	ModuleID string
	Patch    module.Patch
}

// moduleEditor applies one patch against the current registry. It is shared
// by the single and bulk edit use cases.
type moduleEditor struct {
	moduleRepo module.Repository
	sanitizer  sanitize.TextSanitizer
	logger     logger.Interface
}

func (e *moduleEditor) apply(ctx context.Context, cmd EditModuleCommand) (*module.Module, error) {
	if cmd.ModuleID == "" {
		return nil, errors.NewValidationError("module ID is required")
	}
	if cmd.Patch.IsEmpty() {
		return nil, errors.NewValidationError("no fields to update", cmd.ModuleID)
	}

	m, err := e.moduleRepo.GetByID(ctx, cmd.ModuleID)
	if err != nil {
		e.logger.Errorw("failed to load module", "module_id", cmd.ModuleID, "error", err)
		return nil, errors.WrapPersistence("load module", err)
	}
	if m == nil || m.IsDeleted() {
		return nil, errors.NewNotFoundError("module not found", cmd.ModuleID)
	}

	patch := cmd.Patch
	if patch.TabName != nil {
		v := e.sanitizer.Text(*patch.TabName)
		patch.TabName = &v
	}
	if patch.Name != nil {
		v := e.sanitizer.Text(*patch.Name)
		patch.Name = &v
	}

	if patch.TabURL != nil && *patch.TabURL != m.TabURL() {
		exists, err := e.moduleRepo.ExistsByTabURL(ctx, *patch.TabURL, m.ID())
		if err != nil {
			return nil, errors.WrapPersistence("check tab URL", err)
		}
		if exists {
			return nil, errors.NewConflictError("tab URL already in use", *patch.TabURL)
		}
	}

	reparent := patch.ParentID != nil && *patch.ParentID != "" && *patch.ParentID != m.ParentID()
	if reparent {
		all, err := e.moduleRepo.ListForUpdate(ctx)
		if err != nil {
			return nil, errors.WrapPersistence("load modules", err)
		}
		if err := module.NewIndex(all).CheckReparent(m.ID(), *patch.ParentID); err != nil {
			return nil, err
		}
	}

	if err := m.Apply(patch); err != nil {
		return nil, err
	}

	if err := e.moduleRepo.Update(ctx, m); err != nil {
		e.logger.Errorw("failed to update module", "module_id", m.ID(), "error", err)
		return nil, errors.WrapPersistence("update module", err)
	}

	if reparent {
		if err := e.verifyAcyclic(ctx, m.ID()); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// verifyAcyclic re-reads the hierarchy after a move. A cycle means a
// concurrent move slipped past the check; the error rolls the caller's
// transaction back.
func (e *moduleEditor) verifyAcyclic(ctx context.Context, moduleID string) error {
	all, err := e.moduleRepo.ListForUpdate(ctx)
	if err != nil {
		return errors.WrapPersistence("load modules", err)
	}
	if module.NewIndex(all).HasCyclicChain(moduleID) {
		e.logger.Warnw("module move would close a cycle", "module_id", moduleID)
		return errors.NewValidationError("module cannot be moved under one of its descendants", moduleID)
	}
	return nil
}

// EditModuleUseCase applies one patch inside a transaction so the cycle
// check and the write see the same hierarchy.
type EditModuleUseCase struct {
	editor    *moduleEditor
	txManager TransactionRunner
	logger    logger.Interface
}

func NewEditModuleUseCase(
	moduleRepo module.Repository,
	sanitizer sanitize.TextSanitizer,
	txManager TransactionRunner,
	logger logger.Interface,
) *EditModuleUseCase {
	return &EditModuleUseCase{
		editor:    &moduleEditor{moduleRepo: moduleRepo, sanitizer: sanitizer, logger: logger},
		txManager: txManager,
		logger:    logger,
	}
}

func (uc *EditModuleUseCase) Execute(ctx context.Context, cmd EditModuleCommand) (*dto.ModuleDTO, error) {
	uc.logger.Infow("executing edit module use case", "module_id", cmd.ModuleID)

	var m *module.Module
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		m, err = uc.editor.apply(txCtx, cmd)
		return err
	})
	if err != nil {
		return nil, errors.WrapPersistence("edit module", err)
	}

	uc.logger.Infow("module updated successfully", "module_id", m.ID())
	return dto.ToModuleDTO(m), nil
}
