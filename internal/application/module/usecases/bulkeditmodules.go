package usecases

import (
	"context"

	"bizdesk/internal/application/module/dto"
	"bizdesk/internal/domain/module"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
	"bizdesk/internal/shared/services/sanitize"
)

type BulkEditModulesCommand struct {
	Edits []EditModuleCommand
}

// BulkEditModulesUseCase applies several patches in one transaction. Each
// patch sees the effect of the ones before it.
type BulkEditModulesUseCase struct {
	editor    *moduleEditor
	txManager TransactionRunner
	logger    logger.Interface
}

func NewBulkEditModulesUseCase(
	moduleRepo module.Repository,
	sanitizer sanitize.TextSanitizer,
	txManager TransactionRunner,
	logger logger.Interface,
) *BulkEditModulesUseCase {
	return &BulkEditModulesUseCase{
		editor:    &moduleEditor{moduleRepo: moduleRepo, sanitizer: sanitizer, logger: logger},
		txManager: txManager,
		logger:    logger,
	}
}

func (uc *BulkEditModulesUseCase) Execute(ctx context.Context, cmd BulkEditModulesCommand) ([]*dto.ModuleDTO, error) {
	uc.logger.Infow("executing bulk edit modules use case", "count", len(cmd.Edits))

	if len(cmd.Edits) == 0 {
		return nil, errors.NewValidationError("at least one module edit is required")
	}

	var updated []*module.Module
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		updated = updated[:0]
		for _, edit := range cmd.Edits {
			m, err := uc.editor.apply(txCtx, edit)
			if err != nil {
				return err
			}
			updated = append(updated, m)
		}
		return nil
	})
	if err != nil {
		uc.logger.Warnw("bulk module edit rolled back", "error", err)
		return nil, errors.WrapPersistence("edit modules", err)
	}

	uc.logger.Infow("modules updated successfully", "count", len(updated))
	return dto.ToModuleDTOs(updated), nil
}
