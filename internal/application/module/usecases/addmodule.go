package usecases

import (
	"context"
	"strings"

	"bizdesk/internal/application/module/dto"
	"bizdesk/internal/domain/module"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/id"
	"bizdesk/internal/shared/logger"
	"bizdesk/internal/shared/services/sanitize"
)

type AddModuleCommand struct {
	TabName   string
	Name      string
	TabURL    string
	Number    int
	ParentID  string
	HasView   bool
	HasAdd    bool
	HasEdit   bool
	HasDelete bool
	IsDefault bool
	// IsActive defaults to true when nil.
	IsActive *bool
}

type AddModuleUseCase struct {
	moduleRepo module.Repository
	sanitizer  sanitize.TextSanitizer
	logger     logger.Interface
}

func NewAddModuleUseCase(
	moduleRepo module.Repository,
	sanitizer sanitize.TextSanitizer,
	logger logger.Interface,
) *AddModuleUseCase {
	return &AddModuleUseCase{
		moduleRepo: moduleRepo,
		sanitizer:  sanitizer,
		logger:     logger,
	}
}

func (uc *AddModuleUseCase) Execute(ctx context.Context, cmd AddModuleCommand) (*dto.ModuleDTO, error) {
	uc.logger.Infow("executing add module use case", "tab_url", cmd.TabURL, "parent_id", cmd.ParentID)

	tabName := uc.sanitizer.Text(cmd.TabName)
	if tabName == "" {
		return nil, errors.NewValidationError("tab name is required")
	}
	tabURL := strings.TrimSpace(cmd.TabURL)
	if tabURL == "" {
		return nil, errors.NewValidationError("tab URL is required")
	}

	if cmd.ParentID != "" {
		parent, err := uc.moduleRepo.GetByID(ctx, cmd.ParentID)
		if err != nil {
			uc.logger.Errorw("failed to load parent module", "parent_id", cmd.ParentID, "error", err)
			return nil, errors.WrapPersistence("load parent module", err)
		}
		if parent == nil || parent.IsDeleted() {
			return nil, errors.NewNotFoundError("parent module not found", cmd.ParentID)
		}
	}

	exists, err := uc.moduleRepo.ExistsByTabURL(ctx, tabURL, "")
	if err != nil {
		uc.logger.Errorw("failed to check tab URL", "tab_url", tabURL, "error", err)
		return nil, errors.WrapPersistence("check tab URL", err)
	}
	if exists {
		return nil, errors.NewConflictError("tab URL already in use", tabURL)
	}

	moduleID, err := id.NewModuleID()
	if err != nil {
		return nil, errors.NewInternalError("failed to generate module ID")
	}

	isActive := true
	if cmd.IsActive != nil {
		isActive = *cmd.IsActive
	}

	m, err := module.NewModule(module.CreateParams{
		ID:       moduleID,
		TabName:  tabName,
		Name:     uc.sanitizer.Text(cmd.Name),
		TabURL:   tabURL,
		Number:   cmd.Number,
		ParentID: cmd.ParentID,
		Capabilities: module.Capabilities{
			HasView:   cmd.HasView,
			HasAdd:    cmd.HasAdd,
			HasEdit:   cmd.HasEdit,
			HasDelete: cmd.HasDelete,
		},
		IsDefault: cmd.IsDefault,
		IsActive:  isActive,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.moduleRepo.Create(ctx, m); err != nil {
		uc.logger.Errorw("failed to create module", "tab_url", tabURL, "error", err)
		return nil, errors.WrapPersistence("create module", err)
	}

	uc.logger.Infow("module created successfully", "module_id", m.ID(), "tab_url", m.TabURL())
	return dto.ToModuleDTO(m), nil
}
