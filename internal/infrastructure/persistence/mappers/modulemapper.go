package mappers

import (
	"fmt"

	"bizdesk/internal/domain/module"
	"bizdesk/internal/infrastructure/persistence/models"
)

// ModuleMapper handles the conversion between module entities and persistence models
type ModuleMapper interface {
	ToEntity(model *models.ModuleModel) (*module.Module, error)
	ToModel(entity *module.Module) (*models.ModuleModel, error)
	ToEntities(models []*models.ModuleModel) ([]*module.Module, error)
}

type ModuleMapperImpl struct{}

func NewModuleMapper() ModuleMapper {
	return &ModuleMapperImpl{}
}

func (m *ModuleMapperImpl) ToEntity(model *models.ModuleModel) (*module.Module, error) {
	if model == nil {
		return nil, nil
	}

	parentID := ""
	if model.ParentID != nil {
		parentID = *model.ParentID
	}

	entity, err := module.ReconstructModule(
		model.SID,
		model.ID,
		model.TabName,
		model.Name,
		model.TabURL,
		model.Number,
		parentID,
		module.Capabilities{
			HasView:   model.HasView,
			HasAdd:    model.HasAdd,
			HasEdit:   model.HasEdit,
			HasDelete: model.HasDelete,
		},
		model.IsDefault,
		model.IsActive,
		model.IsDeleted,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct module entity: %w", err)
	}
	return entity, nil
}

func (m *ModuleMapperImpl) ToModel(entity *module.Module) (*models.ModuleModel, error) {
	if entity == nil {
		return nil, nil
	}

	var parentID *string
	if !entity.IsRoot() {
		p := entity.ParentID()
		parentID = &p
	}
	caps := entity.Capabilities()

	return &models.ModuleModel{
		ID:        entity.Seq(),
		SID:       entity.ID(),
		TabName:   entity.TabName(),
		Name:      entity.Name(),
		TabURL:    entity.TabURL(),
		Number:    entity.Number(),
		ParentID:  parentID,
		HasView:   caps.HasView,
		HasAdd:    caps.HasAdd,
		HasEdit:   caps.HasEdit,
		HasDelete: caps.HasDelete,
		IsDefault: entity.IsDefault(),
		IsActive:  entity.IsActive(),
		IsDeleted: entity.IsDeleted(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}, nil
}

func (m *ModuleMapperImpl) ToEntities(modelList []*models.ModuleModel) ([]*module.Module, error) {
	entities := make([]*module.Module, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
