package mappers

import (
	"fmt"

	"bizdesk/internal/domain/permission"
	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/infrastructure/persistence/models"
)

// PermissionMapper handles the conversion between grant rows and persistence models
type PermissionMapper interface {
	ToEntity(model *models.PermissionModel) (*permission.Permission, error)
	ToModel(entity *permission.Permission) *models.PermissionModel
	ToEntities(models []*models.PermissionModel) ([]*permission.Permission, error)
}

type PermissionMapperImpl struct{}

func NewPermissionMapper() PermissionMapper {
	return &PermissionMapperImpl{}
}

func (m *PermissionMapperImpl) ToEntity(model *models.PermissionModel) (*permission.Permission, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := permission.ReconstructPermission(
		model.SID,
		model.UserID,
		model.ModuleID,
		vo.Grants{
			View:   model.CanView,
			Add:    model.CanAdd,
			Edit:   model.CanEdit,
			Delete: model.CanDelete,
		},
		model.IsBlocked,
		model.IsDeleted,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct permission entity: %w", err)
	}
	return entity, nil
}

func (m *PermissionMapperImpl) ToModel(entity *permission.Permission) *models.PermissionModel {
	grants := entity.Grants()
	return &models.PermissionModel{
		SID:       entity.ID(),
		UserID:    entity.UserID(),
		ModuleID:  entity.ModuleID(),
		CanView:   grants.View,
		CanAdd:    grants.Add,
		CanEdit:   grants.Edit,
		CanDelete: grants.Delete,
		IsBlocked: entity.IsBlocked(),
		IsDeleted: entity.IsDeleted(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}
}

func (m *PermissionMapperImpl) ToEntities(modelList []*models.PermissionModel) ([]*permission.Permission, error) {
	entities := make([]*permission.Permission, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
