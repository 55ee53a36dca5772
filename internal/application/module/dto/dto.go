package dto

import (
	"time"

	"bizdesk/internal/domain/module"
)

type ModuleDTO struct {
	ID        string    `json:"id"`
	TabName   string    `json:"tab_name"`
	Name      string    `json:"name,omitempty"`
	TabURL    string    `json:"tab_url"`
	Number    int       `json:"number"`
	ParentID  *string   `json:"parent_id"`
	HasView   bool      `json:"has_view"`
	HasAdd    bool      `json:"has_add"`
	HasEdit   bool      `json:"has_edit"`
	HasDelete bool      `json:"has_delete"`
	Default   bool      `json:"default"`
	IsActive  bool      `json:"is_active"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ModuleTreeNodeDTO struct {
	*ModuleDTO
	Children []*ModuleTreeNodeDTO `json:"children"`
}

func ToModuleDTO(m *module.Module) *ModuleDTO {
	if m == nil {
		return nil
	}

	var parentID *string
	if !m.IsRoot() {
		p := m.ParentID()
		parentID = &p
	}

	caps := m.Capabilities()
	return &ModuleDTO{
		ID:        m.ID(),
		TabName:   m.TabName(),
		Name:      m.Name(),
		TabURL:    m.TabURL(),
		Number:    m.Number(),
		ParentID:  parentID,
		HasView:   caps.HasView,
		HasAdd:    caps.HasAdd,
		HasEdit:   caps.HasEdit,
		HasDelete: caps.HasDelete,
		Default:   m.IsDefault(),
		IsActive:  m.IsActive(),
		IsDeleted: m.IsDeleted(),
		CreatedAt: m.CreatedAt(),
		UpdatedAt: m.UpdatedAt(),
	}
}

func ToModuleDTOs(modules []*module.Module) []*ModuleDTO {
	result := make([]*ModuleDTO, 0, len(modules))
	for _, m := range modules {
		result = append(result, ToModuleDTO(m))
	}
	return result
}

// ToTreeDTO converts tree nodes. The parent_id of each node is the one it
// hangs under in the view, which differs from the stored parent when a
// deleted ancestor was skipped.
func ToTreeDTO(nodes []*module.Node) []*ModuleTreeNodeDTO {
	return toTreeDTO(nodes, nil)
}

func toTreeDTO(nodes []*module.Node, parentID *string) []*ModuleTreeNodeDTO {
	result := make([]*ModuleTreeNodeDTO, 0, len(nodes))
	for _, n := range nodes {
		d := ToModuleDTO(n.Module)
		d.ParentID = parentID
		id := d.ID
		result = append(result, &ModuleTreeNodeDTO{
			ModuleDTO: d,
			Children:  toTreeDTO(n.Children, &id),
		})
	}
	return result
}
