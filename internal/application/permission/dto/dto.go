package dto

import (
	"time"

	"bizdesk/internal/domain/permission"
)

// PermissionDTO is one stored grant row.
type PermissionDTO struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	ModuleID  string    `json:"module_id"`
	View      bool      `json:"view"`
	Add       bool      `json:"add"`
	Edit      bool      `json:"edit"`
	Delete    bool      `json:"delete"`
	IsBlocked bool      `json:"is_blocked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectivePermissionDTO is the resolved access of a user on one module.
type EffectivePermissionDTO struct {
	ModuleID  string  `json:"module_id"`
	TabName   string  `json:"tab_name"`
	TabURL    string  `json:"tab_url"`
	ParentID  *string `json:"parent_id"`
	View      bool    `json:"view"`
	Add       bool    `json:"add"`
	Edit      bool    `json:"edit"`
	Delete    bool    `json:"delete"`
	IsBlocked bool    `json:"is_blocked"`
}

// DecisionDTO explains a single access check.
type DecisionDTO struct {
	ModuleID   string `json:"module_id"`
	Capability string `json:"capability"`
	Allowed    bool   `json:"allowed"`
	Rule       string `json:"rule"`
	Reason     string `json:"reason,omitempty"`
}

func ToPermissionDTO(p *permission.Permission) *PermissionDTO {
	if p == nil {
		return nil
	}
	g := p.Grants()
	return &PermissionDTO{
		ID:        p.ID(),
		UserID:    p.UserID(),
		ModuleID:  p.ModuleID(),
		View:      g.View,
		Add:       g.Add,
		Edit:      g.Edit,
		Delete:    g.Delete,
		IsBlocked: p.IsBlocked(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func ToPermissionDTOs(rows []*permission.Permission) []*PermissionDTO {
	result := make([]*PermissionDTO, 0, len(rows))
	for _, p := range rows {
		result = append(result, ToPermissionDTO(p))
	}
	return result
}

func ToEffectivePermissionDTOs(effective []permission.Effective) []*EffectivePermissionDTO {
	result := make([]*EffectivePermissionDTO, 0, len(effective))
	for _, e := range effective {
		var parentID *string
		if !e.Module.IsRoot() {
			p := e.Module.ParentID()
			parentID = &p
		}
		result = append(result, &EffectivePermissionDTO{
			ModuleID:  e.Module.ID(),
			TabName:   e.Module.TabName(),
			TabURL:    e.Module.TabURL(),
			ParentID:  parentID,
			View:      e.Grants.View,
			Add:       e.Grants.Add,
			Edit:      e.Grants.Edit,
			Delete:    e.Grants.Delete,
			IsBlocked: e.Blocked,
		})
	}
	return result
}
