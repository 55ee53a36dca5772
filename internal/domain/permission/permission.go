// Package permission holds per-user module grants and the resolver that turns
// them into access decisions.
package permission

import (
	"fmt"
	"time"

	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/shared/errors"
)

// Permission is the grant row of one user on one module. The store keeps a
// single row per (user, module) pair; deletion is logical.
type Permission struct {
	id        string
	userID    uint
	moduleID  string
	grants    vo.Grants
	isBlocked bool
	isDeleted bool
	createdAt time.Time
	updatedAt time.Time
}

// NewPermission returns an active row with every grant off.
func NewPermission(id string, userID uint, moduleID string) (*Permission, error) {
	if id == "" {
		return nil, fmt.Errorf("permission ID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if moduleID == "" {
		return nil, fmt.Errorf("module ID is required")
	}

	now := time.Now().UTC()
	return &Permission{
		id:        id,
		userID:    userID,
		moduleID:  moduleID,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructPermission(
	id string,
	userID uint,
	moduleID string,
	grants vo.Grants,
	isBlocked, isDeleted bool,
	createdAt, updatedAt time.Time,
) (*Permission, error) {
	if id == "" {
		return nil, fmt.Errorf("permission ID cannot be empty")
	}

	return &Permission{
		id:        id,
		userID:    userID,
		moduleID:  moduleID,
		grants:    grants,
		isBlocked: isBlocked,
		isDeleted: isDeleted,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (p *Permission) ID() string           { return p.id }
func (p *Permission) UserID() uint         { return p.userID }
func (p *Permission) ModuleID() string     { return p.moduleID }
func (p *Permission) Grants() vo.Grants    { return p.grants }
func (p *Permission) IsBlocked() bool      { return p.isBlocked }
func (p *Permission) IsDeleted() bool      { return p.isDeleted }
func (p *Permission) CreatedAt() time.Time { return p.createdAt }
func (p *Permission) UpdatedAt() time.Time { return p.updatedAt }

// IsActive reports whether the row is authoritative for its pair.
func (p *Permission) IsActive() bool {
	return !p.isDeleted
}

// Edit is a partial change to one row; nil fields are left unchanged.
type Edit struct {
	ModuleID  string
	View      *bool
	Add       *bool
	Edit      *bool
	Delete    *bool
	IsBlocked *bool
}

// Apply changes the row. A logically deleted row is revived with every flag
// reset before the edit is applied, so stale grants never come back.
func (p *Permission) Apply(e Edit) {
	if p.isDeleted {
		p.isDeleted = false
		p.grants = vo.Grants{}
		p.isBlocked = false
	}

	if e.View != nil {
		p.grants = p.grants.With(vo.CapabilityView, *e.View)
	}
	if e.Add != nil {
		p.grants = p.grants.With(vo.CapabilityAdd, *e.Add)
	}
	if e.Edit != nil {
		p.grants = p.grants.With(vo.CapabilityEdit, *e.Edit)
	}
	if e.Delete != nil {
		p.grants = p.grants.With(vo.CapabilityDelete, *e.Delete)
	}
	if e.IsBlocked != nil {
		p.isBlocked = *e.IsBlocked
	}

	p.updatedAt = time.Now().UTC()
}

// MarkDeleted retires the row.
func (p *Permission) MarkDeleted() error {
	if p.isDeleted {
		return errors.NewNotFoundError("permission not found", p.moduleID)
	}
	p.isDeleted = true
	p.updatedAt = time.Now().UTC()
	return nil
}
