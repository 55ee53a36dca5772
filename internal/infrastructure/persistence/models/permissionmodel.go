package models

import (
	"time"

	"bizdesk/internal/shared/constants"
)

// PermissionModel stores one grant row per (user, module) pair.
type PermissionModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"column:sid;uniqueIndex;not null;size:32"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_permissions_user_module"`
	ModuleID  string `gorm:"not null;size:32;uniqueIndex:idx_permissions_user_module"`
	CanView   bool   `gorm:"column:can_view;not null;default:false"`
	CanAdd    bool   `gorm:"column:can_add;not null;default:false"`
	CanEdit   bool   `gorm:"column:can_edit;not null;default:false"`
	CanDelete bool   `gorm:"column:can_delete;not null;default:false"`
	IsBlocked bool   `gorm:"not null;default:false"`
	IsDeleted bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PermissionModel) TableName() string {
	return constants.TablePermissions
}
