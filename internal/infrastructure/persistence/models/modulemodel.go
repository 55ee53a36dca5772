package models

import (
	"time"

	"bizdesk/internal/shared/constants"
)

// ModuleModel is the persistence model of a registry module. ID is the
// insertion sequence; SID is the public "mod_" identifier.
type ModuleModel struct {
	ID        uint    `gorm:"primarykey"`
	SID       string  `gorm:"column:sid;uniqueIndex;not null;size:32"`
	TabName   string  `gorm:"not null;size:100"`
	Name      string  `gorm:"size:100"`
	TabURL    string  `gorm:"column:tab_url;not null;size:255;index:idx_modules_tab_url"`
	Number    int     `gorm:"not null;default:0;index:idx_modules_number"`
	ParentID  *string `gorm:"size:32;index:idx_modules_parent_id"`
	HasView   bool    `gorm:"not null;default:false"`
	HasAdd    bool    `gorm:"not null;default:false"`
	HasEdit   bool    `gorm:"not null;default:false"`
	HasDelete bool    `gorm:"not null;default:false"`
	IsDefault bool    `gorm:"column:is_default;not null;default:false"`
	IsActive  bool    `gorm:"not null"`
	IsDeleted bool    `gorm:"not null;default:false;index:idx_modules_is_deleted"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ModuleModel) TableName() string {
	return constants.TableModules
}
