// Package module holds the Module aggregate: a named application feature
// (tab) with capability flags, placed in a parent/child hierarchy.
package module

import (
	"fmt"
	"strings"
	"time"

	"bizdesk/internal/shared/errors"
)

const (
	maxTabNameLength = 100
	maxTabURLLength  = 255
)

// Capabilities lists which actions a module exposes at all.
type Capabilities struct {
	HasView   bool
	HasAdd    bool
	HasEdit   bool
	HasDelete bool
}

// Module is the aggregate root of the module registry.
type Module struct {
	id           string
	seq          uint
	tabName      string
	name         string
	tabURL       string
	number       int
	parentID     string
	capabilities Capabilities
	isDefault    bool
	isActive     bool
	isDeleted    bool
	createdAt    time.Time
	updatedAt    time.Time
}

// CreateParams carries the attributes of a new module.
type CreateParams struct {
	ID           string
	TabName      string
	Name         string
	TabURL       string
	Number       int
	ParentID     string
	Capabilities Capabilities
	IsDefault    bool
	IsActive     bool
}

// NewModule validates params and returns an active, non-deleted module.
func NewModule(p CreateParams) (*Module, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("module ID is required")
	}
	if err := validateTabName(p.TabName); err != nil {
		return nil, err
	}
	if err := validateTabURL(p.TabURL); err != nil {
		return nil, err
	}
	if p.ParentID == p.ID {
		return nil, errors.NewValidationError("module cannot be its own parent")
	}

	now := time.Now().UTC()
	return &Module{
		id:           p.ID,
		tabName:      strings.TrimSpace(p.TabName),
		name:         strings.TrimSpace(p.Name),
		tabURL:       strings.TrimSpace(p.TabURL),
		number:       p.Number,
		parentID:     p.ParentID,
		capabilities: p.Capabilities,
		isDefault:    p.IsDefault,
		isActive:     p.IsActive,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructModule rebuilds a module from persistence without re-validating.
func ReconstructModule(
	id string,
	seq uint,
	tabName, name, tabURL string,
	number int,
	parentID string,
	capabilities Capabilities,
	isDefault, isActive, isDeleted bool,
	createdAt, updatedAt time.Time,
) (*Module, error) {
	if id == "" {
		return nil, fmt.Errorf("module ID cannot be empty")
	}

	return &Module{
		id:           id,
		seq:          seq,
		tabName:      tabName,
		name:         name,
		tabURL:       tabURL,
		number:       number,
		parentID:     parentID,
		capabilities: capabilities,
		isDefault:    isDefault,
		isActive:     isActive,
		isDeleted:    isDeleted,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (m *Module) ID() string                 { return m.id }
func (m *Module) Seq() uint                  { return m.seq }
func (m *Module) TabName() string            { return m.tabName }
func (m *Module) Name() string               { return m.name }
func (m *Module) TabURL() string             { return m.tabURL }
func (m *Module) Number() int                { return m.number }
func (m *Module) ParentID() string           { return m.parentID }
func (m *Module) Capabilities() Capabilities { return m.capabilities }
func (m *Module) IsDefault() bool            { return m.isDefault }
func (m *Module) IsActive() bool             { return m.isActive }
func (m *Module) IsDeleted() bool            { return m.isDeleted }
func (m *Module) CreatedAt() time.Time       { return m.createdAt }
func (m *Module) UpdatedAt() time.Time       { return m.updatedAt }

// IsRoot reports whether the module has no parent.
func (m *Module) IsRoot() bool {
	return m.parentID == ""
}

// IsAvailable reports whether access checks may grant anything on the module.
func (m *Module) IsAvailable() bool {
	return m.isActive && !m.isDeleted
}

// SetSeq records the insertion sequence assigned by the store.
func (m *Module) SetSeq(seq uint) error {
	if m.seq != 0 {
		return fmt.Errorf("module sequence is already set")
	}
	m.seq = seq
	return nil
}

// Patch is a partial update; nil fields are left unchanged. ParentID set to
// a pointer to "" promotes the module to root.
type Patch struct {
	TabName   *string
	Name      *string
	TabURL    *string
	Number    *int
	ParentID  *string
	HasView   *bool
	HasAdd    *bool
	HasEdit   *bool
	HasDelete *bool
	IsDefault *bool
	IsActive  *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.TabName == nil && p.Name == nil && p.TabURL == nil && p.Number == nil &&
		p.ParentID == nil && p.HasView == nil && p.HasAdd == nil && p.HasEdit == nil &&
		p.HasDelete == nil && p.IsDefault == nil && p.IsActive == nil
}

// Apply mutates the module. Parent changes are validated only against the
// module itself; descendant checks need the whole registry (see Tree.CheckReparent).
func (m *Module) Apply(p Patch) error {
	if m.isDeleted {
		return errors.NewNotFoundError("module not found", m.id)
	}

	if p.TabName != nil {
		if err := validateTabName(*p.TabName); err != nil {
			return err
		}
		m.tabName = strings.TrimSpace(*p.TabName)
	}
	if p.Name != nil {
		m.name = strings.TrimSpace(*p.Name)
	}
	if p.TabURL != nil {
		if err := validateTabURL(*p.TabURL); err != nil {
			return err
		}
		m.tabURL = strings.TrimSpace(*p.TabURL)
	}
	if p.Number != nil {
		m.number = *p.Number
	}
	if p.ParentID != nil {
		if *p.ParentID == m.id {
			return errors.NewValidationError("module cannot be its own parent")
		}
		m.parentID = *p.ParentID
	}
	if p.HasView != nil {
		m.capabilities.HasView = *p.HasView
	}
	if p.HasAdd != nil {
		m.capabilities.HasAdd = *p.HasAdd
	}
	if p.HasEdit != nil {
		m.capabilities.HasEdit = *p.HasEdit
	}
	if p.HasDelete != nil {
		m.capabilities.HasDelete = *p.HasDelete
	}
	if p.IsDefault != nil {
		m.isDefault = *p.IsDefault
	}
	if p.IsActive != nil {
		m.isActive = *p.IsActive
	}

	m.updatedAt = time.Now().UTC()
	return nil
}

// MarkDeleted moves the module to the Deleted lifecycle state.
func (m *Module) MarkDeleted() error {
	if m.isDeleted {
		return errors.NewNotFoundError("module not found", m.id)
	}
	m.isDeleted = true
	m.updatedAt = time.Now().UTC()
	return nil
}

func validateTabName(tabName string) error {
	tabName = strings.TrimSpace(tabName)
	if tabName == "" {
		return errors.NewValidationError("tab name is required")
	}
	if len(tabName) > maxTabNameLength {
		return errors.NewValidationError(fmt.Sprintf("tab name too long (max %d characters)", maxTabNameLength))
	}
	return nil
}

func validateTabURL(tabURL string) error {
	tabURL = strings.TrimSpace(tabURL)
	if tabURL == "" {
		return errors.NewValidationError("tab URL is required")
	}
	if len(tabURL) > maxTabURLLength {
		return errors.NewValidationError(fmt.Sprintf("tab URL too long (max %d characters)", maxTabURLLength))
	}
	return nil
}
