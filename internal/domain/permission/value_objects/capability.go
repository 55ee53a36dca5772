package value_objects

import "fmt"

// Capability is an action category gated by the resolver.
type Capability string

const (
	CapabilityView   Capability = "view"
	CapabilityAdd    Capability = "add"
	CapabilityEdit   Capability = "edit"
	CapabilityDelete Capability = "delete"
)

// AllCapabilities lists every capability in display order.
var AllCapabilities = []Capability{CapabilityView, CapabilityAdd, CapabilityEdit, CapabilityDelete}

var validCapabilities = map[Capability]bool{
	CapabilityView:   true,
	CapabilityAdd:    true,
	CapabilityEdit:   true,
	CapabilityDelete: true,
}

func NewCapability(capability string) (Capability, error) {
	if capability == "" {
		return "", fmt.Errorf("capability cannot be empty")
	}

	c := Capability(capability)
	if !validCapabilities[c] {
		return "", fmt.Errorf("invalid capability: %s", capability)
	}

	return c, nil
}

// IsValidCapability reports whether s names a known capability.
func IsValidCapability(s string) bool {
	return validCapabilities[Capability(s)]
}

func (c Capability) String() string {
	return string(c)
}

// Grants is the set of capability flags held by a permission row.
type Grants struct {
	View   bool
	Add    bool
	Edit   bool
	Delete bool
}

// Has reports whether the flag for c is set.
func (g Grants) Has(c Capability) bool {
	switch c {
	case CapabilityView:
		return g.View
	case CapabilityAdd:
		return g.Add
	case CapabilityEdit:
		return g.Edit
	case CapabilityDelete:
		return g.Delete
	default:
		return false
	}
}

// With returns a copy of g with the flag for c set to v.
func (g Grants) With(c Capability, v bool) Grants {
	switch c {
	case CapabilityView:
		g.View = v
	case CapabilityAdd:
		g.Add = v
	case CapabilityEdit:
		g.Edit = v
	case CapabilityDelete:
		g.Delete = v
	}
	return g
}
