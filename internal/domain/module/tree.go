package module

import (
	"sort"

	"bizdesk/internal/shared/errors"
)

// Less orders modules by number, then insertion order, then id.
func Less(a, b *Module) bool {
	if a.number != b.number {
		return a.number < b.number
	}
	if a.seq != b.seq {
		return a.seq < b.seq
	}
	return a.id < b.id
}

// SortModules sorts in place using Less.
func SortModules(modules []*Module) {
	sort.SliceStable(modules, func(i, j int) bool {
		return Less(modules[i], modules[j])
	})
}

// Index is an arena of modules keyed by id with a parent -> children index
// derived at construction time. Modules never point at each other directly.
type Index struct {
	byID     map[string]*Module
	children map[string][]string
}

// NewIndex builds the arena over every given module, deleted ones included.
func NewIndex(modules []*Module) *Index {
	sorted := make([]*Module, len(modules))
	copy(sorted, modules)
	SortModules(sorted)

	ix := &Index{
		byID:     make(map[string]*Module, len(sorted)),
		children: make(map[string][]string),
	}
	for _, m := range sorted {
		ix.byID[m.id] = m
	}
	for _, m := range sorted {
		if _, ok := ix.byID[m.parentID]; m.parentID != "" && ok {
			ix.children[m.parentID] = append(ix.children[m.parentID], m.id)
		}
	}
	return ix
}

// Get returns the module with the given id.
func (ix *Index) Get(id string) (*Module, bool) {
	m, ok := ix.byID[id]
	return m, ok
}

// Ancestors returns the parent chain of id, nearest first. The walk stops at
// a missing parent or at a repeated id.
func (ix *Index) Ancestors(id string) []*Module {
	chain, _ := ix.ancestors(id)
	return chain
}

func (ix *Index) ancestors(id string) (chain []*Module, cyclic bool) {
	seen := map[string]bool{id: true}

	current, ok := ix.byID[id]
	for ok && current.parentID != "" {
		if seen[current.parentID] {
			return chain, true
		}
		parent, found := ix.byID[current.parentID]
		if !found {
			break
		}
		seen[parent.id] = true
		chain = append(chain, parent)
		current = parent
	}
	return chain, false
}

// HasCyclicChain reports whether the parent chain of id loops.
func (ix *Index) HasCyclicChain(id string) bool {
	_, cyclic := ix.ancestors(id)
	return cyclic
}

// IsAncestor reports whether ancestorID appears in the parent chain of id.
func (ix *Index) IsAncestor(ancestorID, id string) bool {
	for _, a := range ix.Ancestors(id) {
		if a.id == ancestorID {
			return true
		}
	}
	return false
}

// CheckReparent validates moving moduleID under newParentID. An empty
// newParentID (promotion to root) is always allowed.
func (ix *Index) CheckReparent(moduleID, newParentID string) error {
	if newParentID == "" {
		return nil
	}
	if newParentID == moduleID {
		return errors.NewValidationError("module cannot be its own parent")
	}
	parent, ok := ix.byID[newParentID]
	if !ok || parent.isDeleted {
		return errors.NewNotFoundError("parent module not found", newParentID)
	}
	if ix.IsAncestor(moduleID, newParentID) {
		return errors.NewValidationError("module cannot be moved under one of its descendants", newParentID)
	}
	return nil
}

// EffectiveParentID returns the nearest non-deleted ancestor of id, or ""
// when the module must be shown as a root. Modules caught in a parent cycle
// are treated as roots so they stay reachable.
func (ix *Index) EffectiveParentID(id string) string {
	chain, cyclic := ix.ancestors(id)
	if cyclic {
		return ""
	}
	for _, a := range chain {
		if !a.isDeleted {
			return a.id
		}
	}
	return ""
}

// Descendants returns id followed by its descendants in pre-order, siblings
// by Less. Deleted descendants are skipped but their subtrees are still
// walked, matching the re-attachment done by Tree.
func (ix *Index) Descendants(id string) []*Module {
	root, ok := ix.byID[id]
	if !ok {
		return nil
	}

	result := []*Module{root}
	seen := map[string]bool{id: true}
	var walk func(parentID string)
	walk = func(parentID string) {
		for _, childID := range ix.children[parentID] {
			if seen[childID] {
				continue
			}
			seen[childID] = true
			child := ix.byID[childID]
			if !child.isDeleted {
				result = append(result, child)
			}
			walk(childID)
		}
	}
	walk(id)
	return result
}

// Node is one entry of the module tree view.
type Node struct {
	Module   *Module
	Children []*Node
}

// Tree assembles non-deleted modules into a forest. A deleted module is left
// out and its children hang under the nearest non-deleted ancestor, or become
// roots when there is none. Roots and siblings are ordered by Less.
func (ix *Index) Tree() []*Node {
	nodes := make(map[string]*Node)
	var ordered []*Module
	for _, m := range ix.byID {
		if m.isDeleted {
			continue
		}
		nodes[m.id] = &Node{Module: m}
		ordered = append(ordered, m)
	}
	SortModules(ordered)

	var roots []*Node
	for _, m := range ordered {
		node := nodes[m.id]
		parentID := ix.EffectiveParentID(m.id)
		if parentNode, ok := nodes[parentID]; ok && parentID != "" {
			parentNode.Children = append(parentNode.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}
