// Package view computes the visible projection of a folder tree for a given
// expand/collapse state, plus the pure state transitions behind every
// interaction. The host owns the current State and persists it between
// interactions; nothing in this package mutates shared state.
package view

import (
	"github.com/vanderheijden86/treescope/pkg/tree"
)

// State is the session-scoped view state: which nodes are collapsed and
// which node, if any, is selected. Transitions return a new State and leave
// the receiver's maps untouched, so stale copies stay valid.
type State struct {
	Collapsed  map[string]bool // node ID -> collapsed; root is never present
	SelectedID string          // "" = no selection
}

// NewState returns an empty view state: everything expanded, nothing
// selected.
func NewState() State {
	return State{Collapsed: make(map[string]bool)}
}

// IsCollapsed reports whether the given node ID is in the collapsed set.
func (s State) IsCollapsed(id string) bool {
	return s.Collapsed[id]
}

// Equal reports whether two states describe the same collapsed set and
// selection.
func (s State) Equal(o State) bool {
	if s.SelectedID != o.SelectedID {
		return false
	}
	if len(s.Collapsed) != len(o.Collapsed) {
		return false
	}
	for id := range s.Collapsed {
		if !o.Collapsed[id] {
			return false
		}
	}
	return true
}

// clone copies the collapsed set so transitions never alias the input.
func (s State) clone() State {
	c := make(map[string]bool, len(s.Collapsed))
	for id := range s.Collapsed {
		c[id] = true
	}
	return State{Collapsed: c, SelectedID: s.SelectedID}
}

// ToggleCollapse collapses an expanded node or expands a collapsed one.
// Toggling the root is a no-op: the root is always visible and expanded.
func ToggleCollapse(s State, id string) State {
	if id == tree.RootID {
		return s.clone()
	}
	next := s.clone()
	if next.Collapsed[id] {
		delete(next.Collapsed, id)
	} else {
		next.Collapsed[id] = true
	}
	return next
}

// Select sets the selection without touching the collapsed set. An empty ID
// clears the selection.
func Select(s State, id string) State {
	next := s.clone()
	next.SelectedID = id
	return next
}

// Reveal selects a node and expands every ancestor so the path to it is
// visible. This is the composed "select and reveal" operation: Select plus
// removal of the ancestor chain from the collapsed set.
func Reveal(s State, t *tree.Tree, id string) State {
	next := Select(s, id)
	for _, anc := range t.AncestorIDs(id) {
		delete(next.Collapsed, anc)
	}
	return next
}

// ExpandAll clears the collapsed set entirely.
func ExpandAll(s State) State {
	next := s.clone()
	next.Collapsed = make(map[string]bool)
	return next
}

// CollapseAll collapses every non-root node that has at least one child.
func CollapseAll(s State, t *tree.Tree) State {
	next := s.clone()
	next.Collapsed = make(map[string]bool)
	t.Walk(func(n *tree.Node) bool {
		if n.ID != tree.RootID && n.HasChildren() {
			next.Collapsed[n.ID] = true
		}
		return true
	})
	return next
}

// ExpandSubtree expands a node and its entire subtree: the node's ID and all
// descendant IDs are removed from the collapsed set.
func ExpandSubtree(s State, t *tree.Tree, id string) State {
	next := s.clone()
	delete(next.Collapsed, id)
	for _, d := range t.DescendantIDs(id, false) {
		delete(next.Collapsed, d)
	}
	return next
}

// CollapseSubtree collapses a node and every descendant that has children,
// so re-expanding the node reveals only one level at a time.
func CollapseSubtree(s State, t *tree.Tree, id string) State {
	next := s.clone()
	collapse := func(nid string) {
		n := t.Lookup(nid)
		if n != nil && n.ID != tree.RootID && n.HasChildren() {
			next.Collapsed[nid] = true
		}
	}
	collapse(id)
	for _, d := range t.DescendantIDs(id, false) {
		collapse(d)
	}
	return next
}

// ExpandChildren removes only the direct children's IDs from the collapsed
// set: the "expand one level" affordance.
func ExpandChildren(s State, t *tree.Tree, id string) State {
	next := s.clone()
	for _, d := range t.DescendantIDs(id, true) {
		delete(next.Collapsed, d)
	}
	return next
}

// CollapseChildren adds the direct children's IDs to the collapsed set,
// keeping the node itself expanded.
func CollapseChildren(s State, t *tree.Tree, id string) State {
	next := s.clone()
	for _, d := range t.DescendantIDs(id, true) {
		if n := t.Lookup(d); n != nil && n.HasChildren() {
			next.Collapsed[d] = true
		}
	}
	return next
}

// ExpandToLevel collapses everything at or below the given depth and expands
// everything above it, so depths 1..level are visible. Level 0 or negative
// behaves like level 1.
func ExpandToLevel(s State, t *tree.Tree, level int) State {
	if level < 1 {
		level = 1
	}
	next := s.clone()
	next.Collapsed = make(map[string]bool)
	t.Walk(func(n *tree.Node) bool {
		if n.ID != tree.RootID && n.HasChildren() && n.Depth >= level {
			next.Collapsed[n.ID] = true
		}
		return true
	})
	return next
}

// Prune drops collapsed IDs and the selection if they no longer resolve in
// the given tree. Used after a rebuild so stale state from a previous
// generation cannot linger; projection tolerates stale IDs anyway, so this
// is housekeeping rather than correctness.
func Prune(s State, t *tree.Tree) State {
	next := s.clone()
	for id := range next.Collapsed {
		if t.Lookup(id) == nil {
			delete(next.Collapsed, id)
		}
	}
	if next.SelectedID != "" && t.Lookup(next.SelectedID) == nil {
		next.SelectedID = ""
	}
	return next
}
