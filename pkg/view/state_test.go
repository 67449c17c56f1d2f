package view

import (
	"testing"

	"github.com/vanderheijden86/treescope/pkg/tree"
)

func sampleTree() *tree.Tree {
	return tree.Build([]string{"A/B/C", "A/B/D", "A/E"})
}

func TestToggleCollapse(t *testing.T) {
	s := NewState()

	s1 := ToggleCollapse(s, "/A/B")
	if !s1.IsCollapsed("/A/B") {
		t.Error("expected /A/B collapsed after first toggle")
	}
	if s.IsCollapsed("/A/B") {
		t.Error("input state must not be mutated")
	}

	s2 := ToggleCollapse(s1, "/A/B")
	if s2.IsCollapsed("/A/B") {
		t.Error("expected /A/B expanded after second toggle")
	}
	if !s2.Equal(s) {
		t.Error("double toggle should return to the original state")
	}
}

func TestToggleCollapseRootNoOp(t *testing.T) {
	s := ToggleCollapse(NewState(), tree.RootID)
	if len(s.Collapsed) != 0 {
		t.Error("root must never enter the collapsed set")
	}
}

func TestSelectDoesNotTouchCollapse(t *testing.T) {
	s := ToggleCollapse(NewState(), "/A")
	s = Select(s, "/A/B/C")
	if s.SelectedID != "/A/B/C" {
		t.Errorf("selected = %q", s.SelectedID)
	}
	if !s.IsCollapsed("/A") {
		t.Error("select must not alter the collapsed set")
	}

	s = Select(s, "")
	if s.SelectedID != "" {
		t.Error("empty ID should clear the selection")
	}
}

func TestRevealExpandsAncestors(t *testing.T) {
	tr := sampleTree()
	s := NewState()
	s = ToggleCollapse(s, "/A")
	s = ToggleCollapse(s, "/A/B")
	s = ToggleCollapse(s, "/A/E")

	s = Reveal(s, tr, "/A/B/C")
	if s.SelectedID != "/A/B/C" {
		t.Errorf("selected = %q", s.SelectedID)
	}
	if s.IsCollapsed("/A") || s.IsCollapsed("/A/B") {
		t.Error("ancestors of the revealed node must be expanded")
	}
	if !s.IsCollapsed("/A/E") {
		t.Error("unrelated collapsed nodes must stay collapsed")
	}
}

func TestCollapseAllThenExpandAll(t *testing.T) {
	tr := sampleTree()

	s := CollapseAll(NewState(), tr)
	// Non-root nodes with children: /A and /A/B.
	if len(s.Collapsed) != 2 || !s.IsCollapsed("/A") || !s.IsCollapsed("/A/B") {
		t.Errorf("unexpected collapsed set: %v", s.Collapsed)
	}
	if s.IsCollapsed(tree.RootID) {
		t.Error("root must not be collapsed by CollapseAll")
	}

	s = ExpandAll(s)
	if len(s.Collapsed) != 0 {
		t.Errorf("expected empty collapsed set, got %v", s.Collapsed)
	}
}

func TestExpandSubtree(t *testing.T) {
	tr := sampleTree()
	s := CollapseAll(NewState(), tr)

	s = ExpandSubtree(s, tr, "/A")
	if len(s.Collapsed) != 0 {
		t.Errorf("expanding /A's subtree should clear everything here, got %v", s.Collapsed)
	}
}

func TestCollapseSubtreeSkipsLeaves(t *testing.T) {
	tr := sampleTree()
	s := CollapseSubtree(NewState(), tr, "/A")

	if !s.IsCollapsed("/A") || !s.IsCollapsed("/A/B") {
		t.Errorf("expected /A and /A/B collapsed, got %v", s.Collapsed)
	}
	if s.IsCollapsed("/A/B/C") || s.IsCollapsed("/A/E") {
		t.Error("leaves must not enter the collapsed set")
	}
}

func TestExpandCollapseChildren(t *testing.T) {
	tr := sampleTree()
	s := CollapseAll(NewState(), tr)

	s = ExpandChildren(s, tr, "/A")
	if s.IsCollapsed("/A/B") {
		t.Error("direct child /A/B should be expanded")
	}
	if !s.IsCollapsed("/A") {
		t.Error("the node itself is untouched by ExpandChildren")
	}

	s = CollapseChildren(NewState(), tr, "/A")
	if !s.IsCollapsed("/A/B") {
		t.Error("direct child /A/B should be collapsed")
	}
	if s.IsCollapsed("/A/E") {
		t.Error("leaf child must not be collapsed")
	}
}

func TestExpandToLevel(t *testing.T) {
	tr := tree.Build([]string{"a/b/c/d", "a/x"})

	s := ExpandToLevel(NewState(), tr, 1)
	if !s.IsCollapsed("/a") {
		t.Error("level 1 shows only depth-1 nodes, /a must be collapsed")
	}

	s = ExpandToLevel(s, tr, 2)
	if s.IsCollapsed("/a") {
		t.Error("level 2 expands /a")
	}
	if !s.IsCollapsed("/a/b") {
		t.Error("level 2 keeps /a/b collapsed")
	}
}

func TestPruneDropsStaleState(t *testing.T) {
	tr := sampleTree()
	s := NewState()
	s.Collapsed["/gone"] = true
	s.Collapsed["/A"] = true
	s.SelectedID = "/also/gone"

	s = Prune(s, tr)
	if s.IsCollapsed("/gone") {
		t.Error("stale collapsed ID should be pruned")
	}
	if !s.IsCollapsed("/A") {
		t.Error("live collapsed ID should survive")
	}
	if s.SelectedID != "" {
		t.Error("stale selection should be cleared")
	}
}
