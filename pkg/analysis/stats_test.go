package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/vanderheijden86/treescope/pkg/tree"
)

func TestComputeEmptyTree(t *testing.T) {
	s := Compute(tree.Build(nil))
	if s.Nodes != 1 {
		t.Errorf("expected 1 node, got %d", s.Nodes)
	}
	if s.Leaves != 1 { // the root itself
		t.Errorf("expected 1 leaf, got %d", s.Leaves)
	}
	if s.MaxDepth != 0 || s.MeanDepth != 0 || s.StdDevDepth != 0 {
		t.Errorf("depth stats should be zero: %+v", s)
	}
}

func TestComputeSample(t *testing.T) {
	s := Compute(tree.Build([]string{"A/B/C", "A/B/D", "A/E"}))

	if s.Nodes != 6 {
		t.Errorf("nodes = %d, want 6", s.Nodes)
	}
	if s.Leaves != 3 { // C, D, E
		t.Errorf("leaves = %d, want 3", s.Leaves)
	}
	if s.Terminals != 3 {
		t.Errorf("terminals = %d, want 3", s.Terminals)
	}
	if s.MaxDepth != 3 {
		t.Errorf("max depth = %d, want 3", s.MaxDepth)
	}
	// Depths: A=1, B=2, C=3, D=3, E=2 -> mean 2.2
	if math.Abs(s.MeanDepth-2.2) > 1e-9 {
		t.Errorf("mean depth = %v, want 2.2", s.MeanDepth)
	}
	// Internal nodes: root(1 child), A(2), B(2) -> mean 5/3
	if math.Abs(s.MeanBranching-5.0/3.0) > 1e-9 {
		t.Errorf("mean branching = %v, want 5/3", s.MeanBranching)
	}
}

func TestComputeSingleChildNoNaN(t *testing.T) {
	s := Compute(tree.Build([]string{"only"}))
	if math.IsNaN(s.StdDevDepth) {
		t.Error("stddev must not be NaN for a single non-root node")
	}
}

func TestSummaryMentionsCounts(t *testing.T) {
	s := Compute(tree.Build([]string{"A/B"}))
	out := s.Summary()
	if !strings.Contains(out, "2 folders") {
		t.Errorf("summary should report folder count, got %q", out)
	}
}
