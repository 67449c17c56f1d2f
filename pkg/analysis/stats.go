// Package analysis computes shape statistics over a folder tree for the
// summary line in the TUI and the snapshot export header.
package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/treescope/pkg/tree"
)

// TreeStats summarizes the shape of a built tree. Depth figures exclude the
// synthetic root; branching is averaged over internal nodes only.
type TreeStats struct {
	Nodes         int // including the root
	Leaves        int // nodes with no children
	Terminals     int // nodes that ended at least one input row
	MaxDepth      int
	MeanDepth     float64
	StdDevDepth   float64
	MeanBranching float64
}

// Compute walks the tree once and derives the statistics.
func Compute(t *tree.Tree) TreeStats {
	var s TreeStats
	var depths []float64
	var branching []float64

	t.Walk(func(n *tree.Node) bool {
		s.Nodes++
		if n.Terminal {
			s.Terminals++
		}
		if n.HasChildren() {
			branching = append(branching, float64(len(n.Children)))
		} else {
			s.Leaves++
		}
		if n.Parent != nil {
			depths = append(depths, float64(n.Depth))
			if n.Depth > s.MaxDepth {
				s.MaxDepth = n.Depth
			}
		}
		return true
	})

	if len(depths) > 0 {
		s.MeanDepth, s.StdDevDepth = stat.MeanStdDev(depths, nil)
		if len(depths) == 1 {
			s.StdDevDepth = 0 // MeanStdDev yields NaN for a single sample
		}
	}
	if len(branching) > 0 {
		s.MeanBranching = stat.Mean(branching, nil)
	}
	return s
}

// Summary renders a one-line human-readable summary.
func (s TreeStats) Summary() string {
	return fmt.Sprintf("%d folders  %d leaves  depth %d (mean %.1f +/- %.1f)  branching %.1f",
		s.Nodes-1, s.Leaves, s.MaxDepth, s.MeanDepth, s.StdDevDepth, s.MeanBranching)
}
