package view

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/treescope/pkg/tree"
)

// Direction is the layout direction, matching the vis-style hierarchy
// directions: LR (left to right), RL, UD (top down), DU.
type Direction string

const (
	DirLR Direction = "LR"
	DirRL Direction = "RL"
	DirUD Direction = "UD"
	DirDU Direction = "DU"
)

// Valid reports whether d is one of the four supported directions.
func (d Direction) Valid() bool {
	switch d {
	case DirLR, DirRL, DirUD, DirDU:
		return true
	}
	return false
}

// horizontal reports whether the depth axis runs along X.
func (d Direction) horizontal() bool {
	return d == DirLR || d == DirRL
}

// Layout spacing defaults, matching the original controls' midpoints.
const (
	DefaultNodeSpacing     = 100.0
	DefaultLevelSeparation = 200.0
)

// Node colors and sizes. These are part of the observable contract so any
// renderer (and the tests) can rely on them.
const (
	ColorRoot         = "#FF4500" // distinct root color
	ColorSelected     = "#F7A7A6" // selection highlight
	ColorConfidential = "#E74C3C"
	ColorInternal     = "#F39C12"
	ColorPublic       = "#2ECC71" // any other classification value
	ColorDefault      = "#8FBCE6" // no classification

	SizeRoot     = 25.0
	SizeDefault  = 20.0
	SizeSelected = 30.0
)

// Options controls projection layout.
type Options struct {
	Direction       Direction
	NodeSpacing     float64 // sibling separation along the secondary axis
	LevelSeparation float64 // distance between depth levels
}

// DefaultOptions returns LR layout with the default spacing constants.
func DefaultOptions() Options {
	return Options{
		Direction:       DirLR,
		NodeSpacing:     DefaultNodeSpacing,
		LevelSeparation: DefaultLevelSeparation,
	}
}

// VisibleNode is one node of the projection, ready for any rendering
// surface.
type VisibleNode struct {
	ID          string
	Name        string
	Depth       int
	X, Y        float64
	Color       string
	Size        float64
	IsSelected  bool
	IsCollapsed bool
	HasChildren bool // from the full tree, independent of collapse state
	Metadata    map[string]string
}

// Edge is a parent→child connection between two visible nodes.
type Edge struct {
	FromID string
	ToID   string
}

// UnknownNodeError reports a selected ID that does not resolve in the tree.
// Stale collapsed IDs are tolerated silently; an explicit selection of a
// nonexistent node is a caller bug and surfaces as this error.
type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node id %q", e.ID)
}

// Project computes the visible node and edge lists for the given tree and
// state. The root is always visible; a collapsed node stays visible but its
// entire subtree is omitted. Nodes are returned in pre-order depth-first
// order with children in builder insertion order, so positions are stable
// across re-projections.
func Project(t *tree.Tree, s State, opts Options) ([]VisibleNode, []Edge, error) {
	if t == nil || t.Root == nil {
		return nil, nil, errors.New("project: nil tree")
	}
	if s.SelectedID != "" && t.Lookup(s.SelectedID) == nil {
		return nil, nil, &UnknownNodeError{ID: s.SelectedID}
	}
	if !opts.Direction.Valid() {
		opts.Direction = DirLR
	}
	if opts.NodeSpacing <= 0 {
		opts.NodeSpacing = DefaultNodeSpacing
	}
	if opts.LevelSeparation <= 0 {
		opts.LevelSeparation = DefaultLevelSeparation
	}

	p := projector{state: s, opts: opts, secondary: make(map[*tree.Node]float64)}
	p.place(t.Root)

	var nodes []VisibleNode
	var edges []Edge
	p.emit(t.Root, &nodes, &edges)
	return nodes, edges, nil
}

type projector struct {
	state     State
	opts      Options
	secondary map[*tree.Node]float64
	nextSlot  float64
}

// expanded reports whether a node's children are visible.
func (p *projector) expanded(n *tree.Node) bool {
	return !p.state.Collapsed[n.ID]
}

// place assigns each visible node a secondary-axis coordinate, post-order:
// nodes with no visible children take the next sibling slot, parents sit at
// the midpoint of their first and last visible child so children straddle
// the parent's own coordinate.
func (p *projector) place(n *tree.Node) {
	if !n.HasChildren() || !p.expanded(n) {
		p.secondary[n] = p.nextSlot * p.opts.NodeSpacing
		p.nextSlot++
		return
	}
	for _, c := range n.Children {
		p.place(c)
	}
	first := p.secondary[n.Children[0]]
	last := p.secondary[n.Children[len(n.Children)-1]]
	p.secondary[n] = (first + last) / 2
}

// emit walks the visible subtree pre-order, producing nodes and edges.
func (p *projector) emit(n *tree.Node, nodes *[]VisibleNode, edges *[]Edge) {
	primary := float64(n.Depth) * p.opts.LevelSeparation
	if p.opts.Direction == DirRL || p.opts.Direction == DirDU {
		primary = -primary
	}

	var x, y float64
	if p.opts.Direction.horizontal() {
		x, y = primary, p.secondary[n]
	} else {
		x, y = p.secondary[n], primary
	}

	*nodes = append(*nodes, VisibleNode{
		ID:          n.ID,
		Name:        n.Name,
		Depth:       n.Depth,
		X:           x,
		Y:           y,
		Color:       p.colorFor(n),
		Size:        p.sizeFor(n),
		IsSelected:  n.ID == p.state.SelectedID,
		IsCollapsed: n.HasChildren() && p.state.Collapsed[n.ID],
		HasChildren: n.HasChildren(),
		Metadata:    n.Metadata,
	})

	if !p.expanded(n) {
		return
	}
	for _, c := range n.Children {
		*edges = append(*edges, Edge{FromID: n.ID, ToID: c.ID})
		p.emit(c, nodes, edges)
	}
}

func (p *projector) colorFor(n *tree.Node) string {
	switch {
	case n.ID == p.state.SelectedID:
		return ColorSelected
	case n.ID == tree.RootID:
		return ColorRoot
	}
	if cls, ok := n.Metadata["classification"]; ok {
		switch cls {
		case "Confidential":
			return ColorConfidential
		case "Internal":
			return ColorInternal
		default:
			return ColorPublic
		}
	}
	return ColorDefault
}

func (p *projector) sizeFor(n *tree.Node) float64 {
	switch {
	case n.ID == p.state.SelectedID:
		return SizeSelected
	case n.ID == tree.RootID:
		return SizeRoot
	}
	return SizeDefault
}
