// Package tree builds a canonical folder tree from flat slash-joined paths.
//
// Rows that share a prefix are merged into one subtree: inserting "A/B/C" and
// "A/B/D" produces a single "A/B" node with two children. Node IDs derive
// from the segment path alone, so rebuilding from the same rows always yields
// the same IDs regardless of row order among unrelated branches.
package tree

import (
	"fmt"
	"strings"
)

// RootID is the identifier of the synthetic root node. Segments are produced
// by splitting on "/" and can never contain it, so no folder ID can collide
// with the root.
const RootID = "/"

// Node is one folder level in the tree.
type Node struct {
	ID       string            // path-derived, unique within the tree
	Name     string            // raw path segment ("" for the root)
	Depth    int               // root is 0
	Parent   *Node             // nil for the root
	Children []*Node           // first-insertion order, never re-sorted
	Metadata map[string]string // set on first terminal encounter, nil otherwise

	// Terminal marks nodes that ended at least one input path. A terminal
	// node can still have children from longer rows sharing its prefix.
	Terminal bool
}

// HasChildren reports whether the node has at least one child in the full
// tree, independent of any view state.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Child returns the direct child with the given segment name, or nil.
// Lookup is by name among direct children only; first match wins.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Path returns the slash-joined segment path from the root to this node.
// The root's path is the empty string.
func (n *Node) Path() string {
	if n.Parent == nil {
		return ""
	}
	return strings.TrimPrefix(n.ID, RootID)
}

// Tree is a rooted, strictly acyclic ownership structure. Every non-root
// node has exactly one parent; the tree owns node lifetime for a session.
type Tree struct {
	Root *Node

	// DataHash identifies the input rows this tree was built from. Two
	// builds over identical rows produce identical hashes, which lets
	// callers skip redundant rebuilds and stamp exports with provenance.
	DataHash string

	index map[string]*Node
}

// Lookup returns the node with the given ID, or nil if the ID is unknown.
func (t *Tree) Lookup(id string) *Node {
	return t.index[id]
}

// NodeCount returns the total number of nodes including the root.
func (t *Tree) NodeCount() int {
	return len(t.index)
}

// Walk visits every node in pre-order depth-first order, children in
// insertion order. The walk stops early if fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	var walk func(*Node) bool
	walk = func(n *Node) bool {
		if !fn(n) {
			return false
		}
		for _, c := range n.Children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(t.Root)
}

// DescendantIDs returns the IDs of all descendants of the node with the
// given ID, not including the node itself. When directOnly is true, only the
// direct children are returned. Unknown IDs yield nil.
func (t *Tree) DescendantIDs(id string, directOnly bool) []string {
	n := t.index[id]
	if n == nil {
		return nil
	}
	var ids []string
	if directOnly {
		for _, c := range n.Children {
			ids = append(ids, c.ID)
		}
		return ids
	}
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			ids = append(ids, c.ID)
			walk(c)
		}
	}
	walk(n)
	return ids
}

// AncestorIDs returns the IDs of all ancestors of the node with the given
// ID, from the root down to the immediate parent. Unknown IDs yield nil.
func (t *Tree) AncestorIDs(id string) []string {
	n := t.index[id]
	if n == nil {
		return nil
	}
	var ids []string
	for p := n.Parent; p != nil; p = p.Parent {
		ids = append([]string{p.ID}, ids...)
	}
	return ids
}

// IDForPath returns the node ID a slash-joined path resolves to. It does not
// check that the node exists; combine with Lookup for that.
func IDForPath(path string) string {
	segs := splitPath(path)
	if len(segs) == 0 {
		return RootID
	}
	return RootID + strings.Join(segs, "/")
}

// InvalidInputError reports builder input that is not a sequence of strings,
// e.g. a JSON row whose cell is a number or object.
type InvalidInputError struct {
	Index int // position of the offending element
	Value any // the element itself
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid builder input at index %d: %T is not a string", e.Index, e.Value)
}
