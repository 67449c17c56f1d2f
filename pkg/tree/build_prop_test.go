package tree

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// segment generates a plausible folder name: non-empty, no slash, may contain
// spaces and underscores (names with underscores broke the original's
// parent-chain IDs, so they get explicit coverage here).
func segment() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9_ .-]{1,12}`).
		Filter(func(s string) bool { return strings.TrimSpace(s) != "" })
}

func pathGen() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		segs := rapid.SliceOfN(segment(), 1, 6).Draw(t, "segs")
		for i, s := range segs {
			segs[i] = strings.TrimSpace(s)
		}
		return strings.Join(segs, "/")
	})
}

func TestBuildPropDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		paths := rapid.SliceOfN(pathGen(), 0, 40).Draw(t, "paths")

		t1 := Build(paths)
		t2 := Build(paths)

		if t1.NodeCount() != t2.NodeCount() {
			t.Fatalf("node counts differ: %d vs %d", t1.NodeCount(), t2.NodeCount())
		}
		if t1.DataHash != t2.DataHash {
			t.Fatalf("data hashes differ: %s vs %s", t1.DataHash, t2.DataHash)
		}

		var walk1, walk2 []string
		t1.Walk(func(n *Node) bool { walk1 = append(walk1, n.ID); return true })
		t2.Walk(func(n *Node) bool { walk2 = append(walk2, n.ID); return true })
		for i := range walk1 {
			if walk1[i] != walk2[i] {
				t.Fatalf("walk order differs at %d: %s vs %s", i, walk1[i], walk2[i])
			}
		}
	})
}

func TestBuildPropInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		paths := rapid.SliceOfN(pathGen(), 0, 40).Draw(t, "paths")
		tr := Build(paths)

		tr.Walk(func(n *Node) bool {
			// No two children of the same parent share a name.
			seen := make(map[string]bool, len(n.Children))
			for _, c := range n.Children {
				if seen[c.Name] {
					t.Fatalf("duplicate sibling name %q under %s", c.Name, n.ID)
				}
				seen[c.Name] = true
				if c.Depth != n.Depth+1 {
					t.Fatalf("depth of %s is %d, parent is %d", c.ID, c.Depth, n.Depth)
				}
				if c.Parent != n {
					t.Fatalf("parent pointer of %s does not match owner", c.ID)
				}
			}
			// Index agrees with the walk.
			if tr.Lookup(n.ID) != n {
				t.Fatalf("lookup of %s returns a different node", n.ID)
			}
			return true
		})
	})
}

func TestBuildPropReinsertIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		paths := rapid.SliceOfN(pathGen(), 1, 20).Draw(t, "paths")
		doubled := append(append([]string{}, paths...), paths...)

		once := Build(paths)
		twice := Build(doubled)
		if once.NodeCount() != twice.NodeCount() {
			t.Fatalf("re-inserting identical paths changed node count: %d vs %d",
				once.NodeCount(), twice.NodeCount())
		}
	})
}
