package tree

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Row is one input row: a slash-joined path plus optional metadata carried by
// the terminal node (size, owner, classification, created date and the like).
type Row struct {
	Path     string
	Metadata map[string]string
}

// Build constructs a tree from slash-joined paths. Empty and whitespace-only
// segments are skipped, mirroring blank spreadsheet cells. An empty or nil
// slice yields a tree containing only the root.
func Build(paths []string) *Tree {
	rows := make([]Row, len(paths))
	for i, p := range paths {
		rows[i] = Row{Path: p}
	}
	return BuildRows(rows)
}

// BuildRows is Build with per-row metadata. Metadata is attached to the
// terminal node of each row on first encounter and never overwritten, so
// duplicate rows cannot clobber earlier values.
func BuildRows(rows []Row) *Tree {
	root := &Node{ID: RootID}
	t := &Tree{
		Root:  root,
		index: map[string]*Node{RootID: root},
	}

	h := sha256.New()
	for _, row := range rows {
		segs := splitPath(row.Path)
		h.Write([]byte(strings.Join(segs, "/")))
		h.Write([]byte{0})
		if len(segs) == 0 {
			continue
		}

		cur := root
		for _, seg := range segs {
			next := cur.Child(seg)
			if next == nil {
				next = &Node{
					ID:     childID(cur.ID, seg),
					Name:   seg,
					Depth:  cur.Depth + 1,
					Parent: cur,
				}
				cur.Children = append(cur.Children, next)
				t.index[next.ID] = next
			}
			cur = next
		}

		// cur is the terminal node for this row.
		if !cur.Terminal {
			cur.Terminal = true
			if len(row.Metadata) > 0 {
				md := make(map[string]string, len(row.Metadata))
				for k, v := range row.Metadata {
					md[k] = v
				}
				cur.Metadata = md
			}
		}
	}

	t.DataHash = hex.EncodeToString(h.Sum(nil))[:16]
	return t
}

// BuildStrings coerces an untyped sequence (as decoded from JSON) into paths
// and builds the tree. Elements that are not strings produce an
// InvalidInputError naming the offending index.
func BuildStrings(values []any) (*Tree, error) {
	paths := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, &InvalidInputError{Index: i, Value: v}
		}
		paths[i] = s
	}
	return Build(paths), nil
}

func childID(parentID, seg string) string {
	if parentID == RootID {
		return RootID + seg
	}
	return parentID + "/" + seg
}

// splitPath splits on "/" and drops empty or whitespace-only segments.
func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	segs := parts[:0:0]
	for _, part := range parts {
		s := strings.TrimSpace(part)
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
