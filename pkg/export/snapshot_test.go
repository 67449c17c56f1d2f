package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/treescope/pkg/analysis"
	"github.com/vanderheijden86/treescope/pkg/tree"
	"github.com/vanderheijden86/treescope/pkg/view"
)

func projectSample(t *testing.T, opts view.Options) ([]view.VisibleNode, []view.Edge, *tree.Tree) {
	t.Helper()
	tr := tree.Build([]string{"A/B/C", "A/B/D", "A/E"})
	nodes, edges, err := view.Project(tr, view.NewState(), opts)
	if err != nil {
		t.Fatal(err)
	}
	return nodes, edges, tr
}

func TestSaveSnapshotSVG(t *testing.T) {
	nodes, edges, tr := projectSample(t, view.DefaultOptions())
	stats := analysis.Compute(tr)

	path := filepath.Join(t.TempDir(), "out.svg")
	err := SaveSnapshot(SnapshotOptions{
		Path:     path,
		Title:    "Share Audit",
		Nodes:    nodes,
		Edges:    edges,
		Stats:    &stats,
		DataHash: tr.DataHash,
	})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)

	for _, want := range []string{
		"<svg", "Share Audit", tr.DataHash,
		view.ColorRoot, view.ColorDefault,
		">A<", ">B<", ">E<", // node labels
		"Legend", "Confidential",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestSaveSnapshotPNG(t *testing.T) {
	nodes, edges, _ := projectSample(t, view.DefaultOptions())

	path := filepath.Join(t.TempDir(), "out.png")
	err := SaveSnapshot(SnapshotOptions{Path: path, Nodes: nodes, Edges: edges})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestSaveSnapshotInfersFormatAndExtension(t *testing.T) {
	nodes, edges, _ := projectSample(t, view.DefaultOptions())

	dir := t.TempDir()
	base := filepath.Join(dir, "noext")
	if err := SaveSnapshot(SnapshotOptions{Path: base, Nodes: nodes, Edges: edges}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if _, err := os.Stat(base + ".svg"); err != nil {
		t.Errorf("expected .svg appended to extensionless path: %v", err)
	}
}

func TestSaveSnapshotRejectsEmptyAndBadFormat(t *testing.T) {
	nodes, edges, _ := projectSample(t, view.DefaultOptions())

	if err := SaveSnapshot(SnapshotOptions{Path: "x.svg"}); err == nil {
		t.Error("expected error for empty projection")
	}
	if err := SaveSnapshot(SnapshotOptions{Path: "x.gif", Format: "gif", Nodes: nodes, Edges: edges}); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := SaveSnapshot(SnapshotOptions{Nodes: nodes, Edges: edges, Format: "svg"}); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestBuildLayoutShiftsNegativeCoordinates(t *testing.T) {
	// RL layouts put every non-root node at negative x.
	opts := view.DefaultOptions()
	opts.Direction = view.DirRL
	nodes, edges, _ := projectSample(t, opts)

	layout := buildLayout(SnapshotOptions{Nodes: nodes, Edges: edges})
	for _, n := range layout.Nodes {
		if n.CX < 0 || n.CY < 0 {
			t.Errorf("node %s placed off-canvas at (%.1f, %.1f)", n.ID, n.CX, n.CY)
		}
		if n.CY < layout.Header {
			t.Errorf("node %s overlaps the header at y=%.1f", n.ID, n.CY)
		}
	}
}

func TestBuildLayoutMinimumCanvas(t *testing.T) {
	nodes := []view.VisibleNode{{ID: "/", Name: "/", Color: view.ColorRoot, Size: view.SizeRoot}}
	layout := buildLayout(SnapshotOptions{Nodes: nodes})
	if layout.Width < 640 || layout.Height < 480 {
		t.Errorf("canvas below minimum: %dx%d", layout.Width, layout.Height)
	}
}

func TestParseHex(t *testing.T) {
	c := parseHex("#FF4500")
	if c.R != 0xff || c.G != 0x45 || c.B != 0x00 {
		t.Errorf("parseHex(#FF4500) = %+v", c)
	}
	// garbage falls back to the default node color
	c = parseHex("nope")
	if c.B != 0xe6 {
		t.Errorf("fallback color wrong: %+v", c)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 28); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "ab..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "" {
		t.Errorf("truncate with max 0 = %q", got)
	}
}
