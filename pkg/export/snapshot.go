// Package export renders static snapshots of a projected folder tree.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/treescope/pkg/analysis"
	"github.com/vanderheijden86/treescope/pkg/view"
)

// SnapshotOptions controls tree snapshot export behaviour.
type SnapshotOptions struct {
	Path     string              // Output path; format inferred from extension when Format empty
	Format   string              // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title    string              // Optional title rendered in summary block
	Nodes    []view.VisibleNode  // Projection to render
	Edges    []view.Edge         // Parent->child connectors
	Stats    *analysis.TreeStats // Tree stats for the summary block, optional
	DataHash string              // Hash of the input rows for provenance
}

// SaveSnapshot renders a static snapshot (SVG or PNG) of a projected tree
// with a small summary block and a classification legend.
func SaveSnapshot(opts SnapshotOptions) error {
	if len(opts.Nodes) == 0 {
		return fmt.Errorf("no visible nodes to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildLayout(opts)

	switch format {
	case "svg":
		return renderSVG(opts.Path, layout)
	case "png":
		return renderPNG(opts.Path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- layout computation ----------------------------------------------------

// canvasNode is a visible node translated into canvas coordinates.
type canvasNode struct {
	view.VisibleNode
	CX, CY float64 // center on canvas
}

type layoutResult struct {
	Nodes   []canvasNode
	Edges   []view.Edge
	Width   int
	Height  int
	Header  float64
	Summary summaryInfo
	byID    map[string]int // node index by ID for edge endpoints
}

type summaryInfo struct {
	Title     string
	DataHash  string
	NodeCount int
	EdgeCount int
	Stats     string
}

// buildLayout shifts the projection's coordinate space onto a canvas: the
// projector emits positions that can be negative (RL and DU directions), so
// everything is translated to leave room for padding, the header, and the
// largest node radius.
func buildLayout(opts SnapshotOptions) layoutResult {
	const (
		padding      = 48.0
		headerHeight = 110.0
		minWidth     = 640
		minHeight    = 480
	)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	maxR := 0.0
	for _, n := range opts.Nodes {
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X)
		minY = math.Min(minY, n.Y)
		maxY = math.Max(maxY, n.Y)
		if r := n.Size / 2; r > maxR {
			maxR = r
		}
	}

	offX := padding + maxR - minX
	offY := padding + headerHeight + maxR - minY

	nodes := make([]canvasNode, 0, len(opts.Nodes))
	byID := make(map[string]int, len(opts.Nodes))
	for _, n := range opts.Nodes {
		byID[n.ID] = len(nodes)
		nodes = append(nodes, canvasNode{
			VisibleNode: n,
			CX:          n.X + offX,
			CY:          n.Y + offY,
		})
	}

	width := int(maxX - minX + 2*(padding+maxR))
	if width < minWidth {
		width = minWidth
	}
	height := int(maxY - minY + 2*(padding+maxR) + headerHeight)
	if height < minHeight {
		height = minHeight
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Folder Tree Snapshot"
	}
	statsLine := ""
	if opts.Stats != nil {
		statsLine = opts.Stats.Summary()
	}

	return layoutResult{
		Nodes:  nodes,
		Edges:  opts.Edges,
		Width:  width,
		Height: height,
		Header: headerHeight,
		byID:   byID,
		Summary: summaryInfo{
			Title:     title,
			DataHash:  opts.DataHash,
			NodeCount: len(opts.Nodes),
			EdgeCount: len(opts.Edges),
			Stats:     statsLine,
		},
	}
}

// --- rendering -------------------------------------------------------------

var (
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorEdge     = color.RGBA{0x9a, 0xa5, 0xb1, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

// parseHex turns a "#RRGGBB" projection color into an RGBA value.
func parseHex(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(s, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{0x8f, 0xbc, 0xe6, 0xff}
	}
	return color.RGBA{r, g, b, 0xff}
}

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)

	drawSummaryBlock(dc, layout)
	drawLegend(dc, layout)

	dc.SetColor(colorEdge)
	dc.SetLineWidth(1.5)
	for _, e := range layout.Edges {
		from, fok := layout.node(e.FromID)
		to, tok := layout.node(e.ToID)
		if !fok || !tok {
			continue
		}
		dc.DrawLine(from.CX, from.CY, to.CX, to.CY)
		dc.Stroke()
	}

	for _, n := range layout.Nodes {
		dc.SetColor(parseHex(n.Color))
		dc.DrawCircle(n.CX, n.CY, n.Size/2)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawCircle(n.CX, n.CY, n.Size/2)
		dc.Stroke()

		label := n.Name
		if n.IsCollapsed && n.HasChildren {
			label += " [+]"
		}
		dc.SetColor(colorText)
		dc.DrawStringAnchored(truncate(label, 28), n.CX, n.CY+n.Size/2+12, 0.5, 0.5)
	}

	return dc.SavePNG(path)
}

func renderSVG(path string, layout layoutResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawSummaryBlockSVG(canvas, layout)
	drawLegendSVG(canvas, layout)

	for _, e := range layout.Edges {
		from, fok := layout.node(e.FromID)
		to, tok := layout.node(e.ToID)
		if !fok || !tok {
			continue
		}
		canvas.Line(int(from.CX), int(from.CY), int(to.CX), int(to.CY),
			fmt.Sprintf("stroke:%s;stroke-width:1.5", css(colorEdge)))
	}

	for _, n := range layout.Nodes {
		canvas.Circle(int(n.CX), int(n.CY), int(n.Size/2),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", n.Color, css(colorStroke)))
		label := n.Name
		if n.IsCollapsed && n.HasChildren {
			label += " [+]"
		}
		canvas.Text(int(n.CX), int(n.CY+n.Size/2+14), truncate(label, 28),
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(colorText)))
	}

	canvas.End()
	return nil
}

func (l layoutResult) node(id string) (canvasNode, bool) {
	i, ok := l.byID[id]
	if !ok {
		return canvasNode{}, false
	}
	return l.Nodes[i], true
}

func drawSummaryBlock(dc *gg.Context, layout layoutResult) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 40, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("data_hash: %s", layout.Summary.DataHash), 32, 58, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("visible: %d nodes  %d edges", layout.Summary.NodeCount, layout.Summary.EdgeCount), 32, 74, 0, 0.5)
	if layout.Summary.Stats != "" {
		dc.DrawStringAnchored(layout.Summary.Stats, 32, 90, 0, 0.5)
	}
}

func drawSummaryBlockSVG(canvas *svg.SVG, layout layoutResult) {
	canvas.Text(32, 44, layout.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 62, fmt.Sprintf("data_hash: %s", layout.Summary.DataHash), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 78, fmt.Sprintf("visible: %d nodes  %d edges", layout.Summary.NodeCount, layout.Summary.EdgeCount), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	if layout.Summary.Stats != "" {
		canvas.Text(32, 94, layout.Summary.Stats, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	}
}

// legendEntries maps the projection color contract to labels.
var legendEntries = []struct {
	Color string
	Label string
}{
	{view.ColorRoot, "Root"},
	{view.ColorSelected, "Selected"},
	{view.ColorConfidential, "Confidential"},
	{view.ColorInternal, "Internal"},
	{view.ColorPublic, "Classified (other)"},
	{view.ColorDefault, "Folder"},
}

func drawLegend(dc *gg.Context, layout layoutResult) {
	boxW := 190.0
	boxH := 16.0*float64(len(legendEntries)) + 28
	x := float64(layout.Width) - boxW - 20
	y := 24.0
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Legend", x+12, y+16, 0, 0.5)
	for i, entry := range legendEntries {
		rowY := y + 34 + 16*float64(i)
		dc.SetColor(parseHex(entry.Color))
		dc.DrawCircle(x+18, rowY-4, 6)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.DrawCircle(x+18, rowY-4, 6)
		dc.Stroke()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(entry.Label, x+32, rowY-4, 0, 0.5)
	}
}

func drawLegendSVG(canvas *svg.SVG, layout layoutResult) {
	boxW := 190
	boxH := 16*len(legendEntries) + 28
	x := layout.Width - boxW - 20
	y := 24
	canvas.Roundrect(x, y, boxW, boxH, 10, 10, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorStroke)))
	canvas.Text(x+12, y+18, "Legend", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, entry := range legendEntries {
		rowY := y + 36 + 16*i
		canvas.Circle(x+18, rowY-4, 6, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", entry.Color, css(colorStroke)))
		canvas.Text(x+32, rowY, entry.Label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
