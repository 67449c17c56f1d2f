package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Keybindings

## Navigation

| Key | Action |
|-----|--------|
| j / down | Move down |
| k / up | Move up |
| h | Collapse node, or jump to parent |
| l | Expand node, or move to first child |
| p | Jump to parent |
| g / G | Jump to top / bottom |
| ctrl+d / ctrl+u | Half page down / up |

## Expand and collapse

| Key | Action |
|-----|--------|
| enter / space | Toggle node |
| E | Expand everything |
| C | Collapse everything |
| X | Expand this subtree |
| Z | Collapse this subtree |
| o | Expand direct children |
| 1-9 | Expand to depth N |
| R | Reset view |

## Other

| Key | Action |
|-----|--------|
| / | Find folder by name |
| n / N | Next / previous match |
| m | Toggle metadata panel |
| y | Copy folder path to clipboard |
| e | Export snapshot (SVG) |
| ? | Toggle this help |
| q | Quit |
`

// renderHelp renders the help markdown with glamour, falling back to the
// raw markdown when the renderer cannot be constructed.
func renderHelp(width int) string {
	if width <= 0 || width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	// Strip trailing whitespace that glamour adds
	return strings.TrimRight(out, "\n") + "\n"
}
