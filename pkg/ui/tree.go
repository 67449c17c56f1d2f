// tree.go - Hierarchical folder tree view with expand/collapse navigation.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treescope/pkg/tree"
	"github.com/vanderheijden86/treescope/pkg/view"
)

// TreeModel renders the visible slice of a folder tree and tracks the cursor.
// Expand/collapse state lives in a view.State; every mutation goes through
// the pure transition functions so the on-screen list always matches what a
// projection of the same state would produce.
type TreeModel struct {
	theme Theme

	tree  *tree.Tree
	state view.State

	flat   []*tree.Node // visible nodes in pre-order
	cursor int

	width          int
	height         int
	viewportOffset int
	built          bool
}

// NewTreeModel creates an empty tree view.
func NewTreeModel(theme Theme) TreeModel {
	return TreeModel{
		theme: theme,
		state: view.NewState(),
	}
}

// SetSize updates the available dimensions for the tree view.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Build points the view at a new tree, pruning any state that refers to
// nodes the rebuild dropped. The cursor moves back to the selected node if
// it survived, otherwise to the root.
func (t *TreeModel) Build(tr *tree.Tree, state view.State) {
	t.tree = tr
	t.state = view.Prune(state, tr)
	t.built = true
	t.rebuildFlat()

	t.cursor = 0
	if t.state.SelectedID != "" {
		for i, n := range t.flat {
			if n.ID == t.state.SelectedID {
				t.cursor = i
				break
			}
		}
	}
	t.syncSelection()
	t.ensureCursorVisible()
}

// rebuildFlat recomputes the visible node list: pre-order, children of
// collapsed nodes omitted entirely.
func (t *TreeModel) rebuildFlat() {
	t.flat = t.flat[:0]
	if t.tree == nil || t.tree.Root == nil {
		return
	}

	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		t.flat = append(t.flat, n)
		if t.state.IsCollapsed(n.ID) {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.tree.Root)

	if t.cursor >= len(t.flat) {
		t.cursor = len(t.flat) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// syncSelection records the cursor node as the selected ID in the state.
func (t *TreeModel) syncSelection() {
	if t.cursor >= 0 && t.cursor < len(t.flat) {
		t.state = view.Select(t.state, t.flat[t.cursor].ID)
	}
}

// IsBuilt reports whether Build has been called.
func (t *TreeModel) IsBuilt() bool { return t.built }

// VisibleCount returns the number of rows the view currently shows.
func (t *TreeModel) VisibleCount() int { return len(t.flat) }

// State returns the current view state.
func (t *TreeModel) State() view.State { return t.state }

// Tree returns the underlying tree.
func (t *TreeModel) Tree() *tree.Tree { return t.tree }

// SelectedNode returns the node under the cursor, or nil.
func (t *TreeModel) SelectedNode() *tree.Node {
	if t.cursor < 0 || t.cursor >= len(t.flat) {
		return nil
	}
	return t.flat[t.cursor]
}

// --- navigation ------------------------------------------------------------

// MoveDown moves the cursor one row down.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.flat)-1 {
		t.cursor++
	}
	t.syncSelection()
	t.ensureCursorVisible()
}

// MoveUp moves the cursor one row up.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
	t.syncSelection()
	t.ensureCursorVisible()
}

// JumpToTop moves the cursor to the root.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.syncSelection()
	t.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last visible row.
func (t *TreeModel) JumpToBottom() {
	t.cursor = len(t.flat) - 1
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.syncSelection()
	t.ensureCursorVisible()
}

// PageDown moves the cursor half a page down.
func (t *TreeModel) PageDown() {
	t.cursor += t.pageSize() / 2
	if t.cursor >= len(t.flat) {
		t.cursor = len(t.flat) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.syncSelection()
	t.ensureCursorVisible()
}

// PageUp moves the cursor half a page up.
func (t *TreeModel) PageUp() {
	t.cursor -= t.pageSize() / 2
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.syncSelection()
	t.ensureCursorVisible()
}

// JumpToParent moves the cursor to the current node's parent.
func (t *TreeModel) JumpToParent() {
	n := t.SelectedNode()
	if n == nil || n.Parent == nil {
		return
	}
	for i, cand := range t.flat {
		if cand == n.Parent {
			t.cursor = i
			break
		}
	}
	t.syncSelection()
	t.ensureCursorVisible()
}

// --- expand/collapse -------------------------------------------------------

// ToggleExpand toggles the collapsed flag of the node under the cursor.
// Toggling the root or a leaf is a no-op.
func (t *TreeModel) ToggleExpand() {
	n := t.SelectedNode()
	if n == nil || !n.HasChildren() {
		return
	}
	t.state = view.ToggleCollapse(t.state, n.ID)
	t.rebuildFlat()
	t.syncSelection()
	t.ensureCursorVisible()
}

// ExpandAll clears every collapsed flag.
func (t *TreeModel) ExpandAll() {
	t.state = view.ExpandAll(t.state)
	t.rebuildFlat()
	t.syncSelection()
	t.ensureCursorVisible()
}

// CollapseAll collapses every non-root node that has children, leaving only
// the root and its direct children visible.
func (t *TreeModel) CollapseAll() {
	t.state = view.CollapseAll(t.state, t.tree)
	t.rebuildFlat()
	t.syncSelection()
	t.ensureCursorVisible()
}

// ExpandSubtree expands the node under the cursor and everything below it.
func (t *TreeModel) ExpandSubtree() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	t.state = view.ExpandSubtree(t.state, t.tree, n.ID)
	t.rebuildFlat()
	t.syncSelection()
	t.ensureCursorVisible()
}

// CollapseSubtree collapses the node under the cursor and everything below it.
func (t *TreeModel) CollapseSubtree() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	t.state = view.CollapseSubtree(t.state, t.tree, n.ID)
	t.rebuildFlat()
	t.syncSelection()
	t.ensureCursorVisible()
}

// ExpandChildren expands only the direct children of the cursor node.
func (t *TreeModel) ExpandChildren() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	t.state = view.ExpandChildren(t.state, t.tree, n.ID)
	if t.state.IsCollapsed(n.ID) {
		t.state = view.ToggleCollapse(t.state, n.ID)
	}
	t.rebuildFlat()
	t.syncSelection()
	t.ensureCursorVisible()
}

// ExpandToLevel shows the tree down to the given depth and collapses
// everything deeper.
func (t *TreeModel) ExpandToLevel(level int) {
	t.state = view.ExpandToLevel(t.state, t.tree, level)
	t.rebuildFlat()
	t.syncSelection()
	t.ensureCursorVisible()
}

// CollapseOrJumpToParent collapses an expanded node, or jumps to the parent
// when the node is already collapsed or a leaf. Mirrors vim's h.
func (t *TreeModel) CollapseOrJumpToParent() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	if n.HasChildren() && !t.state.IsCollapsed(n.ID) && n.Parent != nil {
		t.state = view.ToggleCollapse(t.state, n.ID)
		t.rebuildFlat()
		t.syncSelection()
		t.ensureCursorVisible()
		return
	}
	t.JumpToParent()
}

// ExpandOrMoveToChild expands a collapsed node, or moves to the first child
// when already expanded. Mirrors vim's l.
func (t *TreeModel) ExpandOrMoveToChild() {
	n := t.SelectedNode()
	if n == nil || !n.HasChildren() {
		return
	}
	if t.state.IsCollapsed(n.ID) {
		t.state = view.ToggleCollapse(t.state, n.ID)
		t.rebuildFlat()
		t.syncSelection()
		t.ensureCursorVisible()
		return
	}
	t.MoveDown()
}

// Reveal expands ancestors so the given node is visible and selects it.
func (t *TreeModel) Reveal(id string) {
	if t.tree == nil || t.tree.Lookup(id) == nil {
		return
	}
	t.state = view.Reveal(t.state, t.tree, id)
	t.rebuildFlat()
	for i, n := range t.flat {
		if n.ID == id {
			t.cursor = i
			break
		}
	}
	t.ensureCursorVisible()
}

// --- viewport --------------------------------------------------------------

func (t *TreeModel) pageSize() int {
	// reserve one line for the position indicator
	h := t.height - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (t *TreeModel) visibleRange() (int, int) {
	start := t.viewportOffset
	end := start + t.pageSize()
	if end > len(t.flat) {
		end = len(t.flat)
	}
	if start > end {
		start = end
	}
	return start, end
}

func (t *TreeModel) ensureCursorVisible() {
	page := t.pageSize()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+page {
		t.viewportOffset = t.cursor - page + 1
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// --- rendering -------------------------------------------------------------

// View renders the visible window of the tree.
func (t *TreeModel) View() string {
	if !t.built || len(t.flat) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	start, end := t.visibleRange()

	for i := start; i < end; i++ {
		node := t.flat[i]
		isSelected := i == t.cursor
		line := t.renderNode(node, isSelected)
		if isSelected {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(t.flat) > t.pageSize() {
		sb.WriteString(t.renderPositionIndicator(start, end))
	}

	return sb.String()
}

// renderPositionIndicator renders the scroll position line shown when the
// tree does not fit in the viewport.
func (t *TreeModel) renderPositionIndicator(start, end int) string {
	indicator := fmt.Sprintf(" %d-%d of %d", start+1, end, len(t.flat))
	return t.theme.MutedText.Render(indicator)
}

func (t *TreeModel) renderEmptyState() string {
	r := t.theme.Renderer
	title := r.NewStyle().Foreground(t.theme.Primary).Bold(true).Render("No folders")
	hint := t.theme.MutedText.Render("The dataset produced an empty tree.")
	return title + "\n" + hint
}

func (t *TreeModel) renderNode(node *tree.Node, isSelected bool) string {
	r := t.theme.Renderer
	width := t.width
	if width <= 0 {
		width = 80
	}
	// Reduce width by 1 to prevent terminal wrapping on the exact edge
	width--

	var leftSide strings.Builder

	prefix := t.buildTreePrefix(node)
	leftSide.WriteString(prefix)
	prefixWidth := lipgloss.Width(prefix)

	indicator := t.expandIndicator(node)
	leftSide.WriteString(r.NewStyle().Foreground(t.theme.Secondary).Render(indicator))
	leftSide.WriteString(" ")

	name := node.Name
	if node.ID == tree.RootID {
		name = "/"
	}
	collapsedCount := ""
	if t.state.IsCollapsed(node.ID) && node.HasChildren() {
		collapsedCount = fmt.Sprintf(" (%d)", len(t.tree.DescendantIDs(node.ID, false)))
	}

	nameWidth := width - prefixWidth - 2 - lipgloss.Width(collapsedCount) - rightColumnWidth(width)
	if nameWidth < 5 {
		nameWidth = 5
	}
	name = truncateCells(name, nameWidth, "…")

	classification := node.Metadata["classification"]
	nameStyle := r.NewStyle().Foreground(t.theme.NodeColor(node.ID == tree.RootID, isSelected, classification))
	if isSelected {
		nameStyle = nameStyle.Bold(true)
	}
	leftSide.WriteString(nameStyle.Render(name))
	if collapsedCount != "" {
		leftSide.WriteString(t.theme.MutedText.Render(collapsedCount))
	}

	// Right column: owner for terminals that have one recorded
	var rightSide string
	if rightColumnWidth(width) > 0 {
		if owner := node.Metadata["owner"]; owner != "" {
			rightSide = t.theme.SecondaryText.Render(truncateCells(owner, 14, "…"))
		}
	}

	leftLen := lipgloss.Width(leftSide.String())
	rightLen := lipgloss.Width(rightSide)
	padding := width - leftLen - rightLen
	if padding < 0 {
		padding = 0
	}

	row := leftSide.String() + strings.Repeat(" ", padding) + rightSide
	return r.NewStyle().MaxWidth(width).Render(row)
}

// rightColumnWidth reserves space for the owner column on wide terminals.
func rightColumnWidth(width int) int {
	if width > 60 {
		return 15
	}
	return 0
}

// buildTreePrefix builds the indentation and branch characters for a node.
func (t *TreeModel) buildTreePrefix(node *tree.Node) string {
	if node.Depth == 0 {
		return "" // Root has no prefix
	}

	treeStyle := t.theme.Renderer.NewStyle().Foreground(t.theme.Muted)

	var prefixParts []string

	// Vertical continuation lines for each ancestor level
	for cur := node.Parent; cur != nil && cur.Parent != nil; cur = cur.Parent {
		if t.hasSiblingsBelow(cur) {
			prefixParts = append([]string{"│   "}, prefixParts...)
		} else {
			prefixParts = append([]string{"    "}, prefixParts...)
		}
	}

	if t.isLastChild(node) {
		prefixParts = append(prefixParts, "└── ")
	} else {
		prefixParts = append(prefixParts, "├── ")
	}

	return treeStyle.Render(strings.Join(prefixParts, ""))
}

// hasSiblingsBelow checks if a node has siblings after it in insertion order.
func (t *TreeModel) hasSiblingsBelow(node *tree.Node) bool {
	if node.Parent == nil {
		return false
	}
	siblings := node.Parent.Children
	for i, sibling := range siblings {
		if sibling == node {
			return i < len(siblings)-1
		}
	}
	return false
}

// isLastChild checks if a node is the last child of its parent.
func (t *TreeModel) isLastChild(node *tree.Node) bool {
	if node.Parent == nil {
		return true
	}
	siblings := node.Parent.Children
	return len(siblings) > 0 && siblings[len(siblings)-1] == node
}

// expandIndicator returns the expand/collapse indicator for a node.
func (t *TreeModel) expandIndicator(node *tree.Node) string {
	if !node.HasChildren() {
		return "•" // Leaf
	}
	if t.state.IsCollapsed(node.ID) {
		return "▸" // Collapsed
	}
	return "▾" // Expanded
}
