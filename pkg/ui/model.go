package ui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treescope/pkg/analysis"
	"github.com/vanderheijden86/treescope/pkg/config"
	"github.com/vanderheijden86/treescope/pkg/debug"
	"github.com/vanderheijden86/treescope/pkg/export"
	"github.com/vanderheijden86/treescope/pkg/tree"
	"github.com/vanderheijden86/treescope/pkg/version"
	"github.com/vanderheijden86/treescope/pkg/view"
	"github.com/vanderheijden86/treescope/pkg/watcher"
)

// FileChangedMsg is sent when the dataset file changes on disk.
type FileChangedMsg struct{}

// ReloadedMsg carries the result of rebuilding the tree after a file change.
type ReloadedMsg struct {
	Tree *tree.Tree
	Err  error
}

// ExportedMsg carries the result of a snapshot export.
type ExportedMsg struct {
	Path string
	Err  error
}

// WatchFileCmd returns a command that waits for file changes and sends
// FileChangedMsg.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadFunc rebuilds the tree from the dataset. Injected so the model does
// not depend on how the dataset is read.
type ReloadFunc func() (*tree.Tree, error)

// Model is the top-level Bubble Tea model for the tree viewer.
type Model struct {
	theme Theme
	tree  TreeModel

	datasetPath string
	cfg         config.Config
	stats       analysis.TreeStats

	watcher *watcher.Watcher
	reload  ReloadFunc

	showMetadata bool
	showHelp     bool
	statusMsg    string

	finding     bool
	findInput   textinput.Model
	findMatches []string
	findIdx     int

	width  int
	height int
}

// NewModel creates the viewer for an already-built tree. The persisted view
// state for this dataset is restored when present; otherwise the tree opens
// expanded to the configured level.
func NewModel(tr *tree.Tree, datasetPath string, cfg config.Config) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	tm := NewTreeModel(theme)
	state := LoadViewState(datasetPath, tr)
	if len(state.Collapsed) == 0 && state.SelectedID == "" && cfg.UI.ExpandToLevel > 0 {
		state = view.ExpandToLevel(state, tr, cfg.UI.ExpandToLevel)
	}
	tm.Build(tr, state)

	ti := textinput.New()
	ti.Placeholder = "folder name..."
	ti.Prompt = "/"
	ti.CharLimit = 64
	ti.Width = 30

	return Model{
		theme:        theme,
		tree:         tm,
		datasetPath:  datasetPath,
		cfg:          cfg,
		stats:        analysis.Compute(tr),
		showMetadata: cfg.UI.ShowMetadata,
		findInput:    ti,
		width:        80,
		height:       24,
	}
}

// WithWatcher attaches a running dataset watcher and the reload function to
// invoke when it fires.
func (m Model) WithWatcher(w *watcher.Watcher, reload ReloadFunc) Model {
	m.watcher = w
	m.reload = reload
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tree.SetSize(m.treeWidth(), m.bodyHeight())
		return m, nil

	case FileChangedMsg:
		if m.reload == nil {
			return m, nil
		}
		debug.Log("dataset changed, reloading %s", m.datasetPath)
		reload := m.reload
		cmds := []tea.Cmd{
			func() tea.Msg {
				tr, err := reload()
				return ReloadedMsg{Tree: tr, Err: err}
			},
		}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case ReloadedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Reload failed: %v", msg.Err)
			return m, nil
		}
		m.tree.Build(msg.Tree, m.tree.State())
		m.stats = analysis.Compute(msg.Tree)
		m.statusMsg = fmt.Sprintf("Reloaded %d folders", m.stats.Nodes)
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			m.statusMsg = fmt.Sprintf("Exported %s", msg.Path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	if m.finding {
		switch msg.String() {
		case "esc":
			m.finding = false
			m.findInput.Blur()
			return m, nil
		case "enter":
			m.finding = false
			m.findInput.Blur()
			m.runFind(m.findInput.Value())
			return m, nil
		}
		var cmd tea.Cmd
		m.findInput, cmd = m.findInput.Update(msg)
		return m, cmd
	}

	m.statusMsg = ""

	switch msg.String() {
	case "q", "ctrl+c":
		m.persistState()
		return m, tea.Quit

	case "j", "down":
		m.tree.MoveDown()
	case "k", "up":
		m.tree.MoveUp()
	case "h", "left":
		m.tree.CollapseOrJumpToParent()
	case "l", "right":
		m.tree.ExpandOrMoveToChild()
	case "p":
		m.tree.JumpToParent()
	case "g", "home":
		m.tree.JumpToTop()
	case "G", "end":
		m.tree.JumpToBottom()
	case "ctrl+d", "pgdown":
		m.tree.PageDown()
	case "ctrl+u", "pgup":
		m.tree.PageUp()

	case "enter", " ":
		m.tree.ToggleExpand()
	case "E":
		m.tree.ExpandAll()
		m.statusMsg = "Expanded all"
	case "C":
		m.tree.CollapseAll()
		m.statusMsg = "Collapsed all"
	case "X":
		m.tree.ExpandSubtree()
	case "Z":
		m.tree.CollapseSubtree()
	case "o":
		m.tree.ExpandChildren()
	case "R":
		m.tree.Build(m.tree.Tree(), view.NewState())
		m.statusMsg = "View reset"
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		level := int(msg.String()[0] - '0')
		m.tree.ExpandToLevel(level)
		m.statusMsg = fmt.Sprintf("Expanded to depth %d", level)

	case "m":
		m.showMetadata = !m.showMetadata
		m.tree.SetSize(m.treeWidth(), m.bodyHeight())
	case "y":
		if n := m.tree.SelectedNode(); n != nil {
			if err := clipboard.WriteAll(n.Path()); err != nil {
				m.statusMsg = "Clipboard unavailable"
			} else {
				m.statusMsg = fmt.Sprintf("Copied %s", n.Path())
			}
		}
	case "e":
		return m, m.exportSnapshotCmd()
	case "/":
		m.finding = true
		m.findInput.SetValue("")
		return m, m.findInput.Focus()
	case "n":
		m.gotoMatch(m.findIdx + 1)
	case "N":
		m.gotoMatch(m.findIdx - 1)
	case "?":
		m.showHelp = true
	}

	return m, nil
}

// runFind collects folders whose name contains the query (case-insensitive,
// pre-order) and jumps to the first match.
func (m *Model) runFind(query string) {
	query = strings.ToLower(strings.TrimSpace(query))
	m.findMatches = nil
	m.findIdx = 0
	if query == "" {
		return
	}

	tr := m.tree.Tree()
	tr.Walk(func(n *tree.Node) bool {
		if n.ID != tree.RootID && strings.Contains(strings.ToLower(n.Name), query) {
			m.findMatches = append(m.findMatches, n.ID)
		}
		return true
	})

	if len(m.findMatches) == 0 {
		m.statusMsg = fmt.Sprintf("No match for %q", query)
		return
	}
	m.gotoMatch(0)
}

// gotoMatch reveals match i, wrapping around the match list.
func (m *Model) gotoMatch(i int) {
	if len(m.findMatches) == 0 {
		return
	}
	m.findIdx = ((i % len(m.findMatches)) + len(m.findMatches)) % len(m.findMatches)
	id := m.findMatches[m.findIdx]
	m.tree.Reveal(id)
	m.statusMsg = fmt.Sprintf("Match %d/%d: %s", m.findIdx+1, len(m.findMatches), id)
}

// exportSnapshotCmd renders the current projection to an SVG next to the
// dataset.
func (m Model) exportSnapshotCmd() tea.Cmd {
	tr := m.tree.Tree()
	state := m.tree.State()
	stats := m.stats
	opts := m.cfg.LayoutOptions()
	format := m.cfg.Export.Format

	base := strings.TrimSuffix(m.datasetPath, filepath.Ext(m.datasetPath))
	if base == "" {
		base = "tree"
	}
	path := base + "-snapshot." + format

	return func() tea.Msg {
		nodes, edges, err := view.Project(tr, state, opts)
		if err != nil {
			return ExportedMsg{Err: err}
		}
		err = export.SaveSnapshot(export.SnapshotOptions{
			Path:     path,
			Format:   format,
			Title:    filepath.Base(m.datasetPath),
			Nodes:    nodes,
			Edges:    edges,
			Stats:    &stats,
			DataHash: tr.DataHash,
		})
		return ExportedMsg{Path: path, Err: err}
	}
}

// persistState saves the expand/collapse state for the next session.
func (m Model) persistState() {
	if err := SaveViewState(m.datasetPath, m.tree.Tree(), m.tree.State()); err != nil {
		debug.Log("could not persist view state: %v", err)
	}
}

// --- layout ----------------------------------------------------------------

const metadataPanelWidth = 36

func (m Model) treeWidth() int {
	if m.showMetadata && m.width > metadataPanelWidth+40 {
		return m.width - metadataPanelWidth
	}
	return m.width
}

// bodyHeight is the height available to the tree: total minus header and
// footer rows.
func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// --- view ------------------------------------------------------------------

func (m Model) View() string {
	if m.showHelp {
		return m.renderHeader() + "\n" + renderHelp(m.width-4)
	}

	body := m.tree.View()
	if m.showMetadata && m.treeWidth() < m.width {
		panel := m.renderMetadataPanel()
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}

	return m.renderHeader() + "\n" + body + m.renderFooter()
}

func (m Model) renderHeader() string {
	title := m.theme.Header.Render(fmt.Sprintf("tv %s", version.Version))
	info := m.theme.MutedText.Render(fmt.Sprintf(" %s  %s  hash %s",
		filepath.Base(m.datasetPath), m.stats.Summary(), m.shortHash()))
	return title + info
}

func (m Model) shortHash() string {
	tr := m.tree.Tree()
	if tr == nil || len(tr.DataHash) < 8 {
		return "-"
	}
	return tr.DataHash[:8]
}

func (m Model) renderFooter() string {
	if m.finding {
		return " " + m.findInput.View()
	}
	if m.statusMsg != "" {
		return m.theme.PrimaryBold.Render(" " + m.statusMsg)
	}
	hints := " enter toggle · / find · E/C expand/collapse all · m metadata · e export · ? help · q quit"
	return m.theme.MutedText.Render(hints)
}

// renderMetadataPanel renders the side panel for the selected folder.
func (m Model) renderMetadataPanel() string {
	r := m.theme.Renderer
	n := m.tree.SelectedNode()

	panelStyle := r.NewStyle().
		Width(metadataPanelWidth-2).
		Border(lipgloss.RoundedBorder(), false, false, false, true).
		BorderForeground(m.theme.Border).
		PaddingLeft(1)

	if n == nil {
		return panelStyle.Render(m.theme.MutedText.Render("nothing selected"))
	}

	var sb strings.Builder
	sb.WriteString(m.theme.PrimaryBold.Render(n.Name))
	sb.WriteString("\n")
	sb.WriteString(m.theme.MutedText.Render(n.Path()))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("%s %d\n", padRight("depth", 10), n.Depth))
	sb.WriteString(fmt.Sprintf("%s %d\n", padRight("children", 10), len(n.Children)))

	status := "leaf"
	if n.HasChildren() {
		status = "expanded"
		if m.tree.State().IsCollapsed(n.ID) {
			status = "collapsed"
		}
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", padRight("state", 10), status))

	if len(n.Metadata) > 0 {
		sb.WriteString("\n")
		keys := make([]string, 0, len(n.Metadata))
		for k := range n.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("%s %s\n",
				m.theme.SecondaryText.Render(padRight(k, 10)),
				truncateCells(n.Metadata[k], metadataPanelWidth-14, "…")))
		}
	}

	return panelStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// Statusf sets the status line. Exposed for the CLI to surface startup
// warnings inside the UI.
func (m *Model) Statusf(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
}
