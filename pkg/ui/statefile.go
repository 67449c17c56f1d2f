package ui

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/treescope/pkg/config"
	"github.com/vanderheijden86/treescope/pkg/tree"
	"github.com/vanderheijden86/treescope/pkg/view"
)

// ViewStateFile is the persisted expand/collapse state for one dataset.
// Saved under the XDG state dir so the view survives restarts.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "data_hash": "1fa93b20c44d81e7",
//	  "collapsed": ["/A/B", "/A/E"],
//	  "selected": "/A"
//	}
//
// Design notes:
//   - Collapsed IDs that no longer exist in the rebuilt tree are dropped on
//     load instead of failing.
//   - Version field enables future schema migrations.
//   - Corrupted/missing file = start from the default view.
type ViewStateFile struct {
	Version   int      `json:"version"`
	DataHash  string   `json:"data_hash"`
	Collapsed []string `json:"collapsed"`
	Selected  string   `json:"selected,omitempty"`
}

// ViewStateVersion is the current schema version for view persistence.
const ViewStateVersion = 1

// ViewStatePath returns the state file path for a dataset. Each dataset gets
// its own file, keyed by a hash of its absolute path.
func ViewStatePath(datasetPath string) string {
	dir := config.StateDir()
	if dir == "" {
		return ""
	}
	abs, err := filepath.Abs(datasetPath)
	if err != nil {
		abs = datasetPath
	}
	sum := sha256.Sum256([]byte(abs))
	name := hex.EncodeToString(sum[:8]) + ".json"
	return filepath.Join(dir, "viewstate", name)
}

// SaveViewState persists the given view state for a dataset.
func SaveViewState(datasetPath string, t *tree.Tree, s view.State) error {
	path := ViewStatePath(datasetPath)
	if path == "" {
		return fmt.Errorf("cannot determine state directory")
	}

	collapsed := make([]string, 0, len(s.Collapsed))
	for id := range s.Collapsed {
		collapsed = append(collapsed, id)
	}
	sort.Strings(collapsed)

	file := ViewStateFile{
		Version:   ViewStateVersion,
		Collapsed: collapsed,
		Selected:  s.SelectedID,
	}
	if t != nil {
		file.DataHash = t.DataHash
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling view state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing view state: %w", err)
	}
	return nil
}

// LoadViewState restores the persisted view state for a dataset, pruned
// against the current tree. A missing or corrupted file yields a fresh state,
// never an error the caller has to act on.
func LoadViewState(datasetPath string, t *tree.Tree) view.State {
	s := view.NewState()

	path := ViewStatePath(datasetPath)
	if path == "" {
		return s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var file ViewStateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return s
	}
	if file.Version != ViewStateVersion {
		return s
	}

	for _, id := range file.Collapsed {
		s.Collapsed[id] = true
	}
	s.SelectedID = file.Selected

	if t != nil {
		s = view.Prune(s, t)
	}
	return s
}
