// Command tv is a terminal viewer for folder trees derived from path
// datasets (CSV, JSONL, or SQLite exports of file share scans).
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/treescope/internal/datasource"
	"github.com/vanderheijden86/treescope/pkg/analysis"
	"github.com/vanderheijden86/treescope/pkg/config"
	"github.com/vanderheijden86/treescope/pkg/debug"
	"github.com/vanderheijden86/treescope/pkg/export"
	"github.com/vanderheijden86/treescope/pkg/loader"
	"github.com/vanderheijden86/treescope/pkg/tree"
	"github.com/vanderheijden86/treescope/pkg/ui"
	"github.com/vanderheijden86/treescope/pkg/version"
	"github.com/vanderheijden86/treescope/pkg/view"
	"github.com/vanderheijden86/treescope/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	exportPath := flag.String("export", "", "Render a snapshot to the given file instead of starting the TUI")
	format := flag.String("format", "", "Snapshot format: svg or png (default: inferred from --export path)")
	direction := flag.String("direction", "", "Layout direction: LR, RL, UD, or DU (default: from config)")
	nodeSpacing := flag.Float64("node-spacing", 0, "Distance between sibling nodes, 50-200 (default: from config)")
	levelSep := flag.Float64("level-separation", 0, "Distance between depth levels, 100-500 (default: from config)")
	title := flag.String("title", "", "Snapshot title (default: dataset file name)")
	wizard := flag.Bool("wizard", false, "Interactive snapshot export")
	watch := flag.Bool("watch", false, "Reload the tree when the dataset file changes")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: tv [options] <dataset>")
		fmt.Println("\nA terminal viewer for folder trees built from path datasets.")
		fmt.Println("Supported inputs: .csv, .tsv, .jsonl, .ndjson, SQLite databases.")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("tv %s\n", version.Version)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tv [options] <dataset>")
		os.Exit(2)
	}
	datasetPath := flag.Arg(0)

	appCfg, cfgErr := config.Load()
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", cfgErr)
		appCfg = config.DefaultConfig()
	}

	start := time.Now()
	tr, err := loadTree(datasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		os.Exit(1)
	}
	debug.LogTiming("load+build", time.Since(start))

	if tr.NodeCount() <= 1 {
		fmt.Fprintln(os.Stderr, "The dataset produced an empty tree. Nothing to show.")
		os.Exit(1)
	}

	appCfg.AddRecent(datasetPath)
	if err := config.Save(appCfg); err != nil {
		debug.Log("could not save config: %v", err)
	}

	// Layout flags override the config for this run only.
	if *direction != "" {
		if !view.Direction(*direction).Valid() {
			fmt.Fprintf(os.Stderr, "Invalid direction %q (want LR, RL, UD, or DU)\n", *direction)
			os.Exit(2)
		}
		appCfg.Layout.Direction = *direction
	}
	if *nodeSpacing > 0 {
		appCfg.Layout.NodeSpacing = *nodeSpacing
	}
	if *levelSep > 0 {
		appCfg.Layout.LevelSeparation = *levelSep
	}

	if *wizard {
		if err := runWizard(datasetPath, tr); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *exportPath != "" {
		if err := exportSnapshot(datasetPath, tr, *exportPath, *format, *title, appCfg.LayoutOptions()); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %s\n", *exportPath)
		os.Exit(0)
	}

	m := ui.NewModel(tr, datasetPath, appCfg)

	if *watch {
		w, err := watcher.New(datasetPath,
			watcher.WithDebounce(time.Duration(appCfg.Watch.DebounceMs)*time.Millisecond),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot watch %s: %v\n", datasetPath, err)
		} else if err := w.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot watch %s: %v\n", datasetPath, err)
		} else {
			defer w.Stop()
			m = m.WithWatcher(w, func() (*tree.Tree, error) {
				return loadTree(datasetPath)
			})
		}
	}

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running tree viewer: %v\n", err)
		os.Exit(1)
	}
}

// loadTree reads the dataset and builds the folder tree.
func loadTree(path string) (*tree.Tree, error) {
	rows, err := datasource.Load(path, loader.ParseOptions{})
	if err != nil {
		return nil, err
	}
	return tree.BuildRows(rows), nil
}

// projectTree runs the fully-expanded projection used for static exports.
func projectTree(tr *tree.Tree, opts view.Options) ([]view.VisibleNode, []view.Edge, error) {
	return view.Project(tr, view.NewState(), opts)
}

func exportSnapshot(datasetPath string, tr *tree.Tree, outPath, format, title string, opts view.Options) error {
	nodes, edges, err := projectTree(tr, opts)
	if err != nil {
		return err
	}
	if title == "" {
		title = filepath.Base(datasetPath)
	}
	stats := analysis.Compute(tr)
	return export.SaveSnapshot(export.SnapshotOptions{
		Path:     outPath,
		Format:   format,
		Title:    title,
		Nodes:    nodes,
		Edges:    edges,
		Stats:    &stats,
		DataHash: tr.DataHash,
	})
}

func runWizard(datasetPath string, tr *tree.Tree) error {
	wcfg, err := export.NewWizard(datasetPath).Run()
	if err != nil {
		return err
	}
	return exportSnapshot(datasetPath, tr, wcfg.OutputPath, wcfg.Format, wcfg.Title, wcfg.LayoutOptions())
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set TV_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TV_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	return err
}
