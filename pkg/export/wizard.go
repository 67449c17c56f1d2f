// Interactive snapshot export wizard. Guides the user through choosing an
// output path, image format, and layout before rendering.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/treescope/pkg/config"
	"github.com/vanderheijden86/treescope/pkg/view"
)

// WizardConfig holds the choices collected by the export wizard.
type WizardConfig struct {
	OutputPath      string  `json:"output_path"`
	Format          string  `json:"format"` // "svg" or "png"
	Title           string  `json:"title,omitempty"`
	Direction       string  `json:"direction"`
	NodeSpacing     float64 `json:"node_spacing"`
	LevelSeparation float64 `json:"level_separation"`
}

// Wizard collects snapshot export options interactively.
type Wizard struct {
	config      *WizardConfig
	datasetPath string
}

// NewWizard creates an export wizard for the given dataset.
func NewWizard(datasetPath string) *Wizard {
	return &Wizard{
		config: &WizardConfig{
			Format:          "svg",
			Direction:       string(view.DirLR),
			NodeSpacing:     view.DefaultNodeSpacing,
			LevelSeparation: view.DefaultLevelSeparation,
		},
		datasetPath: datasetPath,
	}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run executes the interactive wizard flow and returns the collected config.
func (w *Wizard) Run() (*WizardConfig, error) {
	// Offer the previous run's settings first.
	if saved, err := LoadWizardConfig(); err == nil && saved != nil && saved.OutputPath != "" {
		useSaved, err := w.offerSavedConfig(saved)
		if err != nil {
			return nil, err
		}
		if useSaved {
			w.config = saved
			return w.config, nil
		}
	}

	if err := w.collectOutput(); err != nil {
		return nil, err
	}
	if err := w.collectLayout(); err != nil {
		return nil, err
	}

	if err := SaveWizardConfig(w.config); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save wizard settings: %v\n", err)
	}
	return w.config, nil
}

func (w *Wizard) offerSavedConfig(saved *WizardConfig) (bool, error) {
	fmt.Println("Found previous export settings:")
	fmt.Printf("  Output:    %s (%s)\n", saved.OutputPath, saved.Format)
	fmt.Printf("  Direction: %s, spacing %.0f/%.0f\n", saved.Direction, saved.NodeSpacing, saved.LevelSeparation)
	fmt.Println("")

	useSaved := true
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Export with these settings again?").
				Description("Select No to reconfigure").
				Value(&useSaved).
				Affirmative("Yes, reuse").
				Negative("No, reconfigure"),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	fmt.Println("")
	return useSaved, nil
}

func (w *Wizard) collectOutput() error {
	base := "tree"
	if w.datasetPath != "" {
		name := filepath.Base(w.datasetPath)
		base = name[:len(name)-len(filepath.Ext(name))]
	}
	defaultPath := "./" + base + "-snapshot.svg"
	outputPath := defaultPath
	title := base

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output file").
				Value(&outputPath).
				Placeholder(defaultPath),
			huh.NewSelect[string]().
				Title("Image format").
				Options(
					huh.NewOption("SVG (scalable, text stays selectable)", "svg"),
					huh.NewOption("PNG (raster)", "png"),
				).
				Value(&w.config.Format),
			huh.NewInput().
				Title("Snapshot title (optional)").
				Value(&title),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = defaultPath
	}
	w.config.OutputPath = outputPath
	w.config.Title = title
	fmt.Println("")
	return nil
}

func (w *Wizard) collectLayout() error {
	spacing := strconv.FormatFloat(w.config.NodeSpacing, 'f', 0, 64)
	separation := strconv.FormatFloat(w.config.LevelSeparation, 'f', 0, 64)

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Layout direction").
				Options(
					huh.NewOption("Left to right", string(view.DirLR)),
					huh.NewOption("Right to left", string(view.DirRL)),
					huh.NewOption("Top down", string(view.DirUD)),
					huh.NewOption("Bottom up", string(view.DirDU)),
				).
				Value(&w.config.Direction),
			huh.NewInput().
				Title("Node spacing (50-200)").
				Value(&spacing).
				Validate(rangeValidator(50, 200)),
			huh.NewInput().
				Title("Level separation (100-500)").
				Value(&separation).
				Validate(rangeValidator(100, 500)),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	w.config.NodeSpacing, _ = strconv.ParseFloat(spacing, 64)
	w.config.LevelSeparation, _ = strconv.ParseFloat(separation, 64)
	fmt.Println("")
	return nil
}

func rangeValidator(min, max float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if v < min || v > max {
			return fmt.Errorf("must be between %.0f and %.0f", min, max)
		}
		return nil
	}
}

// LayoutOptions converts the wizard choices into projection options.
func (c *WizardConfig) LayoutOptions() view.Options {
	d := view.Direction(c.Direction)
	if !d.Valid() {
		d = view.DirLR
	}
	return view.Options{
		Direction:       d,
		NodeSpacing:     c.NodeSpacing,
		LevelSeparation: c.LevelSeparation,
	}
}

// WizardConfigPath returns the path to the saved wizard settings file.
func WizardConfigPath() string {
	dir := config.StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "export-wizard.json")
}

// LoadWizardConfig loads the previous run's wizard settings, or nil.
func LoadWizardConfig() (*WizardConfig, error) {
	path := WizardConfigPath()
	if path == "" {
		return nil, fmt.Errorf("could not determine state path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWizardConfig persists wizard settings for future runs.
func SaveWizardConfig(cfg *WizardConfig) error {
	path := WizardConfigPath()
	if path == "" {
		return fmt.Errorf("could not determine state path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
