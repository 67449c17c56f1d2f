// Package config handles loading and saving tv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/tv/config.yaml
//   - Data:    ~/.local/share/tv/ (exported snapshots)
//   - State:   ~/.local/state/tv/ (recent datasets, view state cache)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treescope/pkg/view"
)

// LayoutConfig holds the dendrogram layout preferences.
type LayoutConfig struct {
	Direction       string  `yaml:"direction,omitempty"`        // LR, RL, UD, DU
	NodeSpacing     float64 `yaml:"node_spacing,omitempty"`     // 50-200
	LevelSeparation float64 `yaml:"level_separation,omitempty"` // 100-500
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	ExpandToLevel int  `yaml:"expand_to_level,omitempty"` // initial expansion depth, 0 = fully expanded
	ShowMetadata  bool `yaml:"show_metadata,omitempty"`   // metadata side panel on start
	Headless      bool `yaml:"headless,omitempty"`        // compact header mode
}

// WatchConfig controls dataset file watching.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms,omitempty"` // quiet period before reload (default 250)
}

// ExportConfig holds snapshot export defaults.
type ExportConfig struct {
	Format string `yaml:"format,omitempty"` // svg or png
}

// Config is the top-level configuration for tv.
type Config struct {
	Recent []string     `yaml:"recent,omitempty"` // recently opened dataset paths, newest first
	Layout LayoutConfig `yaml:"layout,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
	Watch  WatchConfig  `yaml:"watch,omitempty"`
	Export ExportConfig `yaml:"export,omitempty"`
}

const maxRecent = 10

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Layout: LayoutConfig{
			Direction:       string(view.DirLR),
			NodeSpacing:     view.DefaultNodeSpacing,
			LevelSeparation: view.DefaultLevelSeparation,
		},
		UI: UIConfig{
			ExpandToLevel: 1,
			ShowMetadata:  true,
		},
		Watch: WatchConfig{
			DebounceMs: 250,
		},
		Export: ExportConfig{
			Format: "svg",
		},
	}
}

// Validate checks the loaded values against the ranges the layout engine
// accepts. Zero values are allowed so a partial config file validates.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Layout),
		validation.Field(&c.UI),
		validation.Field(&c.Watch),
		validation.Field(&c.Export),
	)
}

func (l LayoutConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Direction, validation.In(
			"", string(view.DirLR), string(view.DirRL), string(view.DirUD), string(view.DirDU),
		)),
		validation.Field(&l.NodeSpacing, validation.Min(0.0), validation.Max(200.0)),
		validation.Field(&l.LevelSeparation, validation.Min(0.0), validation.Max(500.0)),
	)
}

func (u UIConfig) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ExpandToLevel, validation.Min(0), validation.Max(32)),
	)
}

func (w WatchConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.DebounceMs, validation.Min(0), validation.Max(10000)),
	)
}

func (e ExportConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Format, validation.In("", "svg", "png")),
	)
}

// Direction returns the configured layout direction as a view.Direction.
func (c Config) Direction() view.Direction {
	d := view.Direction(c.Layout.Direction)
	if !d.Valid() {
		return view.DirLR
	}
	return d
}

// LayoutOptions converts the layout section into view projection options.
func (c Config) LayoutOptions() view.Options {
	opts := view.Options{
		Direction:       c.Direction(),
		NodeSpacing:     c.Layout.NodeSpacing,
		LevelSeparation: c.Layout.LevelSeparation,
	}
	if opts.NodeSpacing < 50 {
		opts.NodeSpacing = view.DefaultNodeSpacing
	}
	if opts.LevelSeparation < 100 {
		opts.LevelSeparation = view.DefaultLevelSeparation
	}
	return opts
}

// ConfigDir returns the XDG config directory for tv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tv")
}

// DataDir returns the XDG data directory for tv.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "tv")
}

// StateDir returns the XDG state directory for tv.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "tv")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	// Expand ~ in recent dataset paths
	for i := range cfg.Recent {
		cfg.Recent[i] = expandHome(cfg.Recent[i])
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// AddRecent records a dataset path at the front of the recent list,
// dropping duplicates and trimming to the cap.
func (c *Config) AddRecent(path string) {
	path = expandHome(path)
	out := make([]string, 0, len(c.Recent)+1)
	out = append(out, path)
	for _, p := range c.Recent {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > maxRecent {
		out = out[:maxRecent]
	}
	c.Recent = out
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
