// Package config loads and validates the overlay configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/keilerkonzept/key-overlay-tui/internal/column"
	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
	"github.com/keilerkonzept/key-overlay-tui/internal/layout"
)

const (
	// AppDir is the directory under the user config dir holding presets.
	AppDir = "key-overlay"
	// DefaultFileName is the config used when neither a path nor a preset is given.
	DefaultFileName = "config.yaml"
)

var (
	ErrNoMembers          = errors.New("column has no keys")
	ErrDuplicateKey       = errors.New("key assigned to more than one column")
	ErrUnknownKey         = errors.New("unknown key")
	ErrConflictingSources = errors.New("config path and preset are mutually exclusive")
)

// Config is the on-disk configuration.
type Config struct {
	Speed            uint32           `yaml:"speed"`
	Direction        layout.Direction `yaml:"direction"`
	DisplayKeys      bool             `yaml:"display_keys"`
	KeyPlacement     layout.Placement `yaml:"key_placement"`
	DisplayCounters  bool             `yaml:"display_counters"`
	CounterPlacement layout.Placement `yaml:"counter_placement"`
	KeySpacing       uint32           `yaml:"key_spacing"`
	DefaultKeyWidth  uint32           `yaml:"default_key_width"`
	KeyHeight        uint32           `yaml:"key_height"`

	Window   WindowConfig   `yaml:"window"`
	Terminal TerminalConfig `yaml:"terminal"`
	Stats    StatsConfig    `yaml:"stats"`
	Logging  LoggingConfig  `yaml:"logging"`

	Columns []ColumnConfig `yaml:"columns"`

	// Source is the file the config was read from, or "<defaults>".
	Source string `yaml:"-"`
}

// WindowConfig is the initial viewport in pixels, used until the terminal reports its size.
type WindowConfig struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// TerminalConfig maps pixels onto terminal cells and tunes key emulation.
type TerminalConfig struct {
	CellWidth   uint32        `yaml:"cell_width"`
	CellHeight  uint32        `yaml:"cell_height"`
	Hold        time.Duration `yaml:"hold"`
	RepeatDelay time.Duration `yaml:"repeat_delay"`
	FPS         int           `yaml:"fps"`
	AltScreen   bool          `yaml:"alt_screen"`
}

// StatsConfig configures the press-rate panel.
type StatsConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Window      time.Duration `yaml:"window"`
	Tick        time.Duration `yaml:"tick"`
	FullRefresh time.Duration `yaml:"full_refresh"`
	Samples     int           `yaml:"samples"`
}

// LoggingConfig selects where diagnostics go. An empty File discards them.
type LoggingConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// ColumnConfig describes one key column.
type ColumnConfig struct {
	Name        string   `yaml:"name,omitempty"`
	Keys        []string `yaml:"keys"`
	Width       uint32   `yaml:"width,omitempty"`
	Color       Color    `yaml:"color"`
	HoverColor  Color    `yaml:"hover_color"`
	BorderColor Color    `yaml:"border_color"`
	Alpha       float64  `yaml:"alpha"`
}

// Color is 0xRRGGBB. YAML accepts integers (0x63ffec) and "#63ffec" strings.
type Color uint32

func (c Color) MarshalYAML() (any, error) {
	return fmt.Sprintf("#%06x", uint32(c)), nil
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a scalar", node.Line)
	}
	v := strings.TrimSpace(node.Value)
	base := 0
	if strings.HasPrefix(v, "#") {
		v, base = v[1:], 16
	}
	n, err := strconv.ParseUint(v, base, 32)
	if err != nil || n > 0xffffff {
		return fmt.Errorf("line %d: invalid color %q", node.Line, node.Value)
	}
	*c = Color(n)
	return nil
}

// DefaultColumn returns a column with the default colors for the given keys.
// Its width is left at 0, so the box follows default_key_width.
func DefaultColumn(keyNames ...string) ColumnConfig {
	return ColumnConfig{
		Keys:        keyNames,
		Color:       0x63ffec,
		HoverColor:  0x555555,
		BorderColor: 0xeeeeee,
		Alpha:       0.5,
	}
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		Speed:            300,
		Direction:        layout.Up,
		DisplayKeys:      true,
		KeyPlacement:     layout.Inside,
		DisplayCounters:  true,
		CounterPlacement: layout.Outside,
		KeySpacing:       10,
		DefaultKeyWidth:  100,
		KeyHeight:        100,
		Window: WindowConfig{
			Width:  420,
			Height: 690,
		},
		Terminal: TerminalConfig{
			CellWidth:   10,
			CellHeight:  20,
			Hold:        180 * time.Millisecond,
			RepeatDelay: 600 * time.Millisecond,
			FPS:         30,
			AltScreen:   true,
		},
		Stats: StatsConfig{
			Enabled:     true,
			Window:      10 * time.Second,
			Tick:        250 * time.Millisecond,
			FullRefresh: 2 * time.Second,
			Samples:     256,
		},
		Columns: []ColumnConfig{
			DefaultColumn("KeyD"),
			DefaultColumn("KeyF"),
			DefaultColumn("KeyJ"),
			DefaultColumn("KeyK"),
		},
		Source: "<defaults>",
	}
}

// Parse decodes YAML on top of the defaults and validates the result. Columns
// given in the document replace the default columns; omitted column fields
// take the default column values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	cfg.Columns = nil

	var raw struct {
		Columns []yaml.Node `yaml:"columns"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if raw.Columns == nil {
		cfg.Columns = Default().Columns
	} else {
		cfg.Columns = make([]ColumnConfig, len(raw.Columns))
		for i := range raw.Columns {
			col := DefaultColumn()
			if err := raw.Columns[i].Decode(&col); err != nil {
				return Config{}, fmt.Errorf("parse config: columns[%d]: %w", i, err)
			}
			cfg.Columns[i] = col
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot be built from.
func (c Config) Validate() error {
	if c.Speed == 0 {
		return errors.New("speed must be positive")
	}
	if c.DefaultKeyWidth == 0 || c.KeyHeight == 0 {
		return errors.New("default_key_width and key_height must be positive")
	}
	if len(c.Columns) == 0 {
		return errors.New("at least one column is required")
	}
	if c.Terminal.CellWidth == 0 || c.Terminal.CellHeight == 0 {
		return errors.New("terminal.cell_width and terminal.cell_height must be positive")
	}
	if c.Terminal.Hold < 0 || c.Terminal.RepeatDelay < 0 {
		return errors.New("terminal.hold and terminal.repeat_delay must not be negative")
	}
	if c.Terminal.FPS < 1 {
		return errors.New("terminal.fps must be >= 1")
	}
	if c.Stats.Enabled && (c.Stats.Tick <= 0 || c.Stats.Window < c.Stats.Tick) {
		return errors.New("stats.window must be >= stats.tick > 0")
	}

	owner := make(map[keys.PhysicalKey]int)
	for i, col := range c.Columns {
		if len(col.Keys) == 0 {
			return fmt.Errorf("columns[%d]: %w", i, ErrNoMembers)
		}
		if col.Alpha < 0 || col.Alpha > 1 {
			return fmt.Errorf("columns[%d]: alpha must be in [0,1]", i)
		}
		for _, name := range col.Keys {
			k, err := keys.Parse(name)
			if err != nil {
				return fmt.Errorf("columns[%d]: %w %q", i, ErrUnknownKey, name)
			}
			if prev, ok := owner[k]; ok {
				return fmt.Errorf("columns[%d]: %w: %s already in columns[%d]", i, ErrDuplicateKey, k, prev)
			}
			owner[k] = i
		}
	}
	return nil
}

// Props converts the validated columns into column properties.
func (c Config) Props() []column.Props {
	props := make([]column.Props, 0, len(c.Columns))
	for _, col := range c.Columns {
		ks := make([]keys.PhysicalKey, 0, len(col.Keys))
		for _, name := range col.Keys {
			if k, err := keys.Parse(name); err == nil {
				ks = append(ks, k)
			}
		}
		width := float64(col.Width)
		if width == 0 {
			width = float64(c.DefaultKeyWidth)
		}
		props = append(props, column.Props{
			Name:        col.Name,
			Keys:        ks,
			Width:       width,
			Color:       uint32(col.Color),
			HoverColor:  uint32(col.HoverColor),
			BorderColor: uint32(col.BorderColor),
			Alpha:       col.Alpha,
		})
	}
	return props
}

// Layout returns the layout options of c.
func (c Config) Layout() layout.Options {
	return layout.Options{
		Speed:            float64(c.Speed),
		Direction:        c.Direction,
		DisplayKeys:      c.DisplayKeys,
		KeyPlacement:     c.KeyPlacement,
		DisplayCounters:  c.DisplayCounters,
		CounterPlacement: c.CounterPlacement,
		KeySpacing:       float64(c.KeySpacing),
		DefaultKeyWidth:  float64(c.DefaultKeyWidth),
		KeyHeight:        float64(c.KeyHeight),
	}
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Dir returns the directory presets and the default config live in.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := homedir.Dir()
		if herr != nil {
			return "", fmt.Errorf("locate config dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppDir), nil
}

// Resolve picks the config file: an explicit path, a named preset in dir, or
// the default file in dir. The boolean reports whether the default was chosen,
// in which case a missing file is created.
func Resolve(path, preset, dir string) (string, bool, error) {
	path, preset = strings.TrimSpace(path), strings.TrimSpace(preset)
	switch {
	case path != "" && preset != "":
		return "", false, ErrConflictingSources
	case path != "":
		expanded, err := homedir.Expand(path)
		if err != nil {
			return "", false, fmt.Errorf("expand config path: %w", err)
		}
		return expanded, false, nil
	case preset != "":
		name := preset
		if filepath.Ext(name) == "" {
			name += ".yaml"
		}
		return filepath.Join(dir, name), false, nil
	default:
		return filepath.Join(dir, DefaultFileName), true, nil
	}
}

// Load reads the config at path. When createDefault is set and the file does
// not exist, the defaults are written there and returned.
func Load(path string, createDefault bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		if !createDefault {
			return Config{}, fmt.Errorf("config file %q not found", path)
		}
		cfg := Default()
		if err := write(path, cfg); err != nil {
			return Config{}, err
		}
		cfg.Source = path
		return cfg, nil
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
