package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/keilerkonzept/key-overlay-tui/internal/capture"
	"github.com/keilerkonzept/key-overlay-tui/internal/config"
	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
	"github.com/keilerkonzept/key-overlay-tui/internal/overlay"
)

type runOptions struct {
	ConfigPath string
	Preset     string

	// input
	Replay          string
	ReplaySpeed     float64
	ReplayMaxSleep  time.Duration
	ReplayTimestamp string
	Demo            bool
	Hold            time.Duration
	RepeatDelay     time.Duration

	// render
	FPS       int
	Stats     bool
	AltScreen bool

	LogFile string
	Debug   bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.Default()
	opts := runOptions{
		ReplaySpeed: 1.0,
		FPS:         defaults.Terminal.FPS,
		Stats:       defaults.Stats.Enabled,
		AltScreen:   defaults.Terminal.AltScreen,
		Hold:        defaults.Terminal.Hold,
		RepeatDelay: defaults.Terminal.RepeatDelay,
	}

	root := &cobra.Command{
		Use:   "key-overlay",
		Short: "Key press overlay for the terminal",
		Long: `key-overlay draws one column per configured key group and scrolls a bar
for every press, so rhythm and hold times stay visible.

Without --config or --preset the default config in the user config directory
is used and created on first run. Keys come from the terminal, a JSONL
recording (--replay) or a demo pattern (--demo).`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "Config file path")
	pf.StringVarP(&opts.Preset, "preset", "p", "", "Preset name in the config directory")

	f := root.Flags()
	f.StringVar(&opts.Replay, "replay", "", "Replay a JSONL key recording from this file (- for stdin)")
	f.Float64Var(&opts.ReplaySpeed, "replay-speed", opts.ReplaySpeed, "Replay speed factor (1=real-time, 2=2x faster, 0.5=2x slower)")
	f.DurationVar(&opts.ReplayMaxSleep, "replay-max-sleep", 0, "Cap per-record replay sleep (0 = no cap)")
	f.StringVar(&opts.ReplayTimestamp, "replay-timestamp-layout", time.RFC3339Nano, "Go time layout of string timestamps in the recording")
	f.BoolVar(&opts.Demo, "demo", false, "Play a synthetic pattern over the configured keys")
	f.DurationVar(&opts.Hold, "hold", opts.Hold, "Treat a terminal key as released after this long without repeats")
	f.DurationVar(&opts.RepeatDelay, "repeat-delay", opts.RepeatDelay, "Treat a terminal key as released after this long if it never repeats")
	f.IntVar(&opts.FPS, "fps", opts.FPS, "Frame rate")
	f.BoolVar(&opts.Stats, "stats", opts.Stats, "Show the press-rate panel and frame stats")
	f.BoolVar(&opts.AltScreen, "alt-screen", opts.AltScreen, "Use the terminal alternate screen buffer")
	f.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file")
	f.BoolVar(&opts.Debug, "debug", false, "Log debug output")
	root.MarkFlagsMutuallyExclusive("config", "preset")
	root.MarkFlagsMutuallyExclusive("replay", "demo")

	root.AddCommand(newColumnsCmd(&opts), newDefaultsCmd())
	return root
}

func loadConfig(opts runOptions) (config.Config, error) {
	dir, err := config.Dir()
	if err != nil {
		return config.Config{}, err
	}
	path, create, err := config.Resolve(opts.ConfigPath, opts.Preset, dir)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path, create)
}

// applyFlags lets explicitly set flags override the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts runOptions) {
	f := cmd.Flags()
	if f.Changed("fps") {
		cfg.Terminal.FPS = opts.FPS
	}
	if f.Changed("hold") {
		cfg.Terminal.Hold = opts.Hold
	}
	if f.Changed("repeat-delay") {
		cfg.Terminal.RepeatDelay = opts.RepeatDelay
	}
	if f.Changed("stats") {
		cfg.Stats.Enabled = opts.Stats
	}
	if f.Changed("alt-screen") {
		cfg.Terminal.AltScreen = opts.AltScreen
	}
	if f.Changed("log-file") {
		cfg.Logging.File = opts.LogFile
	}
	if f.Changed("debug") {
		cfg.Logging.Debug = opts.Debug
	}
}

func validateRunOptions(opts runOptions) error {
	if opts.ReplaySpeed <= 0 {
		return fmt.Errorf("--replay-speed must be > 0")
	}
	if opts.ReplayMaxSleep < 0 {
		return fmt.Errorf("--replay-max-sleep must be >= 0")
	}
	return nil
}

func setupLogging(cfg config.LoggingConfig) (io.Closer, error) {
	if cfg.File == "" {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}
	f, err := tui.LogToFile(cfg.File, "key-overlay ")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if cfg.Debug {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}
	return f, nil
}

// newSource picks the capture source for the run, or nil when only terminal
// keys drive the overlay.
func newSource(opts runOptions, cols []keys.PhysicalKey) (capture.Source, io.Closer, error) {
	switch {
	case opts.Replay != "":
		in, err := capture.OpenInput(opts.Replay)
		if err != nil {
			return nil, nil, err
		}
		return &capture.Replay{
			Reader:          in,
			Speed:           opts.ReplaySpeed,
			MaxSleep:        opts.ReplayMaxSleep,
			TimestampLayout: opts.ReplayTimestamp,
		}, in, nil
	case opts.Demo:
		return &capture.Synthetic{Keys: cols}, nil, nil
	}
	return nil, nil, nil
}

func run(ctx context.Context, cfg config.Config, opts runOptions) error {
	if err := validateRunOptions(opts); err != nil {
		return err
	}

	logs, err := setupLogging(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logs.Close() }()
	log.Printf("[INFO] config %s, %d columns", cfg.Source, len(cfg.Columns))

	engine, err := overlay.NewEngine(cfg.Props())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := capture.NewQueue()
	var demoKeys []keys.PhysicalKey
	for _, c := range engine.Columns() {
		demoKeys = append(demoKeys, c.Props.Keys[0])
	}
	src, in, err := newSource(opts, demoKeys)
	if err != nil {
		return err
	}
	if in != nil {
		defer func() { _ = in.Close() }()
	}
	var done <-chan struct{}
	if src != nil {
		done = capture.Start(ctx, src, q, engine.Keys())
	}

	m := newModel(cfg, engine, q, time.Now)
	m.sourceDone = done

	progOpts := []tui.ProgramOption{tui.WithContext(ctx), tui.WithInputTTY()}
	if cfg.Terminal.AltScreen {
		progOpts = append(progOpts, tui.WithAltScreen())
	}
	if _, err := tui.NewProgram(m, progOpts...).Run(); err != nil && !errors.Is(err, tui.ErrProgramKilled) {
		return err
	}
	log.Printf("[INFO] exit after %d events", q.Pushed())
	return nil
}
