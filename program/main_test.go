package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keilerkonzept/key-overlay-tui/internal/capture"
	"github.com/keilerkonzept/key-overlay-tui/internal/config"
	"github.com/keilerkonzept/key-overlay-tui/internal/layout"
	"github.com/keilerkonzept/key-overlay-tui/internal/overlay"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestModel(t *testing.T, mutate func(*config.Config)) (*model, *capture.Queue, *fakeClock) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())
	engine, err := overlay.NewEngine(cfg.Props())
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	q := capture.NewQueue()
	return newModel(cfg, engine, q, clock.Now), q, clock
}

func runes(s string) tui.KeyMsg {
	return tui.KeyMsg{Type: tui.KeyRunes, Runes: []rune(s)}
}

func TestModel_TerminalKeyPressAndRelease(t *testing.T) {
	m, q, clock := newTestModel(t, nil)
	d := m.driver.Engine().Columns()[0]

	m.Update(runes("d"))
	m.Update(runes("d"))
	assert.Equal(t, 1, q.Len(), "repeats do not queue presses")

	_, cmd := m.Update(frameMsg(clock.now))
	assert.NotNil(t, cmd, "frames keep ticking")
	assert.True(t, d.Pressed())
	assert.Equal(t, uint64(1), d.Count())

	clock.Advance(time.Second)
	m.Update(frameMsg(clock.now))
	assert.False(t, d.Pressed())
	assert.Equal(t, 2, d.History().Len())
}

func TestModel_HeldKeyThroughRepeatDelayCountsOnce(t *testing.T) {
	m, _, clock := newTestModel(t, func(c *config.Config) { c.Stats.Enabled = false })
	d := m.driver.Engine().Columns()[0]

	m.Update(runes("d"))
	for i := 0; i < 15; i++ {
		clock.Advance(33 * time.Millisecond)
		m.Update(frameMsg(clock.now))
	}
	assert.True(t, d.Pressed(), "still waiting for the first auto-repeat")

	for i := 0; i < 10; i++ {
		m.Update(runes("d"))
		clock.Advance(33 * time.Millisecond)
		m.Update(frameMsg(clock.now))
	}
	clock.Advance(time.Second)
	m.Update(frameMsg(clock.now))

	assert.False(t, d.Pressed())
	assert.Equal(t, uint64(1), d.Count())
	assert.Equal(t, 2, d.History().Len())
}

func TestNewSource_ReplayTimestampLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"key":"KeyD","pressed":true,"time":"12:00:00"}`+"\n"), 0o644))

	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--replay", path, "--replay-timestamp-layout", time.TimeOnly}))
	got, err := root.Flags().GetString("replay-timestamp-layout")
	require.NoError(t, err)
	assert.Equal(t, time.TimeOnly, got)

	src, in, err := newSource(runOptions{Replay: path, ReplaySpeed: 1, ReplayTimestamp: time.TimeOnly}, nil)
	require.NoError(t, err)
	defer in.Close()
	replay, ok := src.(*capture.Replay)
	require.True(t, ok)
	assert.Equal(t, time.TimeOnly, replay.TimestampLayout)
}

func TestModel_IgnoresUnroutedKeys(t *testing.T) {
	m, q, _ := newTestModel(t, nil)
	m.Update(runes("x"))
	m.Update(tui.KeyMsg{Type: tui.KeyF5})
	assert.Zero(t, q.Len())
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	for _, msg := range []tui.KeyMsg{{Type: tui.KeyEsc}, {Type: tui.KeyCtrlC}} {
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd)
		assert.IsType(t, tui.QuitMsg{}, cmd())
	}
}

func TestModel_ResizeSetsViewport(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	assert.Equal(t, layout.Viewport{W: 420, H: 690}, m.driver.Viewport(), "window props until the terminal reports a size")

	m.Update(tui.WindowSizeMsg{Width: 100, Height: 41})
	assert.Equal(t, layout.Viewport{W: 600, H: 800}, m.driver.Viewport())

	m, _, _ = newTestModel(t, func(c *config.Config) { c.Stats.Enabled = false })
	m.Update(tui.WindowSizeMsg{Width: 100, Height: 41})
	assert.Equal(t, layout.Viewport{W: 1000, H: 800}, m.driver.Viewport())
}

func TestModel_StatsCountPresses(t *testing.T) {
	m, _, clock := newTestModel(t, nil)
	m.Update(tui.WindowSizeMsg{Width: 120, Height: 40})

	for i := 0; i < 3; i++ {
		m.Update(runes("f"))
		m.Update(frameMsg(clock.now))
		clock.Advance(time.Second)
		m.Update(frameMsg(clock.now))
	}
	require.NotEmpty(t, m.stats.items)
	assert.Equal(t, "F", m.stats.items[0].Item)
	assert.Equal(t, uint32(3), m.stats.items[0].Count)

	m.Update(tui.KeyMsg{Type: tui.KeyCtrlR})
	assert.True(t, m.stats.perSecond)

	view := m.View()
	assert.Contains(t, view, "presses/s")
	assert.Contains(t, view, "quit")
}

func TestModel_SourceDone(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	done := make(chan struct{})
	close(done)
	cmd := waitSource(done)
	require.NotNil(t, cmd)

	m.Update(cmd())
	assert.True(t, m.sourceEnd)
	assert.Nil(t, waitSource(nil))
}

func TestComputePaneWidths(t *testing.T) {
	l, r := computePaneWidths(100, 60)
	assert.Equal(t, 60, l)
	assert.Equal(t, 40, r)

	l, r = computePaneWidths(50, 60)
	assert.Equal(t, 26, l)
	assert.Equal(t, 24, r)

	l, r = computePaneWidths(1, 60)
	assert.Equal(t, 1, l)
	assert.Equal(t, 1, r)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestDefaultsCommand(t *testing.T) {
	out, err := execute(t, "defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "speed: 300")
	assert.Contains(t, out, "counter_placement: outside")

	_, err = config.Parse([]byte(out))
	assert.NoError(t, err)
}

func TestColumnsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cols.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns:\n  - keys: [KeyZ, KeyX]\n    name: left\n  - keys: [Space]\n"), 0o644))

	out, err := execute(t, "columns", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "left")
	assert.Contains(t, out, "KeyZ KeyX")
	assert.Contains(t, out, "#63ffec")
}

func TestColumnsCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns:\n  - keys: [KeyA]\n  - keys: [KeyA]\n"), 0o644))

	_, err := execute(t, "columns", "--config", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrDuplicateKey)
}

func TestRootCommand_RejectsConflictingSources(t *testing.T) {
	_, err := execute(t, "--config", "a.yaml", "--preset", "b")
	assert.Error(t, err)

	_, err = execute(t, "--replay", "x.jsonl", "--demo")
	assert.Error(t, err)

	_, err = execute(t, "--unknown-flag")
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--fps", "60", "--stats=false", "--hold", "250ms", "--repeat-delay", "400ms"}))

	cfg := config.Default()
	opts := runOptions{FPS: 60, Stats: false, Hold: 250 * time.Millisecond, RepeatDelay: 400 * time.Millisecond}
	applyFlags(root, &cfg, opts)
	assert.Equal(t, 60, cfg.Terminal.FPS)
	assert.False(t, cfg.Stats.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Terminal.Hold)
	assert.Equal(t, 400*time.Millisecond, cfg.Terminal.RepeatDelay)
	assert.True(t, cfg.Terminal.AltScreen, "unset flags keep config values")

	assert.Error(t, validateRunOptions(runOptions{ReplaySpeed: 0}))
	assert.NoError(t, validateRunOptions(runOptions{ReplaySpeed: 1}))
}
