package main

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"

	"github.com/keilerkonzept/key-overlay-tui/internal/capture"
	"github.com/keilerkonzept/key-overlay-tui/internal/config"
	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
	"github.com/keilerkonzept/key-overlay-tui/internal/layout"
	"github.com/keilerkonzept/key-overlay-tui/internal/overlay"
	"github.com/keilerkonzept/key-overlay-tui/internal/stats"
	"github.com/keilerkonzept/key-overlay-tui/internal/termdraw"
)

var (
	borderColor = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	borderFg    = styles.NewStyle().Foreground(borderColor)
	selectedFg  = styles.NewStyle().Foreground(styles.AdaptiveColor{Light: "0", Dark: "9"})
	plotStyle   = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

// overlaySplit is the share of the screen width the overlay gets next to the stats panel.
const overlaySplit = 60

type frameMsg time.Time

func doFrameTick(fps int) tui.Cmd {
	return tui.Every(time.Second/time.Duration(fps), func(t time.Time) tui.Msg {
		return frameMsg(t)
	})
}

type sourceDoneMsg struct{}

func waitSource(done <-chan struct{}) tui.Cmd {
	if done == nil {
		return nil
	}
	return func() tui.Msg {
		<-done
		return sourceDoneMsg{}
	}
}

type model struct {
	cfg   config.Config
	clock func() time.Time

	width, height int

	canvas   *termdraw.Canvas
	driver   *overlay.Driver
	terminal *capture.Terminal
	metrics  *stats.FrameMetrics
	stats    *statsPanel

	help       help.Model
	sourceDone <-chan struct{}
	sourceEnd  bool
}

func newModel(cfg config.Config, engine *overlay.Engine, q *capture.Queue, clock func() time.Time) *model {
	canvas := termdraw.New(float64(cfg.Terminal.CellWidth), float64(cfg.Terminal.CellHeight))
	vp := layout.Viewport{W: float64(cfg.Window.Width), H: float64(cfg.Window.Height)}

	driver := overlay.NewDriver(q, engine, canvas, cfg.Layout(), vp)
	driver.Clock = clock

	metrics := stats.NewFrameMetrics(cfg.Stats.Samples)
	metrics.SetEnabled(cfg.Stats.Enabled)
	driver.Metrics = metrics

	m := &model{
		cfg:      cfg,
		clock:    clock,
		canvas:   canvas,
		driver:   driver,
		terminal: capture.NewTerminal(q, cfg.Terminal.Hold, cfg.Terminal.RepeatDelay),
		metrics:  metrics,
		help:     help.New(),
	}
	if cfg.Stats.Enabled {
		names := make([]string, 0, len(engine.Columns()))
		for _, c := range engine.Columns() {
			names = append(names, c.Props.Name)
		}
		m.stats = newStatsPanel(cfg.Stats, names, metrics)
		driver.Observer = m.stats
	}
	return m
}

func (m *model) Init() tui.Cmd {
	return tui.Batch(doFrameTick(m.cfg.Terminal.FPS), waitSource(m.sourceDone))
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		now := m.clock()
		m.terminal.Expire(now)
		m.driver.Tick()
		if m.stats != nil {
			m.stats.update(now)
		}
		return m, doFrameTick(m.cfg.Terminal.FPS)
	case sourceDoneMsg:
		m.sourceEnd = true
		return m, nil
	case tui.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tui.KeyMsg:
		switch {
		case key.Matches(msg, keyMap.Quit):
			return m, tui.Quit
		case key.Matches(msg, keyMap.Rate) && m.stats != nil:
			m.stats.perSecond = !m.stats.perSecond
			return m, nil
		}
		if k, ok := keys.FromTerminal(msg.String()); ok {
			if _, routed := m.driver.Engine().Owner(k); routed {
				m.terminal.Key(k, m.clock())
			}
		} else {
			log.Printf("[DEBUG] unmapped key %q", msg.String())
		}
	}
	return m, nil
}

func (m *model) overlaySize() (cols, rows int) {
	helpLines := 1
	rows = max(1, m.height-helpLines)
	cols = max(1, m.width)
	if m.stats != nil {
		cols, _ = computePaneWidths(m.width, overlaySplit)
	}
	return cols, rows
}

func (m *model) resize(w, h int) {
	m.width, m.height = w, h
	cols, rows := m.overlaySize()
	m.driver.Resize(m.canvas.Viewport(cols, rows))
	if m.stats != nil {
		_, right := computePaneWidths(m.width, overlaySplit)
		m.stats.resize(right, rows)
	}
}

func (m *model) View() string {
	view := m.canvas.String()
	if m.stats != nil {
		view = styles.JoinHorizontal(styles.Top, view, m.stats.view())
	}
	footer := m.help.View(keyMap)
	if m.sourceEnd {
		footer = borderFg.Render("input finished") + "  " + footer
	}
	return styles.JoinVertical(styles.Left, view, footer)
}

func computePaneWidths(totalWidth int, splitPercent int) (left, right int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left = totalWidth * splitPercent / 100
	left = max(1, min(left, totalWidth-1))
	right = totalWidth - left

	const minPane = 24
	if totalWidth >= minPane*2 {
		if right < minPane {
			right = minPane
			left = totalWidth - right
		}
		if left < minPane {
			left = minPane
			right = totalWidth - left
		}
	}
	return max(1, left), max(1, right)
}

func formatMetricDuration(d time.Duration) string {
	if d <= 0 {
		return "0.000ms"
	}
	return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
}

type keyBindings struct {
	Rate key.Binding
	Quit key.Binding
}

func (k keyBindings) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Rate}
}

func (k keyBindings) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit, k.Rate}}
}

// Plain keys belong to the overlay, so bindings use esc and control chords.
var keyMap = keyBindings{
	Rate: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "count/rate"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc/ctrl+c", "quit"),
	),
}
