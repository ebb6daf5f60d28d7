package main

import (
	"fmt"
	"strings"
	"time"

	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"
	"github.com/keilerkonzept/topk/heap"

	"github.com/keilerkonzept/key-overlay-tui/internal/column"
	"github.com/keilerkonzept/key-overlay-tui/internal/config"
	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
	"github.com/keilerkonzept/key-overlay-tui/internal/stats"
)

// statsPanel shows per-column press rates over the configured window: a braille
// plot of per-tick presses, a leaderboard and the frame metrics.
type statsPanel struct {
	rate    *stats.PressRate
	board   *stats.Leaderboard
	metrics *stats.FrameMetrics

	plot           *plot.Canvas
	plotData       [][]float64
	plotLineColors []plot.Color
	perSecond      bool

	items         []heap.Item
	width, height int
}

func newStatsPanel(cfg config.StatsConfig, names []string, metrics *stats.FrameMetrics) *statsPanel {
	const (
		defaultWidth  = 40
		defaultHeight = 10
	)
	rate := stats.NewPressRate(names, stats.RateOptions{Window: cfg.Window, Tick: cfg.Tick})

	p := plot.NewCanvas(defaultWidth, defaultHeight)
	p.NumDataPoints = rate.HistoryLength()
	p.ShowAxis = false
	p.LineColors = make([]plot.Color, len(names))

	s := &statsPanel{
		rate:           rate,
		board:          stats.NewLeaderboard(cfg.FullRefresh),
		metrics:        metrics,
		plot:           &p,
		plotData:       make([][]float64, len(names)),
		plotLineColors: make([]plot.Color, len(names)),
		width:          defaultWidth,
		height:         defaultHeight,
	}
	for i := range s.plotData {
		s.plotData[i] = make([]float64, rate.HistoryLength())
	}
	s.plot.Fill(s.plotData)
	return s
}

// ObserveTransition counts aggregate presses; releases are not rated.
func (s *statsPanel) ObserveTransition(c *column.Column, tr column.Transition, _ keys.Event) {
	if tr.Pressed {
		s.rate.Observe(c.Props.Name)
	}
}

func (s *statsPanel) update(now time.Time) {
	s.rate.Advance(now)
	s.items, _ = s.board.Refresh(now, s.rate)

	var highlight, dim plot.Color
	if styles.DefaultRenderer().HasDarkBackground() {
		highlight, dim = plot.Red, plot.DimGray
	} else {
		highlight, dim = plot.Black, plot.LightGray
	}

	top := ""
	if len(s.items) > 0 && s.items[0].Count > 0 {
		top = s.items[0].Item
	}
	// The leader is drawn last so its line stays on top.
	n := 0
	for _, name := range s.rate.Names() {
		if name == top {
			continue
		}
		s.rate.Series(name, s.plotData[n], s.perSecond)
		s.plotLineColors[n] = dim
		n++
	}
	if top != "" && n < len(s.plotData) {
		s.rate.Series(top, s.plotData[n], s.perSecond)
		s.plotLineColors[n] = highlight
		n++
	}
	s.plotLineColors, s.plot.LineColors = s.plot.LineColors, s.plotLineColors
	s.plot.Fill(s.plotData[:n])
}

func (s *statsPanel) perfLines() []string {
	if !s.metrics.Enabled() {
		return nil
	}
	snap := s.metrics.Snapshot()
	return []string{
		fmt.Sprintf("fps: %.1f", snap.FPS),
		fmt.Sprintf("frame: %s (max %s)", formatMetricDuration(snap.Tick.Avg), formatMetricDuration(snap.Tick.Max)),
		fmt.Sprintf("events: %d  transitions: %d", snap.Events, snap.Transitions),
	}
}

func (s *statsPanel) resize(w, h int) {
	s.width, s.height = w, h
	// Border (2) + title (1) + one row per column + perf lines.
	plotHeight := max(1, h-3-len(s.rate.Names())-len(s.perfLines()))
	plotWidth := max(1, w-2)

	p := plot.NewCanvas(plotWidth, plotHeight)
	p.NumDataPoints = s.plot.NumDataPoints
	p.ShowAxis = s.plot.ShowAxis
	p.LineColors = s.plot.LineColors
	s.plot = &p
}

func (s *statsPanel) view() string {
	unit := "presses"
	if s.perSecond {
		unit = "presses/s"
	}
	title := borderFg.Render(fmt.Sprintf("%s per %s tick, last %s", unit, s.rate.Tick(), s.rate.Window()))

	rows := make([]string, 0, len(s.items))
	for i, it := range s.items {
		line := fmt.Sprintf("#%-2d %-8s %5d  %5.1f/s", i+1, it.Item, it.Count, s.rate.PerSecond(it.Item))
		if i == 0 && it.Count > 0 {
			line = selectedFg.Render(line)
		}
		rows = append(rows, line)
	}

	parts := []string{title, plotStyle.Render(s.plot.String())}
	if len(rows) > 0 {
		parts = append(parts, strings.Join(rows, "\n"))
	}
	if perf := s.perfLines(); len(perf) > 0 {
		parts = append(parts, borderFg.Render(strings.Join(perf, "\n")))
	}
	return styles.NewStyle().Width(s.width).Render(styles.JoinVertical(styles.Left, parts...))
}
