package stats

import (
	"slices"
	"sync/atomic"
	"time"
)

// DurationStats summarises the most recent samples of a timing.
type DurationStats struct {
	Last time.Duration
	Max  time.Duration
	Avg  time.Duration
	N    int
}

// sampleWindow keeps the last len(samples) durations and a running sum, so
// the average needs no pass over the samples.
type sampleWindow struct {
	samples []time.Duration
	next    int
	full    bool
	sum     time.Duration
}

func newSampleWindow(size int) *sampleWindow {
	return &sampleWindow{samples: make([]time.Duration, max(size, 1))}
}

func (w *sampleWindow) add(d time.Duration) {
	w.sum += d - w.samples[w.next]
	w.samples[w.next] = d
	w.next++
	if w.next == len(w.samples) {
		w.next, w.full = 0, true
	}
}

func (w *sampleWindow) filled() []time.Duration {
	if w.full {
		return w.samples
	}
	return w.samples[:w.next]
}

func (w *sampleWindow) stats() DurationStats {
	held := w.filled()
	if len(held) == 0 {
		return DurationStats{}
	}
	newest := (w.next + len(w.samples) - 1) % len(w.samples)
	return DurationStats{
		Last: w.samples[newest],
		Max:  slices.Max(held),
		Avg:  w.sum / time.Duration(len(held)),
		N:    len(held),
	}
}

// FrameMetrics tracks per-tick cost and event throughput of the frame driver.
type FrameMetrics struct {
	enabled atomic.Bool

	frames      atomic.Uint64
	events      atomic.Uint64
	transitions atomic.Uint64
	firstNs     atomic.Int64
	lastNs      atomic.Int64

	tick  *sampleWindow
	drain *sampleWindow
}

func NewFrameMetrics(window int) *FrameMetrics {
	m := &FrameMetrics{
		tick:  newSampleWindow(window),
		drain: newSampleWindow(window),
	}
	m.enabled.Store(true)
	return m
}

func (m *FrameMetrics) SetEnabled(v bool) { m.enabled.Store(v) }
func (m *FrameMetrics) Enabled() bool     { return m.enabled.Load() }

// ObserveTick records one driver tick: how many events were drained, how long
// draining and the whole tick took.
func (m *FrameMetrics) ObserveTick(now time.Time, events int, drain, total time.Duration) {
	if !m.Enabled() {
		return
	}
	nowNs := now.UnixNano()
	m.firstNs.CompareAndSwap(0, nowNs)
	m.lastNs.Store(nowNs)
	m.frames.Add(1)
	m.events.Add(uint64(events))
	m.drain.add(drain)
	m.tick.add(total)
}

// ObserveTransition counts one aggregate press or release.
func (m *FrameMetrics) ObserveTransition() {
	if !m.Enabled() {
		return
	}
	m.transitions.Add(1)
}

// Snapshot is a point-in-time copy of FrameMetrics.
type Snapshot struct {
	Frames      uint64
	Events      uint64
	Transitions uint64
	FPS         float64
	Tick        DurationStats
	Drain       DurationStats
}

func (m *FrameMetrics) Snapshot() Snapshot {
	if !m.Enabled() {
		return Snapshot{}
	}
	s := Snapshot{
		Frames:      m.frames.Load(),
		Events:      m.events.Load(),
		Transitions: m.transitions.Load(),
		Tick:        m.tick.stats(),
		Drain:       m.drain.stats(),
	}
	first, last := m.firstNs.Load(), m.lastNs.Load()
	if first != 0 && last > first && s.Frames > 1 {
		s.FPS = float64(s.Frames-1) / time.Duration(last-first).Seconds()
	}
	return s
}
