// Package stats keeps sliding-window press statistics per column and the frame
// driver's runtime metrics.
package stats

import (
	"time"

	"github.com/keilerkonzept/topk"
	"github.com/keilerkonzept/topk/heap"
	"github.com/keilerkonzept/topk/sliding"
)

// RateOptions configure the sliding press-rate sketch.
type RateOptions struct {
	Window time.Duration
	Tick   time.Duration
	Width  int
	Depth  int
	Decay  float64
}

func (o RateOptions) withDefaults() RateOptions {
	if o.Tick <= 0 {
		o.Tick = 250 * time.Millisecond
	}
	if o.Window < o.Tick {
		o.Window = 10 * time.Second
	}
	if o.Width <= 0 {
		o.Width = 256
	}
	if o.Depth <= 0 {
		o.Depth = 3
	}
	if o.Decay <= 0 || o.Decay > 1 {
		o.Decay = 0.9
	}
	return o
}

// PressRate counts aggregate presses per column over a sliding time window.
type PressRate struct {
	opts   RateOptions
	names  []string
	sketch *sliding.Sketch
	last   time.Time
}

// NewPressRate tracks the given column names. Every column fits in the top-K,
// so counts are exact up to sketch collisions.
func NewPressRate(names []string, opts RateOptions) *PressRate {
	opts = opts.withDefaults()
	k := max(1, len(names))
	sketch := sliding.New(k,
		int(opts.Window/opts.Tick),
		sliding.WithWidth(opts.Width),
		sliding.WithDepth(opts.Depth),
		sliding.WithDecay(float32(opts.Decay)),
	)
	return &PressRate{opts: opts, names: names, sketch: sketch}
}

// Observe counts one press of the named column.
func (p *PressRate) Observe(name string) {
	p.sketch.Incr(name)
}

// Advance moves the window forward to now, one sketch tick per elapsed Tick.
func (p *PressRate) Advance(now time.Time) {
	t := now.Truncate(p.opts.Tick)
	if p.last.IsZero() {
		p.last = t
		return
	}
	if ticks := int(t.Sub(p.last) / p.opts.Tick); ticks > 0 {
		p.sketch.Ticks(ticks)
		p.last = t
	}
}

// Count returns the presses of name within the window.
func (p *PressRate) Count(name string) uint32 {
	return p.sketch.Count(name)
}

// PerSecond returns the windowed press rate of name.
func (p *PressRate) PerSecond(name string) float64 {
	return float64(p.sketch.Count(name)) / p.opts.Window.Seconds()
}

// Sorted returns the tracked columns by windowed count, highest first.
func (p *PressRate) Sorted() []heap.Item {
	return p.sketch.SortedSlice()
}

// HistoryLength is the number of tick buckets a series spans.
func (p *PressRate) HistoryLength() int {
	return p.sketch.BucketHistoryLength
}

// Tick is the bucket resolution of the window.
func (p *PressRate) Tick() time.Duration { return p.opts.Tick }

// Window is the span counts are kept for.
func (p *PressRate) Window() time.Duration { return p.opts.Window }

// Names returns the tracked column names in column order.
func (p *PressRate) Names() []string { return p.names }

// Series fills series with per-tick press counts of name, oldest first, so the
// newest tick lands at the right edge of a plot. perSecond scales counts to
// presses per second.
func (p *PressRate) Series(name string, series []float64, perSecond bool) {
	scale := 1.0
	if perSecond {
		scale = 1 / p.opts.Tick.Seconds()
	}
	fp := uint32(0)
	found := false
	for _, it := range p.sketch.SortedSlice() {
		if it.Item == name {
			fp, found = it.Fingerprint, true
			break
		}
	}

	var rows []int
	if found {
		for k := 0; k < p.sketch.Depth; k++ {
			idx := topk.BucketIndex(name, k, p.sketch.Width)
			b := p.sketch.Buckets[idx]
			if b.Fingerprint == fp && len(b.Counts) > 0 {
				rows = append(rows, idx)
			}
		}
	}
	if len(rows) == 0 {
		clear(series)
		return
	}

	for j := range series {
		var c uint32
		for _, idx := range rows {
			b := p.sketch.Buckets[idx]
			c = max(c, b.Counts[(int(b.First)+j)%len(b.Counts)])
		}
		series[len(series)-1-j] = float64(c) * scale
	}
}
