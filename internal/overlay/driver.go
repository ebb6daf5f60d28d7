package overlay

import (
	"time"

	"github.com/keilerkonzept/key-overlay-tui/internal/capture"
	"github.com/keilerkonzept/key-overlay-tui/internal/column"
	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
	"github.com/keilerkonzept/key-overlay-tui/internal/layout"
	"github.com/keilerkonzept/key-overlay-tui/internal/stats"
)

// TransitionObserver is told about every aggregate press or release.
type TransitionObserver interface {
	ObserveTransition(c *column.Column, tr column.Transition, ev keys.Event)
}

// ObserverFunc adapts a function to TransitionObserver.
type ObserverFunc func(c *column.Column, tr column.Transition, ev keys.Event)

func (f ObserverFunc) ObserveTransition(c *column.Column, tr column.Transition, ev keys.Event) {
	f(c, tr, ev)
}

// Driver runs one frame per Tick: drain, apply, snapshot now, lay out, render.
type Driver struct {
	queue    *capture.Queue
	engine   *Engine
	renderer layout.Renderer
	opts     layout.Options
	viewport layout.Viewport

	// Clock defaults to time.Now.
	Clock    func() time.Time
	Observer TransitionObserver
	Metrics  *stats.FrameMetrics

	events []keys.Event
	prims  []layout.Primitive
}

func NewDriver(q *capture.Queue, e *Engine, r layout.Renderer, opts layout.Options, vp layout.Viewport) *Driver {
	return &Driver{
		queue:    q,
		engine:   e,
		renderer: r,
		opts:     opts,
		viewport: vp,
		Clock:    time.Now,
	}
}

// Resize sets the viewport used from the next tick on.
func (d *Driver) Resize(vp layout.Viewport) { d.viewport = vp }

func (d *Driver) Viewport() layout.Viewport { return d.viewport }

func (d *Driver) Engine() *Engine { return d.engine }

// Tick drains every event queued so far, applies them in arrival order, then
// lays out and renders the frame at a single instant. Events pushed while the
// frame is being built are left for the next tick.
func (d *Driver) Tick() {
	start := d.Clock()

	d.events = d.queue.Drain(d.events[:0])
	drained := d.Clock().Sub(start)
	for _, ev := range d.events {
		c, tr := d.engine.Apply(ev)
		if c == nil || !tr.Changed {
			continue
		}
		if d.Observer != nil {
			d.Observer.ObserveTransition(c, tr, ev)
		}
		if d.Metrics != nil {
			d.Metrics.ObserveTransition()
		}
	}

	now := d.Clock()
	d.prims = layout.Layout(d.prims[:0], d.engine.Columns(), d.viewport, d.opts, now, d.renderer)

	fr, framed := d.renderer.(layout.FrameRenderer)
	if framed {
		fr.BeginFrame(d.viewport)
	}
	layout.Replay(d.renderer, d.prims)
	if framed {
		fr.EndFrame()
	}

	if d.Metrics != nil {
		d.Metrics.ObserveTick(now, len(d.events), drained, d.Clock().Sub(start))
	}
}

// Frame returns the primitives of the last tick. The slice is reused by the
// next tick.
func (d *Driver) Frame() []layout.Primitive { return d.prims }
