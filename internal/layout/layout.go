// Package layout turns column state and the current instant into draw
// primitives: key boxes, their label and counter texts, and the scrolling
// history bars.
package layout

import (
	"strconv"
	"time"

	"github.com/keilerkonzept/key-overlay-tui/internal/column"
)

// axis captures the scroll direction as one sign. out points from the key box
// towards the viewport edge it is anchored to; history grows the other way.
type axis struct {
	out   float64
	nearY float64 // anchor Y of the box edge facing the viewport edge
	textY float64 // anchor Y of text placed beyond the near edge
}

func axisFor(d Direction) axis {
	out := 1.0
	if d == Down {
		out = -1
	}
	return axis{
		out:   out,
		nearY: (1 + out) / 2,
		textY: (1 - out) / 2,
	}
}

// Layout appends the primitives for one frame to dst and returns it. Per column
// the key box comes first, then label and counter, then history bars newest first.
func Layout(dst []Primitive, cols []*column.Column, vp Viewport, opts Options, now time.Time, m TextMeasurer) []Primitive {
	ax := axisFor(opts.Direction)
	n := float64(len(cols))
	stride := opts.DefaultKeyWidth + opts.KeySpacing/2
	keyY := ax.nearY*vp.H - ax.out*KeyMargin

	for i, c := range cols {
		w := c.Props.Width
		if w <= 0 {
			w = opts.DefaultKeyWidth
		}
		xOffset := (float64(i) + 0.5 - n/2) * stride
		box := Box{
			Pos:    Vec2{vp.W/2 + xOffset, keyY},
			Size:   Vec2{w, opts.KeyHeight},
			Origin: Anchor{0.5, ax.nearY},
		}

		fill := IdleColor
		if c.Pressed() {
			fill = c.Props.HoverColor
		}
		dst = append(dst, RectBlueprint{
			Rect:         box.Rect(),
			Color:        fill,
			BorderColor:  c.Props.BorderColor,
			BorderWidth:  KeyBorderWidth,
			CornerRadius: KeyCornerRadius,
			Alpha:        1,
		})

		label, counter := placeTexts(box, c, opts, ax, m)
		if opts.DisplayKeys {
			dst = append(dst, label)
		}
		if opts.DisplayCounters {
			dst = append(dst, counter)
		}

		dst = appendBars(dst, c, box, vp, opts.Speed, ax, now)
	}
	return dst
}

func placeTexts(box Box, c *column.Column, opts Options, ax axis, m TextMeasurer) (label, counter TextBlueprint) {
	label = TextBlueprint{Text: c.Props.Name, Color: TextColor, Alpha: 1}
	counter = TextBlueprint{Text: strconv.FormatUint(c.Count(), 10), Color: TextColor, Alpha: 1}

	measured := func(t *TextBlueprint, size float64) Vec2 {
		t.Size = size
		w, h := m.MeasureText(t.Text, size)
		return Vec2{w, h}
	}
	centered := func(t *TextBlueprint, size float64) Box {
		return Box{Pos: box.Center(), Size: measured(t, size), Origin: CC}
	}
	// beyond the near edge; anchorX picks the corner, inset pulls it back in
	outside := func(t *TextBlueprint, size, anchorX, inset float64) Box {
		return Box{
			Pos:    box.At(Anchor{anchorX, ax.nearY}).Add(Vec2{inset, ax.out * OutsideTextGap}),
			Size:   measured(t, size),
			Origin: Anchor{anchorX, ax.textY},
		}
	}

	var lb, cb Box
	switch {
	case opts.KeyPlacement == Inside && opts.CounterPlacement == Inside:
		lb = Box{Pos: box.Center().Sub(Vec2{0, CenterTextGap}), Size: measured(&label, BigFontSize), Origin: BC}
		cb = Box{Pos: box.Center().Add(Vec2{0, CenterTextGap}), Size: measured(&counter, SmallFontSize), Origin: TC}
	case opts.KeyPlacement == Inside:
		lb = centered(&label, BigFontSize)
		cb = outside(&counter, SmallFontSize, 0.5, 0)
	case opts.CounterPlacement == Inside:
		lb = outside(&label, SmallFontSize, 0.5, 0)
		cb = centered(&counter, BigFontSize)
	default:
		lb = outside(&label, SmallFontSize, 0, KeyBorderWidth)
		cb = outside(&counter, SmallFontSize, 1, -KeyBorderWidth)
	}

	tl := lb.TopLeft()
	label.X, label.Y = tl.X, tl.Y
	tl = cb.TopLeft()
	counter.X, counter.Y = tl.X, tl.Y
	return label, counter
}

func appendBars(dst []Primitive, c *column.Column, box Box, vp Viewport, speed float64, ax axis, now time.Time) []Primitive {
	base := box.At(Anchor{0, 1 - ax.nearY})
	extent := base.Y
	if ax.out < 0 {
		extent = vp.H - base.Y
	}
	if extent <= 0 {
		return dst
	}

	it := c.Intervals(now)
	for {
		iv, ok := it.Next()
		if !ok {
			break
		}
		near := now.Sub(iv.End).Seconds() * speed
		if near >= extent {
			// everything older is further out
			break
		}
		far := now.Sub(iv.Start).Seconds() * speed
		near = clamp(near, 0, extent)
		far = clamp(far, 0, extent)
		h := far - near
		if h <= 0 {
			continue
		}

		y := base.Y + near
		if ax.out > 0 {
			y = base.Y - far
		}
		dst = append(dst, RectBlueprint{
			Rect:  Rect{X: base.X, Y: y, W: box.Size.X, H: h},
			Color: c.Props.Color,
			Alpha: c.Props.Alpha,
		})
	}
	return dst
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
