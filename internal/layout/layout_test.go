package layout

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keilerkonzept/key-overlay-tui/internal/column"
	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
)

type fixedMeasurer struct{}

func (fixedMeasurer) MeasureText(text string, size float64) (float64, float64) {
	return 10 * float64(utf8.RuneCountInString(text)), size
}

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func ago(sec float64) time.Time {
	return now.Add(-time.Duration(sec * float64(time.Second)))
}

func defaultOptions() Options {
	return Options{
		Speed:            100,
		Direction:        Up,
		DisplayKeys:      true,
		KeyPlacement:     Inside,
		DisplayCounters:  true,
		CounterPlacement: Outside,
		KeySpacing:       10,
		DefaultKeyWidth:  100,
		KeyHeight:        100,
	}
}

var viewport = Viewport{W: 420, H: 690}

func newColumns(t *testing.T, names ...string) []*column.Column {
	t.Helper()
	cols := make([]*column.Column, 0, len(names))
	for _, name := range names {
		c, err := column.New(column.Props{
			Keys:        []keys.PhysicalKey{keys.PhysicalKey("Key" + name)},
			Color:       0x63ffec,
			HoverColor:  0x555555,
			BorderColor: 0xeeeeee,
			Alpha:       0.5,
		})
		require.NoError(t, err)
		cols = append(cols, c)
	}
	return cols
}

func press(c *column.Column, pressed bool, t time.Time) {
	c.Apply(keys.Event{Key: c.Props.Keys[0], Pressed: pressed, Time: t})
}

func split(prims []Primitive) (rects []RectBlueprint, texts []TextBlueprint) {
	for _, p := range prims {
		switch v := p.(type) {
		case RectBlueprint:
			rects = append(rects, v)
		case TextBlueprint:
			texts = append(texts, v)
		}
	}
	return rects, texts
}

func TestLayout_KeyRowCentered(t *testing.T) {
	cols := newColumns(t, "D", "F", "J", "K")
	prims := Layout(nil, cols, viewport, defaultOptions(), now, fixedMeasurer{})
	rects, texts := split(prims)

	require.Len(t, rects, 4)
	require.Len(t, texts, 8)

	wantX := []float64{2.5, 107.5, 212.5, 317.5}
	for i, r := range rects {
		assert.InDelta(t, wantX[i], r.Rect.X, 1e-9)
		assert.InDelta(t, 560, r.Rect.Y, 1e-9)
		assert.Equal(t, 100.0, r.Rect.W)
		assert.Equal(t, 100.0, r.Rect.H)
		assert.Equal(t, IdleColor, r.Color)
		assert.Equal(t, uint32(0xeeeeee), r.BorderColor)
		assert.Equal(t, KeyBorderWidth, r.BorderWidth)
	}
}

func TestLayout_DownAnchorsTop(t *testing.T) {
	opts := defaultOptions()
	opts.Direction = Down
	cols := newColumns(t, "D")
	rects, _ := split(Layout(nil, cols, viewport, opts, now, fixedMeasurer{}))
	require.Len(t, rects, 1)
	assert.InDelta(t, 30, rects[0].Rect.Y, 1e-9)
	assert.InDelta(t, 160, rects[0].Rect.X, 1e-9)
}

func TestLayout_ColumnWidthAndPressedFill(t *testing.T) {
	cols := newColumns(t, "D")
	cols[0].Props.Width = 60
	press(cols[0], true, ago(0.5))

	rects, _ := split(Layout(nil, cols, viewport, defaultOptions(), now, fixedMeasurer{}))
	require.Len(t, rects, 2)
	assert.Equal(t, 60.0, rects[0].Rect.W)
	assert.InDelta(t, 180, rects[0].Rect.X, 1e-9)
	assert.Equal(t, uint32(0x555555), rects[0].Color)
	assert.Equal(t, 60.0, rects[1].Rect.W)
}

func TestLayout_OrderingAndFlags(t *testing.T) {
	cols := newColumns(t, "D", "F")
	press(cols[0], true, ago(2))
	press(cols[0], false, ago(1))

	prims := Layout(nil, cols, viewport, defaultOptions(), now, fixedMeasurer{})
	require.Len(t, prims, 7)
	assert.IsType(t, RectBlueprint{}, prims[0])
	assert.Equal(t, "D", prims[1].(TextBlueprint).Text)
	assert.Equal(t, "1", prims[2].(TextBlueprint).Text)
	assert.IsType(t, RectBlueprint{}, prims[3])
	assert.IsType(t, RectBlueprint{}, prims[4])
	assert.Equal(t, "F", prims[5].(TextBlueprint).Text)
	assert.Equal(t, "0", prims[6].(TextBlueprint).Text)

	opts := defaultOptions()
	opts.DisplayKeys = false
	_, texts := split(Layout(nil, cols, viewport, opts, now, fixedMeasurer{}))
	assert.Equal(t, []string{"1", "0"}, []string{texts[0].Text, texts[1].Text})

	opts.DisplayCounters = false
	_, texts = split(Layout(nil, cols, viewport, opts, now, fixedMeasurer{}))
	assert.Empty(t, texts)
}

func TestLayout_ReusesDst(t *testing.T) {
	cols := newColumns(t, "D")
	buf := make([]Primitive, 0, 16)
	out := Layout(buf, cols, viewport, defaultOptions(), now, fixedMeasurer{})
	assert.Len(t, out, 3)
	assert.Equal(t, 16, cap(out))
}

func TestLayout_HistoryBarsUp(t *testing.T) {
	cols := newColumns(t, "D")
	c := cols[0]
	press(c, true, ago(2))
	press(c, false, ago(1))
	press(c, true, ago(0.5))

	rects, _ := split(Layout(nil, cols, viewport, defaultOptions(), now, fixedMeasurer{}))
	require.Len(t, rects, 3)

	open := rects[1]
	assert.InDelta(t, 510, open.Rect.Y, 1e-9)
	assert.InDelta(t, 50, open.Rect.H, 1e-9)
	assert.Equal(t, uint32(0x63ffec), open.Color)
	assert.Equal(t, 0.5, open.Alpha)
	assert.Zero(t, open.BorderWidth)

	closed := rects[2]
	assert.InDelta(t, 360, closed.Rect.Y, 1e-9)
	assert.InDelta(t, 100, closed.Rect.H, 1e-9)
	assert.InDelta(t, 160, closed.Rect.X, 1e-9)
}

func TestLayout_HistoryBarsDown(t *testing.T) {
	opts := defaultOptions()
	opts.Direction = Down
	cols := newColumns(t, "D")
	press(cols[0], true, ago(2))
	press(cols[0], false, ago(1))

	rects, _ := split(Layout(nil, cols, viewport, opts, now, fixedMeasurer{}))
	require.Len(t, rects, 2)
	assert.InDelta(t, 230, rects[1].Rect.Y, 1e-9)
	assert.InDelta(t, 100, rects[1].Rect.H, 1e-9)
}

func TestLayout_BarsClampedToViewport(t *testing.T) {
	cols := newColumns(t, "D")
	press(cols[0], true, ago(10))
	press(cols[0], false, ago(1))

	rects, _ := split(Layout(nil, cols, viewport, defaultOptions(), now, fixedMeasurer{}))
	require.Len(t, rects, 2)
	assert.InDelta(t, 0, rects[1].Rect.Y, 1e-9)
	assert.InDelta(t, 460, rects[1].Rect.H, 1e-9)
}

func TestLayout_FutureTimestampsClampToKeyEdge(t *testing.T) {
	cols := newColumns(t, "D")
	press(cols[0], true, ago(1))
	press(cols[0], false, now.Add(time.Second))

	rects, _ := split(Layout(nil, cols, viewport, defaultOptions(), now, fixedMeasurer{}))
	require.Len(t, rects, 2)
	assert.InDelta(t, 460, rects[1].Rect.Y, 1e-9)
	assert.InDelta(t, 100, rects[1].Rect.H, 1e-9)
}

func TestLayout_OffscreenShortCircuit(t *testing.T) {
	cols := newColumns(t, "D")
	c := cols[0]
	press(c, true, ago(9))
	press(c, false, ago(8))
	// arrives out of order: would be partially visible, but sits behind an
	// invisible interval in the history
	press(c, true, ago(7))
	press(c, false, ago(5))
	press(c, true, ago(6.5))
	press(c, false, ago(6))
	press(c, true, ago(1))
	press(c, false, ago(0.5))

	rects, _ := split(Layout(nil, cols, viewport, defaultOptions(), now, fixedMeasurer{}))
	require.Len(t, rects, 2)
	assert.InDelta(t, 460, rects[1].Rect.Y, 1e-9)
	assert.InDelta(t, 50, rects[1].Rect.H, 1e-9)
}

func TestLayout_InsideInside(t *testing.T) {
	opts := defaultOptions()
	opts.CounterPlacement = Inside
	cols := newColumns(t, "D")

	_, texts := split(Layout(nil, cols, viewport, opts, now, fixedMeasurer{}))
	require.Len(t, texts, 2)
	label, counter := texts[0], texts[1]

	// box centre is (210, 610)
	assert.Equal(t, BigFontSize, label.Size)
	assert.InDelta(t, 205, label.X, 1e-9)
	assert.InDelta(t, 610-CenterTextGap-BigFontSize, label.Y, 1e-9)
	assert.Equal(t, SmallFontSize, counter.Size)
	assert.InDelta(t, 205, counter.X, 1e-9)
	assert.InDelta(t, 610+CenterTextGap, counter.Y, 1e-9)
}

func TestLayout_InsideOutside(t *testing.T) {
	cols := newColumns(t, "D")
	_, texts := split(Layout(nil, cols, viewport, defaultOptions(), now, fixedMeasurer{}))
	label, counter := texts[0], texts[1]

	assert.Equal(t, BigFontSize, label.Size)
	assert.InDelta(t, 205, label.X, 1e-9)
	assert.InDelta(t, 610-BigFontSize/2, label.Y, 1e-9)

	assert.Equal(t, SmallFontSize, counter.Size)
	assert.InDelta(t, 205, counter.X, 1e-9)
	assert.InDelta(t, 660+OutsideTextGap, counter.Y, 1e-9)
}

func TestLayout_OutsideInsideDown(t *testing.T) {
	opts := defaultOptions()
	opts.Direction = Down
	opts.KeyPlacement = Outside
	opts.CounterPlacement = Inside
	cols := newColumns(t, "D")

	_, texts := split(Layout(nil, cols, viewport, opts, now, fixedMeasurer{}))
	label, counter := texts[0], texts[1]

	assert.Equal(t, SmallFontSize, label.Size)
	assert.InDelta(t, 30-OutsideTextGap-SmallFontSize, label.Y, 1e-9)
	assert.Equal(t, BigFontSize, counter.Size)
	assert.InDelta(t, 80-BigFontSize/2, counter.Y, 1e-9)
}

func TestLayout_OutsideOutsideMirrors(t *testing.T) {
	opts := defaultOptions()
	opts.KeyPlacement = Outside
	opts.CounterPlacement = Outside
	cols := newColumns(t, "D")

	_, up := split(Layout(nil, cols, viewport, opts, now, fixedMeasurer{}))
	opts.Direction = Down
	_, down := split(Layout(nil, cols, viewport, opts, now, fixedMeasurer{}))
	require.Len(t, up, 2)
	require.Len(t, down, 2)

	const upNear, downNear = 660.0, 30.0
	for i := range up {
		assert.Equal(t, up[i].X, down[i].X)
		assert.Equal(t, SmallFontSize, up[i].Size)
		gapUp := up[i].Y - upNear
		gapDown := downNear - (down[i].Y + down[i].Size)
		assert.InDelta(t, gapUp, gapDown, 1e-9)
		assert.InDelta(t, OutsideTextGap, gapUp, 1e-9)
	}

	// label hugs the left border, counter the right one
	assert.InDelta(t, 160+KeyBorderWidth, up[0].X, 1e-9)
	assert.InDelta(t, 260-KeyBorderWidth-10, up[1].X, 1e-9)
}

func TestLayout_NoColumns(t *testing.T) {
	assert.Empty(t, Layout(nil, nil, viewport, defaultOptions(), now, fixedMeasurer{}))
}
