package layout

// Vec2 is a point or size in pixels. Y grows downwards.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Anchor is a point inside a box in fractions of its size: {0,0} is the
// top-left corner, {1,1} the bottom-right one.
type Anchor Vec2

var (
	TC = Anchor{0.5, 0}
	CC = Anchor{0.5, 0.5}
	BC = Anchor{0.5, 1}
)

// Box is a rectangle positioned by one of its anchors.
type Box struct {
	Pos    Vec2
	Size   Vec2
	Origin Anchor
}

func (b Box) TopLeft() Vec2 {
	return Vec2{b.Pos.X - b.Size.X*b.Origin.X, b.Pos.Y - b.Size.Y*b.Origin.Y}
}

func (b Box) Center() Vec2 {
	return b.At(CC)
}

// At returns the absolute position of anchor a on the box.
func (b Box) At(a Anchor) Vec2 {
	tl := b.TopLeft()
	return Vec2{tl.X + b.Size.X*a.X, tl.Y + b.Size.Y*a.Y}
}

func (b Box) Rect() Rect {
	tl := b.TopLeft()
	return Rect{X: tl.X, Y: tl.Y, W: b.Size.X, H: b.Size.Y}
}

// Rect is an axis-aligned rectangle given by its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) Right() float64  { return r.X + r.W }

// Viewport is the drawable area in pixels.
type Viewport struct {
	W, H float64
}
