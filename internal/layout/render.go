package layout

// TextMeasurer reports the rendered extent of a string at a font size.
type TextMeasurer interface {
	MeasureText(text string, size float64) (w, h float64)
}

// Renderer is the drawing capability the layout output is replayed onto.
type Renderer interface {
	TextMeasurer
	DrawRect(RectBlueprint)
	DrawText(TextBlueprint)
}

// FrameRenderer is implemented by renderers that need explicit frame boundaries.
type FrameRenderer interface {
	Renderer
	BeginFrame(Viewport)
	EndFrame()
}

// Primitive is one draw command produced by Layout.
type Primitive interface {
	Draw(Renderer)
}

// RectBlueprint is a filled, optionally bordered and rounded rectangle.
// Colors are 0xRRGGBB.
type RectBlueprint struct {
	Rect         Rect
	Color        uint32
	BorderColor  uint32
	BorderWidth  float64
	CornerRadius float64
	Alpha        float64
}

func (b RectBlueprint) Draw(r Renderer) { r.DrawRect(b) }

// TextBlueprint is a string whose top-left corner sits at X, Y.
type TextBlueprint struct {
	Text  string
	X, Y  float64
	Size  float64
	Color uint32
	Alpha float64
}

func (b TextBlueprint) Draw(r Renderer) { r.DrawText(b) }

// Replay draws every primitive onto r in order.
func Replay(r Renderer, prims []Primitive) {
	for _, p := range prims {
		p.Draw(r)
	}
}
