// Package termdraw rasterises layout primitives onto a grid of terminal cells.
//
// Layout works in pixels; a Canvas maps them onto cells of CellW x CellH pixels.
// Rectangles fill cells, text is written one rune per cell column.
package termdraw

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/keilerkonzept/key-overlay-tui/internal/layout"
)

// Cell is one terminal cell. Rune 0 marks the trailing half of a wide rune.
type Cell struct {
	Rune rune
	FG   uint32
	BG   uint32
	Bold bool
}

// Canvas implements layout.FrameRenderer.
type Canvas struct {
	CellW, CellH float64
	Background   uint32

	cols, rows int
	cells      []Cell
	out        string
}

var _ layout.FrameRenderer = (*Canvas)(nil)

func New(cellW, cellH float64) *Canvas {
	return &Canvas{CellW: max(1, cellW), CellH: max(1, cellH)}
}

// Viewport returns the pixel viewport covered by a terminal of cols x rows cells.
func (c *Canvas) Viewport(cols, rows int) layout.Viewport {
	return layout.Viewport{W: float64(cols) * c.CellW, H: float64(rows) * c.CellH}
}

// Size returns the grid size of the current frame.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

func (c *Canvas) MeasureText(text string, size float64) (w, h float64) {
	return float64(runewidth.StringWidth(text)) * c.CellW, c.CellH
}

// BeginFrame clears the grid and sizes it to vp.
func (c *Canvas) BeginFrame(vp layout.Viewport) {
	c.cols = max(0, int(vp.W/c.CellW))
	c.rows = max(0, int(vp.H/c.CellH))
	n := c.cols * c.rows
	if cap(c.cells) < n {
		c.cells = make([]Cell, n)
	}
	c.cells = c.cells[:n]
	for i := range c.cells {
		c.cells[i] = Cell{Rune: ' ', FG: layout.TextColor, BG: c.Background}
	}
}

// cellSpan converts a pixel span to a half-open cell range, keeping at least
// one cell for any positive span.
func cellSpan(pos, size, cell float64, limit int) (lo, hi int) {
	lo = int(math.Round(pos / cell))
	hi = int(math.Round((pos + size) / cell))
	if hi <= lo && size > 0 {
		hi = lo + 1
	}
	return max(lo, 0), min(hi, limit)
}

// DrawRect fills the cells covered by b, blending b.Color over the existing
// background at b.Alpha. Border cells take the border color. Corner radii are
// below cell resolution and are ignored.
func (c *Canvas) DrawRect(b layout.RectBlueprint) {
	x0, x1 := cellSpan(b.Rect.X, b.Rect.W, c.CellW, c.cols)
	y0, y1 := cellSpan(b.Rect.Y, b.Rect.H, c.CellH, c.rows)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	bx, by := 0, 0
	if b.BorderWidth > 0 {
		bx = max(1, int(math.Round(b.BorderWidth/c.CellW)))
		by = max(1, int(math.Round(b.BorderWidth/c.CellH)))
	}
	full0, full1 := int(math.Round(b.Rect.X/c.CellW)), int(math.Round(b.Rect.Right()/c.CellW))
	fullY0, fullY1 := int(math.Round(b.Rect.Y/c.CellH)), int(math.Round(b.Rect.Bottom()/c.CellH))

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			cell := &c.cells[y*c.cols+x]
			color := b.Color
			if bx > 0 && (x < full0+bx || x >= full1-bx || y < fullY0+by || y >= fullY1-by) {
				color = b.BorderColor
			}
			cell.BG = blend(cell.BG, color, b.Alpha)
		}
	}
}

// DrawText writes b.Text starting at the cell containing its top-left corner.
// Sizes at or above layout.BigFontSize are drawn bold.
func (c *Canvas) DrawText(b layout.TextBlueprint) {
	row := int(math.Round(b.Y / c.CellH))
	if row < 0 || row >= c.rows {
		return
	}
	x := int(math.Round(b.X / c.CellW))
	for _, r := range b.Text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x >= 0 && x+w <= c.cols {
			cell := &c.cells[row*c.cols+x]
			cell.Rune = r
			cell.FG = blend(cell.BG, b.Color, b.Alpha)
			cell.Bold = b.Size >= layout.BigFontSize
			for i := 1; i < w; i++ {
				c.cells[row*c.cols+x+i] = Cell{BG: cell.BG}
			}
		}
		x += w
	}
}

// EndFrame renders the grid into styled lines.
func (c *Canvas) EndFrame() {
	var sb strings.Builder
	var run strings.Builder
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		line := c.cells[y*c.cols : (y+1)*c.cols]
		for i := 0; i < len(line); {
			style := line[i]
			run.Reset()
			j := i
			for ; j < len(line) && sameStyle(line[j], style); j++ {
				if line[j].Rune != 0 {
					run.WriteRune(line[j].Rune)
				}
			}
			sb.WriteString(cellStyle(style).Render(run.String()))
			i = j
		}
	}
	c.out = sb.String()
}

// String returns the last rendered frame.
func (c *Canvas) String() string { return c.out }

// At returns the cell at col, row of the current frame.
func (c *Canvas) At(col, row int) Cell { return c.cells[row*c.cols+col] }

// Text returns the runes of row without styling.
func (c *Canvas) Text(row int) string {
	var sb strings.Builder
	for _, cell := range c.cells[row*c.cols : (row+1)*c.cols] {
		if cell.Rune != 0 {
			sb.WriteRune(cell.Rune)
		}
	}
	return sb.String()
}

func sameStyle(a, b Cell) bool {
	if a.Rune == 0 {
		return a.BG == b.BG
	}
	return a.BG == b.BG && (a.FG == b.FG || a.Rune == ' ' && b.Rune == ' ') && a.Bold == b.Bold
}

func cellStyle(c Cell) lipgloss.Style {
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hex(c.FG))).
		Background(lipgloss.Color(hex(c.BG)))
	if c.Bold {
		s = s.Bold(true)
	}
	return s
}

func rgb(v uint32) colorful.Color {
	return colorful.Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
}

func hex(v uint32) string { return rgb(v).Hex() }

// blend draws over on top of under at the given opacity.
func blend(under, over uint32, alpha float64) uint32 {
	switch {
	case alpha >= 1:
		return over & 0xffffff
	case alpha <= 0:
		return under
	}
	r, g, b := rgb(under).BlendRgb(rgb(over), alpha).Clamped().RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
