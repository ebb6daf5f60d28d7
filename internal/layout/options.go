package layout

import (
	"fmt"
	"strings"
)

// Direction selects the viewport edge the key row sits on. With Up the keys
// are at the bottom and history scrolls upwards.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	if d != Up && d != Down {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "up":
		*d = Up
	case "down":
		*d = Down
	default:
		return fmt.Errorf("invalid direction %q (want up or down)", string(b))
	}
	return nil
}

// Placement puts a label or counter inside or outside its key box.
type Placement int

const (
	Inside Placement = iota
	Outside
)

func (p Placement) String() string {
	switch p {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

func (p Placement) MarshalText() ([]byte, error) {
	if p != Inside && p != Outside {
		return nil, fmt.Errorf("invalid placement %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Placement) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "inside":
		*p = Inside
	case "outside":
		*p = Outside
	default:
		return fmt.Errorf("invalid placement %q (want inside or outside)", string(b))
	}
	return nil
}

// Options are the layout-relevant configuration values.
type Options struct {
	Speed            float64 // px per second
	Direction        Direction
	DisplayKeys      bool
	KeyPlacement     Placement
	DisplayCounters  bool
	CounterPlacement Placement
	KeySpacing       float64
	DefaultKeyWidth  float64
	KeyHeight        float64
}

const (
	KeyMargin       = 30.0
	KeyBorderWidth  = 8.0
	KeyCornerRadius = 2.0
	BigFontSize     = 25.0
	SmallFontSize   = 20.0
	OutsideTextGap  = 5.0
	CenterTextGap   = 2.0

	IdleColor uint32 = 0x111111
	TextColor uint32 = 0xeeeeee
)
