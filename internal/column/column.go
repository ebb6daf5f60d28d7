// Package column holds the per-column press state machine and the interval
// reconstruction used by the layout engine.
package column

import (
	"fmt"

	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
)

// Props are the static visual properties of a column.
type Props struct {
	Name        string
	Keys        []keys.PhysicalKey
	Width       float64
	Color       uint32
	HoverColor  uint32
	BorderColor uint32
	Alpha       float64
}

// Column aggregates the state of one or more physical keys.
type Column struct {
	Props Props

	members map[keys.PhysicalKey]bool
	pressed bool
	count   uint64
	history History
}

// Transition describes the aggregate change caused by an event, if any.
type Transition struct {
	Changed bool
	Pressed bool
}

// New builds a column with all members released. Props.Keys must be non-empty.
func New(props Props) (*Column, error) {
	if len(props.Keys) == 0 {
		return nil, fmt.Errorf("column %q has no keys", props.Name)
	}
	members := make(map[keys.PhysicalKey]bool, len(props.Keys))
	for _, k := range props.Keys {
		members[k] = false
	}
	if props.Name == "" {
		props.Name = keys.Name(props.Keys)
	}
	return &Column{Props: props, members: members}, nil
}

// Apply feeds one raw event into the column. Events for foreign keys and
// events repeating a member's current state are ignored.
func (c *Column) Apply(ev keys.Event) Transition {
	state, ok := c.members[ev.Key]
	if !ok || state == ev.Pressed {
		return Transition{Pressed: c.pressed}
	}
	c.members[ev.Key] = ev.Pressed

	prev := c.pressed
	c.pressed = false
	for _, down := range c.members {
		if down {
			c.pressed = true
			break
		}
	}
	if prev == c.pressed {
		return Transition{Pressed: c.pressed}
	}
	if c.pressed {
		c.count++
	}
	c.history.Push(ev.Time)
	return Transition{Changed: true, Pressed: c.pressed}
}

// Pressed reports whether any member is held.
func (c *Column) Pressed() bool { return c.pressed }

// Count is the number of aggregate presses seen so far.
func (c *Column) Count() uint64 { return c.count }

// History exposes the transition log, newest first.
func (c *Column) History() *History { return &c.history }

// MemberPressed reports the last applied state of k; false for non-members.
func (c *Column) MemberPressed(k keys.PhysicalKey) bool { return c.members[k] }

// Has reports whether k is a member of the column.
func (c *Column) Has(k keys.PhysicalKey) bool {
	_, ok := c.members[k]
	return ok
}

func (c *Column) String() string {
	x := " "
	if c.pressed {
		x = "x"
	}
	return fmt.Sprintf("(%s) [%s] %d (#T=%d)", x, c.Props.Name, c.count, c.history.Len())
}
