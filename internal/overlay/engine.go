// Package overlay routes raw key events to columns and drives one frame per tick.
package overlay

import (
	"fmt"

	"github.com/keilerkonzept/key-overlay-tui/internal/column"
	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
)

// Engine owns the columns and the key-to-column index. The index is built once
// and never modified afterwards.
type Engine struct {
	cols  []*column.Column
	index map[keys.PhysicalKey]int
}

// NewEngine builds one column per props entry, in order. A key listed by more
// than one column belongs to the first; config validation rejects that case
// before an engine is built.
func NewEngine(props []column.Props) (*Engine, error) {
	e := &Engine{
		cols:  make([]*column.Column, 0, len(props)),
		index: make(map[keys.PhysicalKey]int),
	}
	for i, p := range props {
		c, err := column.New(p)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		e.cols = append(e.cols, c)
		for _, k := range p.Keys {
			if _, taken := e.index[k]; !taken {
				e.index[k] = i
			}
		}
	}
	return e, nil
}

// Apply routes ev to the column owning its key. Events for unknown keys are
// ignored and return a nil column.
func (e *Engine) Apply(ev keys.Event) (*column.Column, column.Transition) {
	i, ok := e.index[ev.Key]
	if !ok {
		return nil, column.Transition{}
	}
	c := e.cols[i]
	return c, c.Apply(ev)
}

// Columns returns the columns in display order.
func (e *Engine) Columns() []*column.Column { return e.cols }

// Keys returns the set of routed keys.
func (e *Engine) Keys() map[keys.PhysicalKey]struct{} {
	set := make(map[keys.PhysicalKey]struct{}, len(e.index))
	for k := range e.index {
		set[k] = struct{}{}
	}
	return set
}

// Owner returns the column routed for k.
func (e *Engine) Owner(k keys.PhysicalKey) (*column.Column, bool) {
	i, ok := e.index[k]
	if !ok {
		return nil, false
	}
	return e.cols[i], true
}
