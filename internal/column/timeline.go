package column

import "time"

// Interval is one contiguous held period. Open intervals are still held and
// end at the instant the iteration was started for.
type Interval struct {
	Start time.Time
	End   time.Time
	Open  bool
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// IntervalIter walks a column's history newest to oldest, pairing transition
// instants into intervals. It allocates nothing and can be restarted with Reset.
type IntervalIter struct {
	history *History
	pressed bool
	now     time.Time

	i           int
	pending     time.Time
	hasPending  bool
	pendingOpen bool
}

// Intervals starts an iteration over c's press intervals as of now.
func (c *Column) Intervals(now time.Time) *IntervalIter {
	it := &IntervalIter{history: &c.history, pressed: c.pressed, now: now}
	it.Reset()
	return it
}

// Reset rewinds the iterator to the newest interval.
func (it *IntervalIter) Reset() {
	it.i = 0
	it.hasPending = it.pressed
	it.pendingOpen = it.pressed
	it.pending = it.now
}

// Next returns the next older interval. A trailing unpaired instant, left when
// eviction split a press from its release, is dropped.
func (it *IntervalIter) Next() (Interval, bool) {
	for it.i < it.history.Len() {
		t := it.history.At(it.i)
		it.i++
		if !it.hasPending {
			it.pending = t
			it.hasPending = true
			it.pendingOpen = false
			continue
		}
		iv := Interval{Start: t, End: it.pending, Open: it.pendingOpen}
		it.hasPending = false
		it.pendingOpen = false
		return iv, true
	}
	return Interval{}, false
}

// Collect drains the remaining intervals into a slice, newest first.
func (it *IntervalIter) Collect() []Interval {
	var out []Interval
	for {
		iv, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, iv)
	}
}
