package column

import "time"

// HistoryCapacity bounds the number of transition timestamps kept per column.
const HistoryCapacity = 1024

// History is a fixed-capacity ring of transition instants, indexed newest first.
// Pushing into a full ring overwrites the oldest entry.
type History struct {
	buf   [HistoryCapacity]time.Time
	head  int // slot of the newest entry
	count int
}

// Push records t as the newest entry.
func (h *History) Push(t time.Time) {
	h.head--
	if h.head < 0 {
		h.head = len(h.buf) - 1
	}
	h.buf[h.head] = t
	if h.count < len(h.buf) {
		h.count++
	}
}

// Len returns the number of retained entries.
func (h *History) Len() int { return h.count }

// At returns the i-th newest entry; At(0) is the most recent.
func (h *History) At(i int) time.Time {
	if i < 0 || i >= h.count {
		panic("column: history index out of range")
	}
	return h.buf[(h.head+i)%len(h.buf)]
}

// Slice copies the entries, newest first.
func (h *History) Slice() []time.Time {
	out := make([]time.Time, h.count)
	for i := range out {
		out[i] = h.At(i)
	}
	return out
}
