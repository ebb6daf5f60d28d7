package capture

import (
	"sync"

	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
)

// Queue hands raw key events from capture goroutines to the render loop.
// It is unbounded: Push never blocks and never drops, Drain never waits.
type Queue struct {
	mu      sync.Mutex
	pending []keys.Event
	pushed  uint64
}

func NewQueue() *Queue {
	return &Queue{pending: make([]keys.Event, 0, 64)}
}

// Push appends ev. Safe for concurrent use.
func (q *Queue) Push(ev keys.Event) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.pushed++
	q.mu.Unlock()
}

// Drain appends everything queued so far to dst, in arrival order, and empties
// the queue. Events pushed after Drain returns wait for the next call.
func (q *Queue) Drain(dst []keys.Event) []keys.Event {
	q.mu.Lock()
	dst = append(dst, q.pending...)
	clear(q.pending)
	q.pending = q.pending[:0]
	q.mu.Unlock()
	return dst
}

// Len returns the number of events waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pushed returns the total number of events ever pushed.
func (q *Queue) Pushed() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushed
}
