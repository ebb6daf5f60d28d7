package capture

import (
	"cmp"
	"slices"
	"time"

	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
)

const (
	// DefaultHold is how long a terminal key counts as held after a repeat.
	DefaultHold = 180 * time.Millisecond
	// DefaultRepeatDelay covers the gap between the first key message and the
	// first auto-repeat, which the OS delays by 250-600ms.
	DefaultRepeatDelay = 600 * time.Millisecond
)

// Terminal turns terminal key messages into press/release pairs. Terminals
// report a key once plus auto-repeats and never report the release, so a key is
// released once no message for it arrived in time: RepeatDelay after the first
// message, Hold after any repeat.
type Terminal struct {
	Hold        time.Duration
	RepeatDelay time.Duration
	queue       *Queue
	held        map[keys.PhysicalKey]heldKey
}

type heldKey struct {
	last     time.Time
	repeated bool
}

func NewTerminal(q *Queue, hold, repeatDelay time.Duration) *Terminal {
	if hold <= 0 {
		hold = DefaultHold
	}
	if repeatDelay <= 0 {
		repeatDelay = DefaultRepeatDelay
	}
	return &Terminal{
		Hold:        hold,
		RepeatDelay: max(repeatDelay, hold),
		queue:       q,
		held:        make(map[keys.PhysicalKey]heldKey),
	}
}

// Key records a key message received at now.
func (t *Terminal) Key(k keys.PhysicalKey, now time.Time) {
	_, repeated := t.held[k]
	if !repeated {
		t.queue.Push(keys.Event{Key: k, Pressed: true, Time: now})
	}
	t.held[k] = heldKey{last: now, repeated: repeated}
}

func (t *Terminal) deadline(h heldKey) time.Time {
	if h.repeated {
		return h.last.Add(t.Hold)
	}
	return h.last.Add(t.RepeatDelay)
}

// Expire releases every key whose deadline has passed. The release is stamped
// at the deadline; releases are queued in time order.
func (t *Terminal) Expire(now time.Time) {
	var expired []keys.Event
	for k, h := range t.held {
		deadline := t.deadline(h)
		if now.Before(deadline) {
			continue
		}
		expired = append(expired, keys.Event{Key: k, Pressed: false, Time: deadline})
		delete(t.held, k)
	}
	slices.SortFunc(expired, func(a, b keys.Event) int {
		if c := a.Time.Compare(b.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	for _, ev := range expired {
		t.queue.Push(ev)
	}
}

// Held returns the number of keys currently considered down.
func (t *Terminal) Held() int { return len(t.held) }
