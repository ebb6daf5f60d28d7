package stats

import (
	"sort"
	"time"

	"github.com/keilerkonzept/topk/heap"
)

// Leaderboard ranks columns by windowed presses. Reading the sketch's sorted
// view is the expensive path, so it runs at most every fullRefresh; in between
// only the counts of the known entries are refreshed and re-sorted.
type Leaderboard struct {
	fullRefresh time.Duration
	lastFull    time.Time
	items       []heap.Item
}

// NewLeaderboard returns a board doing a full refresh at most every fullRefresh;
// zero forces a full refresh on every call.
func NewLeaderboard(fullRefresh time.Duration) *Leaderboard {
	if fullRefresh < 0 {
		fullRefresh = 2 * time.Second
	}
	return &Leaderboard{fullRefresh: fullRefresh}
}

// Refresh updates and returns a copy of the ranking.
func (l *Leaderboard) Refresh(now time.Time, rate *PressRate) (items []heap.Item, full bool) {
	if len(l.items) == 0 || l.lastFull.IsZero() || now.Sub(l.lastFull) >= l.fullRefresh {
		l.items = rate.Sorted()
		l.lastFull = now
		full = true
	} else {
		for i := range l.items {
			l.items[i].Count = rate.Count(l.items[i].Item)
		}
	}

	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i], l.items[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Item < b.Item
	})

	out := make([]heap.Item, len(l.items))
	copy(out, l.items)
	return out, full
}
