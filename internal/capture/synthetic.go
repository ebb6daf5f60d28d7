package capture

import (
	"context"
	"time"

	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
)

// Synthetic plays a deterministic rhythm over Keys: each step presses the next
// key for Hold, then waits out the rest of Step. Rounds of 0 repeat until ctx
// is cancelled. It drives the demo mode and tests.
type Synthetic struct {
	Keys   []keys.PhysicalKey
	Step   time.Duration
	Hold   time.Duration
	Rounds int

	Clock func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (s *Synthetic) Stream(ctx context.Context, emit func(keys.Event) error) error {
	if len(s.Keys) == 0 {
		return nil
	}
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	step, hold := s.Step, s.Hold
	if step <= 0 {
		step = 150 * time.Millisecond
	}
	if hold <= 0 || hold > step {
		hold = step / 2
	}

	// walk up and back down the key row, doubling up on the ends
	order := make([]keys.PhysicalKey, 0, 2*len(s.Keys))
	order = append(order, s.Keys...)
	for i := len(s.Keys) - 1; i >= 0; i-- {
		order = append(order, s.Keys[i])
	}

	for round := 0; s.Rounds == 0 || round < s.Rounds; round++ {
		for _, k := range order {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := emit(keys.Event{Key: k, Pressed: true, Time: clock()}); err != nil {
				return err
			}
			if err := sleep(ctx, hold); err != nil {
				return err
			}
			if err := emit(keys.Event{Key: k, Pressed: false, Time: clock()}); err != nil {
				return err
			}
			if err := sleep(ctx, step-hold); err != nil {
				return err
			}
		}
	}
	return nil
}
