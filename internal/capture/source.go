// Package capture delivers raw key events to the overlay: the queue shared with
// the render loop and the sources that feed it.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
)

// Source emits raw key events until it runs out or ctx is cancelled.
type Source interface {
	Stream(ctx context.Context, emit func(keys.Event) error) error
}

// SourceFunc adapts a function literal to the Source interface.
type SourceFunc func(ctx context.Context, emit func(keys.Event) error) error

// Stream calls the underlying function.
func (f SourceFunc) Stream(ctx context.Context, emit func(keys.Event) error) error {
	return f(ctx, emit)
}

// Filter drops events for keys outside the configured set before they reach the queue.
func Filter(allowed map[keys.PhysicalKey]struct{}, emit func(keys.Event) error) func(keys.Event) error {
	return func(ev keys.Event) error {
		if _, ok := allowed[ev.Key]; !ok {
			return nil
		}
		return emit(ev)
	}
}

// Pump streams src into q until the source finishes. Cancellation is not an error.
func Pump(ctx context.Context, src Source, q *Queue, allowed map[keys.PhysicalKey]struct{}) error {
	emit := func(ev keys.Event) error {
		q.Push(ev)
		return nil
	}
	if allowed != nil {
		emit = Filter(allowed, emit)
	}
	err := src.Stream(ctx, emit)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return fmt.Errorf("capture: %w", err)
}

// Start runs Pump on its own goroutine and logs a failure. The returned channel
// is closed when the source is done.
func Start(ctx context.Context, src Source, q *Queue, allowed map[keys.PhysicalKey]struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := Pump(ctx, src, q, allowed); err != nil {
			log.Printf("[ERROR] %v", err)
			return
		}
		log.Printf("[DEBUG] capture source finished")
	}()
	return done
}
