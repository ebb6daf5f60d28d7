package capture

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/x/term"

	"github.com/keilerkonzept/key-overlay-tui/internal/keys"
)

// ErrNoInput is returned by OpenInput when no file is given and stdin is a terminal.
var ErrNoInput = errors.New("no replay input: pass a file or pipe events on stdin")

// Replay re-plays a recording of JSON records, one per line:
//
//	{"key":"KeyD","pressed":true,"time":"2024-01-01T12:00:00.250Z"}
//
// "time" may also be a number of seconds since the Unix epoch. Records are
// paced by the gaps between their timestamps and re-stamped with the wall clock
// on emission, so the overlay sees them as live input.
type Replay struct {
	Reader          io.Reader
	Speed           float64       // 1 = real time, 2 = twice as fast
	MaxSleep        time.Duration // caps a single gap; 0 = no cap
	MaxEvents       int           // 0 = unlimited
	TimestampLayout string

	Clock func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

type replayRecord struct {
	Key     string `json:"key"`
	Pressed bool   `json:"pressed"`
	Time    any    `json:"time"`
}

func (r *Replay) Stream(ctx context.Context, emit func(keys.Event) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	speed := r.Speed
	if speed <= 0 {
		speed = 1
	}
	layout := r.TimestampLayout
	if layout == "" {
		layout = time.RFC3339Nano
	}
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	dec := json.NewDecoder(bufio.NewReader(r.Reader))
	var prevEvent time.Time
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.MaxEvents > 0 && n >= r.MaxEvents {
			return nil
		}

		var rec replayRecord
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("decode record %d: %w", n+1, err)
		}

		key, err := keys.Parse(rec.Key)
		if err != nil {
			return fmt.Errorf("record %d: %w", n+1, err)
		}
		eventTime, err := parseTimestamp(rec.Time, layout)
		if err != nil {
			return fmt.Errorf("record %d: %w", n+1, err)
		}

		if !prevEvent.IsZero() {
			gap := time.Duration(float64(eventTime.Sub(prevEvent)) / speed)
			if gap > 0 {
				if r.MaxSleep > 0 && gap > r.MaxSleep {
					gap = r.MaxSleep
				}
				if err := sleep(ctx, gap); err != nil {
					return err
				}
			}
		}
		prevEvent = eventTime

		if err := emit(keys.Event{Key: key, Pressed: rec.Pressed, Time: clock()}); err != nil {
			return err
		}
		n++
	}
}

func parseTimestamp(v any, layout string) (time.Time, error) {
	switch ts := v.(type) {
	case float64:
		sec, frac := math.Modf(ts)
		return time.Unix(int64(sec), int64(frac*1e9)), nil
	case string:
		t, err := time.Parse(layout, ts)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", ts, err)
		}
		return t, nil
	case nil:
		return time.Time{}, errors.New("missing timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp %v", v)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// OpenInput opens path, or stdin when path is empty and stdin is not a terminal.
func OpenInput(path string) (io.ReadCloser, error) {
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open replay input: %w", err)
		}
		return f, nil
	}
	if term.IsTerminal(os.Stdin.Fd()) {
		return nil, ErrNoInput
	}
	return io.NopCloser(os.Stdin), nil
}
