package rc522

import (
	"context"
	"math/rand"
	"time"
)

// Default retry pacing after a hardware error.
const (
	DefaultRetryInitial = 100 * time.Millisecond
	DefaultRetryMax     = 5 * time.Second
)

// backoff implements exponential backoff with jitter.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// newBackoff creates a new backoff with the given initial and max durations.
func newBackoff(initial, max time.Duration) *backoff {
	if initial <= 0 {
		initial = DefaultRetryInitial
	}
	if max < initial {
		max = initial
	}
	return &backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Wait sleeps for the current backoff duration and increases it.
// Returns false if ctx is done first.
func (b *backoff) Wait(ctx context.Context) bool {
	// Add jitter: ±20%
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	t := time.NewTimer(time.Duration(float64(b.current) + jitter))
	defer t.Stop()

	// Increase for next time
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Reset resets the backoff to the initial duration.
func (b *backoff) Reset() {
	b.current = b.initial
}

// Current returns the current backoff duration.
func (b *backoff) Current() time.Duration {
	return b.current
}
