package util

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	DefaultMinIdle = time.Millisecond
	DefaultMaxIdle = time.Minute
)

// BackoffIdler sleeps between polls that found no work. The first sleep lasts
// min, every following one twice as long as the previous, up to max. Any poll
// that found work resets the sleep to min.
type BackoffIdler struct {
	clock clock.Clock
	min   time.Duration
	max   time.Duration
	next  time.Duration
}

// NewBackoffIdler returns an idler sleeping on clk. A non-positive min
// defaults to DefaultMinIdle and a max below min is raised to min.
func NewBackoffIdler(clk clock.Clock, min, max time.Duration) *BackoffIdler {
	if clk == nil {
		clk = clock.New()
	}
	if min <= 0 {
		min = DefaultMinIdle
	}
	if max < min {
		max = min
	}
	return &BackoffIdler{
		clock: clk,
		min:   min,
		max:   max,
		next:  min,
	}
}

// Idle is called after every poll with the amount of work the poll did. It
// returns immediately if work > 0. Otherwise it sleeps until the current
// backoff elapses, wake receives or ctx is done, in which case it returns
// ctx.Err(). wake may be nil.
func (b *BackoffIdler) Idle(ctx context.Context, work int, wake <-chan struct{}) error {
	if work > 0 {
		b.Reset()
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	d := b.next
	if b.next = 2 * b.next; b.next > b.max {
		b.next = b.max
	}

	timer := b.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	case <-wake:
	}
	return nil
}

// Reset makes the next sleep last min.
func (b *BackoffIdler) Reset() {
	b.next = b.min
}

// Next returns how long the next call to Idle without work will sleep.
func (b *BackoffIdler) Next() time.Duration {
	return b.next
}
