package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter paces successive requests
type Limiter interface {
	// Wait blocks until the next request may be sent or ctx is done
	Wait(ctx context.Context) error
}

// Jitter pauses for a random duration in [Min, Max] on every Wait.
// It is a courtesy delay between pages, not a rate guarantee.
type Jitter struct {
	Min time.Duration
	Max time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewJitter creates a jittered delay. Swapped bounds are reordered and
// negative bounds are treated as zero.
func NewJitter(min, max time.Duration) *Jitter {
	if min < 0 {
		min = 0
	}
	if max < 0 {
		max = 0
	}
	if min > max {
		min, max = max, min
	}
	return &Jitter{
		Min: min,
		Max: max,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the duration the next Wait will sleep
func (j *Jitter) Next() time.Duration {
	span := j.Max - j.Min
	if span <= 0 {
		return j.Min
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.rnd == nil {
		j.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return j.Min + time.Duration(j.rnd.Int63n(int64(span)+1))
}

// Wait sleeps for Next() or until ctx is done, whichever comes first
func (j *Jitter) Wait(ctx context.Context) error {
	d := j.Next()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlimited never waits
type Unlimited struct{}

// Wait returns immediately unless ctx is already done
func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
