package concurrency

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for the limiter so tests can drive it.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type LimiterOption func(*SlidingWindowLimiter)

func WithClock(c Clock) LimiterOption {
	return func(l *SlidingWindowLimiter) {
		l.clock = c
	}
}

// SlidingWindowLimiter admits at most max calls in any rolling window.
// Callers over the limit block in Wait until the oldest admission ages out.
type SlidingWindowLimiter struct {
	max          int
	window       time.Duration
	pollInterval time.Duration
	clock        Clock

	mu    sync.Mutex
	times []time.Time
}

func NewSlidingWindowLimiter(max int, window time.Duration, pollInterval time.Duration, opts ...LimiterOption) *SlidingWindowLimiter {
	if max <= 0 {
		max = 1
	}
	l := &SlidingWindowLimiter{
		max:          max,
		window:       window,
		pollInterval: pollInterval,
		clock:        realClock{},
		times:        make([]time.Time, 0, max),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until the call can be admitted, then records it.
func (l *SlidingWindowLimiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait, admitted := l.tryAdmit()
		if admitted {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(wait):
		}
	}
}

// tryAdmit prunes expired entries and records an admission if there is room.
// When there is no room it returns how long to sleep before checking again.
func (l *SlidingWindowLimiter) tryAdmit() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.prune(now)

	if len(l.times) < l.max {
		l.times = append(l.times, now)
		return 0, true
	}

	wait := l.times[0].Add(l.window).Sub(now)
	if l.pollInterval > 0 && l.pollInterval < wait {
		wait = l.pollInterval
	}
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

// times is kept in admission order so expired entries are always a prefix
func (l *SlidingWindowLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.times) && !l.times[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.times = append(l.times[:0], l.times[i:]...)
	}
}

// InWindow returns the number of admissions recorded in the current window.
func (l *SlidingWindowLimiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.clock.Now())
	return len(l.times)
}
