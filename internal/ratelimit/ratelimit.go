// Package ratelimit bounds how many remote calls may start per window.
// One Limiter instance guards the whole process; callers past the limit
// are delayed until the window turns over, never rejected.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultMaxCalls = 10
	DefaultPeriod   = time.Second
)

// Limiter is a fixed-window counter. The mutex serializes the
// read-modify-write of calls/windowStart; it is released while a caller
// sleeps so concurrent invocations keep making progress.
type Limiter struct {
	mu          sync.Mutex
	max         int
	period      time.Duration
	calls       int
	windowStart time.Time
}

// New builds a limiter admitting max calls per period. Non-positive
// inputs fall back to the defaults.
func New(max int, period time.Duration) *Limiter {
	if max <= 0 {
		max = DefaultMaxCalls
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Limiter{
		max:         max,
		period:      period,
		windowStart: time.Now(),
	}
}

// Wait blocks until the caller may proceed, then counts it against the
// current window. At most max callers are admitted per window; the rest
// sleep until the window elapses. Returns early with ctx.Err() if the
// context is cancelled during the induced delay.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	for {
		now := time.Now()
		if now.Sub(l.windowStart) > l.period {
			l.calls = 0
			l.windowStart = now
		}
		if l.calls < l.max {
			l.calls++
			l.mu.Unlock()
			return nil
		}

		wait := l.period - now.Sub(l.windowStart)
		if wait <= 0 {
			// Window expired exactly at the boundary (or the clock
			// moved); start a fresh window without sleeping.
			l.calls = 0
			l.windowStart = now
			continue
		}

		// Sleep without holding the lock, then re-evaluate: another
		// waiter may have already opened the next window.
		l.mu.Unlock()
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		l.mu.Lock()
	}
}
