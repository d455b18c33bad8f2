package session

import (
	"sync"
	"time"

	"github.com/conneroisu/vitrine/internal/clock"
)

// SlidingWindowLimiter allows at most max events in any window-long span.
// Once the limit is hit it rejects everything until a backoff expires; each
// consecutive violation doubles the backoff up to maxBackoff.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	clock      clock.Clock
	max        int
	window     time.Duration
	timestamps []time.Time

	violations   int
	lastViolated time.Time
	backoffUntil time.Time
	baseBackoff  time.Duration
	maxBackoff   time.Duration
}

// NewSlidingWindowLimiter creates a limiter reading time from c.
func NewSlidingWindowLimiter(max int, window time.Duration, c clock.Clock) *SlidingWindowLimiter {
	if c == nil {
		c = clock.System()
	}
	return &SlidingWindowLimiter{
		clock:       c,
		max:         max,
		window:      window,
		timestamps:  make([]time.Time, 0, max),
		baseBackoff: time.Second,
		maxBackoff:  time.Minute,
	}
}

// Allow records an event and reports whether it is within the limit.
func (l *SlidingWindowLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Before(l.backoffUntil) {
		l.violateLocked(now)
		return false
	}

	l.dropExpiredLocked(now)
	if len(l.timestamps) >= l.max {
		l.violateLocked(now)
		return false
	}

	if l.violations > 0 && now.Sub(l.lastViolated) > 2*l.window {
		l.violations = 0
	}
	l.timestamps = append(l.timestamps, now)
	return true
}

// Reset forgets all history.
func (l *SlidingWindowLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.timestamps = l.timestamps[:0]
	l.violations = 0
	l.lastViolated = time.Time{}
	l.backoffUntil = time.Time{}
}

func (l *SlidingWindowLimiter) violateLocked(now time.Time) {
	l.violations++
	l.lastViolated = now

	backoff := l.baseBackoff
	for i := 1; i < l.violations && backoff < l.maxBackoff; i++ {
		backoff *= 2
	}
	if backoff > l.maxBackoff {
		backoff = l.maxBackoff
	}
	l.backoffUntil = now.Add(backoff)
}

func (l *SlidingWindowLimiter) dropExpiredLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	keep := 0
	for keep < len(l.timestamps) && !l.timestamps[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		n := copy(l.timestamps, l.timestamps[keep:])
		l.timestamps = l.timestamps[:n]
	}
}
