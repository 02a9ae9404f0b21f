// internal/service/ratelimit.go
package service

import (
	"sync"
	"time"
)

// Clock returns the current time. Injected so tests can drive the window.
type Clock func() time.Time

// RateLimiter enforces a ceiling on successful sends inside a sliding
// window. The count is exact: every recorded send keeps its timestamp and
// expired entries are pruned on each call.
//
// Allow and Record are separate on purpose: the dispatcher checks Allow
// before transmitting and calls Record only after the SMTP send succeeded,
// so failed transmissions never consume budget. Both run inside the
// dispatcher's critical section.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    Clock
	sent   []time.Time
}

// NewRateLimiter creates a limiter allowing limit sends per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(limit, window, time.Now)
}

// NewRateLimiterWithClock is NewRateLimiter with an explicit clock.
func NewRateLimiterWithClock(limit int, window time.Duration, now Clock) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    now,
		sent:   []time.Time{},
	}
}

// prune drops timestamps that fell out of the trailing window.
// Caller must hold mu.
func (l *RateLimiter) prune() {
	cutoff := l.now().Add(-l.window)
	kept := l.sent[:0]
	for _, t := range l.sent {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.sent = kept
}

// Allow reports whether one more send fits in the current window.
func (l *RateLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	return len(l.sent) < l.limit
}

// Record counts a successful send at the current time.
func (l *RateLimiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, l.now())
}

// Prime seeds the window from persisted history, so a process restart
// cannot reset the hourly budget.
func (l *RateLimiter) Prime(times []time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, times...)
	l.prune()
}

// Limit returns the configured ceiling.
func (l *RateLimiter) Limit() int {
	return l.limit
}

// InWindow returns the current count of sends inside the window.
func (l *RateLimiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	return len(l.sent)
}
