package core

import (
	"sync"
	"time"
)

// RateLimiter gates repetitive actions, such as failure logs while a
// backend is down, to at most one per interval. A non-positive interval
// disables limiting.
type RateLimiter struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

// NewRateLimiter creates a limiter allowing one action per interval.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Allow reports whether the action may proceed now, consuming the current
// interval's slot when it does.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Before(r.next) {
		return false
	}
	r.next = now.Add(r.interval)
	return true
}
