package service

import (
	"sync"
	"time"
)

// RateLimiter is an in-memory per-key token bucket, used to throttle
// signup and OTP attempts per client address. Safe for concurrent use.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64 // maximum tokens
	lastSwep time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter allows up to capacity requests per key in a burst,
// refilling at rate tokens per second.
func NewRateLimiter(rate, capacity float64) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		lastSwep: time.Now(),
	}
}

// Allow reports whether the given key may proceed, consuming one token.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweep(now)

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity, last: now}
		rl.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	b.tokens = min(b.tokens+elapsed*rl.rate, rl.capacity)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// sweep drops buckets idle long enough to have refilled completely.
// Runs at most once a minute, under the caller's lock.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSwep) < time.Minute {
		return
	}
	rl.lastSwep = now

	idle := time.Duration(rl.capacity/rl.rate)*time.Second + time.Minute
	cutoff := now.Add(-idle)
	for key, b := range rl.buckets {
		if b.last.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}
