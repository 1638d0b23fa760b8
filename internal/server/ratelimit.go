package server

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter enforces per-caller and global request rate limits.
// Uses token bucket algorithm via golang.org/x/time/rate.
type RateLimiter struct {
	mu        sync.Mutex
	global    *rate.Limiter
	callers   map[string]*rate.Limiter
	perCaller rate.Limit
	burst     int
}

// limitFor converts requests/second to a limiter rate. Zero or negative
// means unlimited.
func limitFor(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

// burstFor sizes the bucket to one second of traffic, minimum one token.
func burstFor(rps float64) int {
	if rps < 1 {
		return 1
	}
	return int(rps)
}

// NewRateLimiter creates a rate limiter. globalRPS is the total
// requests/second across all callers, perCallerRPS the requests/second for
// each caller. Zero or negative leaves that tier unlimited.
func NewRateLimiter(globalRPS, perCallerRPS float64) *RateLimiter {
	return &RateLimiter{
		global:    rate.NewLimiter(limitFor(globalRPS), burstFor(globalRPS)),
		callers:   make(map[string]*rate.Limiter),
		perCaller: limitFor(perCallerRPS),
		burst:     burstFor(perCallerRPS),
	}
}

// Allow checks whether a request from the given caller is allowed.
// Returns true if allowed, false if rate limited.
func (rl *RateLimiter) Allow(caller string) bool {
	if !rl.global.Allow() {
		return false
	}
	rl.mu.Lock()
	limiter, ok := rl.callers[caller]
	if !ok {
		limiter = rate.NewLimiter(rl.perCaller, rl.burst)
		rl.callers[caller] = limiter
	}
	rl.mu.Unlock()
	return limiter.Allow()
}
