package service

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket that refills completely once per window
type RateLimiter struct {
	mu         sync.Mutex
	rate       int           // sends per window
	window     time.Duration // time window
	tokens     int
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter creates a limiter allowing rate sends per window
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	if rate < 1 {
		rate = 1
	}
	return &RateLimiter{
		rate:       rate,
		window:     window,
		tokens:     rate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow takes a token if one is left, otherwise it returns how long until the next refill
func (rl *RateLimiter) Allow() (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.window {
		rl.tokens = rl.rate
		rl.lastRefill = now
		elapsed = 0
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true, 0
	}
	return false, rl.window - elapsed
}

// Wait blocks until a token is available or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		ok, wait := rl.Allow()
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
