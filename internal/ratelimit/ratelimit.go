// Package ratelimit provides a token bucket pacer for sequential external
// API calls. Tokens refill at a steady rate; callers block on Wait until a
// token is available instead of sleeping a fixed interval between calls.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is a token bucket rate limiter. It allows bursts up to its
// capacity, with tokens refilling continuously at refillRate per second.
type TokenBucket struct {
	capacity   float64
	refillRate float64
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
	now        func() time.Time
}

// NewTokenBucket creates a token bucket with the given burst capacity and
// refill rate in tokens per second. The bucket starts full.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	if refillRate <= 0 {
		refillRate = 1
	}
	tb := &TokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		now:        time.Now,
	}
	tb.lastRefill = tb.now()
	return tb
}

// refill adds tokens for the time elapsed since the last refill.
// Caller must hold mu.
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = min(tb.capacity, tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now
}

// Allow consumes a token if one is available and reports whether it did.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// reserve consumes a token unconditionally and returns how long the caller
// must wait before proceeding. The bucket may go negative; that debt is paid
// back by the refill before later calls proceed.
func (tb *TokenBucket) reserve() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	tb.tokens -= 1.0
	if tb.tokens >= 0 {
		return 0
	}
	shortfall := -tb.tokens
	return time.Duration(shortfall / tb.refillRate * float64(time.Second))
}

// Wait blocks until a token is available or the context is done.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	delay := tb.reserve()
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
