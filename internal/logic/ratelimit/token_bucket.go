// Package ratelimit implements token bucket rate limiting for outbound
// report submissions.
//
// The token bucket algorithm tolerates short bursts up to the bucket capacity
// while holding a sustained rate over time, which keeps an over-eager
// operator (or a retry loop) from flooding the external report sink.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements a thread-safe token bucket rate limiter.
//
// The bucket has a fixed capacity and refills at a constant rate. Each
// request consumes one token; when the bucket is empty, requests are
// rejected until tokens refill.
type TokenBucket struct {
	capacity   int        // maximum number of tokens the bucket can hold
	tokens     int        // current number of tokens in the bucket
	refillRate int        // tokens added per second
	lastRefill time.Time  // last time tokens were added
	mu         sync.Mutex // protects all bucket state
	hitCount   int64      // requests that were rate limited
	totalCount int64      // total requests processed
}

// NewTokenBucket creates a bucket with the given burst capacity and
// per-second refill rate. The bucket starts full.
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow attempts to consume one token. It returns false when the bucket is
// empty and the request should be rejected. Tokens refill automatically
// based on elapsed time since the last refill.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.totalCount++

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds() * float64(tb.refillRate))
	if tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	tb.hitCount++
	return false
}

// Stats returns the number of rejected and total requests seen by this
// bucket.
func (tb *TokenBucket) Stats() (hits, total int64) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.hitCount, tb.totalCount
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
