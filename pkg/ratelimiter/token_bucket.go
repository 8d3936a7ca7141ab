package ratelimiter

import (
	"math"
	"time"
)

// refill never credits more than one day of elapsed time, whatever the clock says
const maxElapsed = 24 * time.Hour

// TokenBucket regulates one category of messages. Each message consumes a token, and once the
// bucket is empty nothing is admitted until it refills at config.Rate() tokens per second.
//
// TokenBucket is not safe for concurrent use; MessageRateLimiter serializes access.
type TokenBucket struct {
	tokens     float64
	lastRefill time.Time
	config     BucketConfig
	now        func() time.Time
}

// NewTokenBucket creates a full bucket.
func NewTokenBucket(config BucketConfig) *TokenBucket {
	return newTokenBucket(config, time.Now)
}

func newTokenBucket(config BucketConfig, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:     float64(config.Burst()),
		lastRefill: now(),
		config:     config,
		now:        now,
	}
}

func (b *TokenBucket) Config() BucketConfig {
	return b.config
}

// Tokens returns the token count as of the last refill.
func (b *TokenBucket) Tokens() float64 {
	return b.tokens
}

// TryConsume refills the bucket and takes one token if available. It never blocks.
func (b *TokenBucket) TryConsume() bool {
	b.refill()

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// refill credits tokens for the time since the last refill. time.Time.Sub uses the monotonic
// reading when both instants carry one, so wall clock adjustments do not matter.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > maxElapsed {
		elapsed = maxElapsed
	}

	tokensToAdd := elapsed.Seconds() * float64(b.config.Rate())
	b.tokens = math.Max(0, math.Min(float64(b.config.Burst()), b.tokens+tokensToAdd))
	b.lastRefill = now
}
