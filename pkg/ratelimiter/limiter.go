package ratelimiter

import (
	"sync"
	"time"

	"github.com/lowc1012/rate-limited-transport/internal/log"
	"github.com/lowc1012/rate-limited-transport/pkg/protocol"
	"go.uber.org/zap"
)

// ensure that MessageRateLimiter satisfies the Checker interface
var _ Checker = &MessageRateLimiter{}

// MessageRateLimiter holds one token bucket per category. A single mutex guards all buckets; a
// check is only classification plus arithmetic, so it is held very briefly.
type MessageRateLimiter struct {
	mu      sync.Mutex
	buckets map[Category]*TokenBucket
	stats   map[Category]*Stats
	logger  *zap.Logger
}

type Option func(*options)

type options struct {
	now    func() time.Time
	logger *zap.Logger
}

// WithClock replaces time.Now as the source of bucket time.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for rejections. The default is log.Logger().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewMessageRateLimiter creates a full bucket for every category of cfg.
func NewMessageRateLimiter(cfg Config, opts ...Option) *MessageRateLimiter {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Logger()
	}

	l := &MessageRateLimiter{
		buckets: make(map[Category]*TokenBucket, len(Categories)),
		stats:   make(map[Category]*Stats, len(Categories)),
		logger:  o.logger,
	}
	for _, c := range Categories {
		l.buckets[c] = newTokenBucket(cfg.BucketFor(c), o.now)
		l.stats[c] = &Stats{}
	}
	return l
}

// Check consumes a token from the bucket of msg's category. It returns an *ExceededError if the
// bucket is empty. Categories without a bucket are always admitted and counted as allowed.
func (l *MessageRateLimiter) Check(msg protocol.Message) error {
	category := Classify(msg)

	l.mu.Lock()
	state := l.take(category)
	l.mu.Unlock()

	if state == Deny {
		l.logger.Warn("Rate limit exceeded", zap.Stringer("category", category))
		return &ExceededError{Category: category}
	}
	return nil
}

func (l *MessageRateLimiter) take(category Category) State {
	state := Allow
	if bucket, ok := l.buckets[category]; ok && !bucket.TryConsume() {
		state = Deny
	}

	s, ok := l.stats[category]
	if !ok {
		s = &Stats{}
		l.stats[category] = s
	}
	if state == Allow {
		s.Allowed++
	} else {
		s.Denied++
	}
	return state
}

// Stats returns a snapshot of the decisions taken so far.
func (l *MessageRateLimiter) Stats() map[Category]Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[Category]Stats, len(l.stats))
	for c, s := range l.stats {
		out[c] = *s
	}
	return out
}

// Tokens returns the token count of category's bucket as of its last refill.
func (l *MessageRateLimiter) Tokens(category Category) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[category]
	if !ok {
		return 0, false
	}
	return bucket.Tokens(), true
}
