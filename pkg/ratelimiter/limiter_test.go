package ratelimiter

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lowc1012/rate-limited-transport/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func toolCall() protocol.Message {
	return request(&protocol.CallToolRequest{Name: "echo"})
}

func TestMessageRateLimiter_Scenario(t *testing.T) {
	bc, err := NewBucketConfig(10, 5)
	require.NoError(t, err)
	clock := newFakeClock()
	limiter := NewMessageRateLimiter(DefaultConfig().With(ToolCall, bc), WithClock(clock.Now), WithLogger(zap.NewNop()))

	for i := 0; i < 5; i++ {
		assert.NoError(t, limiter.Check(toolCall()), "send %d", i+1)
	}

	err = limiter.Check(toolCall())
	var exceeded *ExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, ToolCall, exceeded.Category)
	assert.True(t, errors.Is(err, ErrExceeded))

	clock.Advance(100 * time.Millisecond)
	assert.NoError(t, limiter.Check(toolCall()))
	assert.Error(t, limiter.Check(toolCall()))

	stats := limiter.Stats()
	assert.Equal(t, Stats{Allowed: 6, Denied: 2}, stats[ToolCall])
	assert.Equal(t, Stats{}, stats[Other])
}

func TestMessageRateLimiter_CategoriesAreIndependent(t *testing.T) {
	clock := newFakeClock()
	limiter := NewMessageRateLimiter(DefaultConfig(), WithClock(clock.Now), WithLogger(zap.NewNop()))

	elicitation := request(&protocol.CreateElicitationRequest{Message: "name?"})
	require.NoError(t, limiter.Check(elicitation))
	require.Error(t, limiter.Check(elicitation))

	// other categories still have their full burst
	for i := 0; i < 5; i++ {
		assert.NoError(t, limiter.Check(toolCall()))
	}
	for i := 0; i < 10; i++ {
		assert.NoError(t, limiter.Check(notification(&protocol.LoggingMessageNotification{Level: "info"})))
	}
	for i := 0; i < 20; i++ {
		assert.NoError(t, limiter.Check(&protocol.Response{ID: protocol.NumberID(int64(i))}))
	}
	assert.Error(t, limiter.Check(&protocol.Response{ID: protocol.NumberID(21)}))

	tokens, ok := limiter.Tokens(ElicitationRequest)
	require.True(t, ok)
	assert.Equal(t, 0.0, tokens)
}

func TestMessageRateLimiter_FailOpenWithoutBucket(t *testing.T) {
	limiter := NewMessageRateLimiter(DefaultConfig(), WithLogger(zap.NewNop()))
	delete(limiter.buckets, ToolCall)
	delete(limiter.stats, ToolCall)

	for i := 0; i < 100; i++ {
		assert.NoError(t, limiter.Check(toolCall()))
	}
	_, ok := limiter.Tokens(ToolCall)
	assert.False(t, ok)

	// admissions without a bucket still show up in the statistics
	assert.Equal(t, Stats{Allowed: 100}, limiter.Stats()[ToolCall])
}

func TestMessageRateLimiter_LogsRejection(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	limiter := NewMessageRateLimiter(DefaultConfig(), WithLogger(zap.New(core)))

	sampling := request(&protocol.CreateMessageRequest{MaxTokens: 1})
	require.NoError(t, limiter.Check(sampling))
	assert.Equal(t, 0, logs.Len())

	require.Error(t, limiter.Check(sampling))
	entries := logs.FilterMessage("Rate limit exceeded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sampling_request", entries[0].ContextMap()["category"])
}

func TestMessageRateLimiter_Concurrent(t *testing.T) {
	bc, err := NewBucketConfig(1, 50)
	require.NoError(t, err)
	clock := newFakeClock()
	limiter := NewMessageRateLimiter(DefaultConfig().With(ToolCall, bc), WithClock(clock.Now), WithLogger(zap.NewNop()))

	var allowed, denied int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if limiter.Check(toolCall()) == nil {
					atomic.AddInt64(&allowed, 1)
				} else {
					atomic.AddInt64(&denied, 1)
				}
			}
		}()
	}
	wg.Wait()

	// the clock never moves, so exactly the burst is admitted
	assert.Equal(t, int64(50), allowed)
	assert.Equal(t, int64(150), denied)
	assert.Equal(t, Stats{Allowed: 50, Denied: 150}, limiter.Stats()[ToolCall])
}
