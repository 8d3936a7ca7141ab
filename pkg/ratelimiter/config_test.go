package ratelimiter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBucketConfig(t *testing.T) {
	var tests = []struct {
		name  string
		rate  uint32
		burst uint32
		err   error
	}{
		{name: "smallest", rate: 1, burst: 1},
		{name: "burst of a full minute", rate: 1, burst: 60},
		{name: "largest", rate: 100_000, burst: 10_000},
		{name: "typical", rate: 10, burst: 5},
		{name: "zero rate", rate: 0, burst: 5, err: &InvalidRateLimitError{Rate: 0}},
		{name: "rate too high", rate: 100_001, burst: 5, err: &InvalidRateLimitError{Rate: 100_001}},
		{name: "zero burst", rate: 10, burst: 0, err: &InvalidBurstCapacityError{Burst: 0}},
		{name: "burst too high", rate: 1000, burst: 10_001, err: &InvalidBurstCapacityError{Burst: 10_001}},
		{name: "burst over a minute", rate: 10, burst: 601, err: &UnreasonableBurstError{Rate: 10, Burst: 601}},
		{name: "rate checked first", rate: 0, burst: 0, err: &InvalidRateLimitError{Rate: 0}},
		{name: "burst checked before ratio", rate: 1, burst: 20_000, err: &InvalidBurstCapacityError{Burst: 20_000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewBucketConfig(tt.rate, tt.burst)
			if tt.err != nil {
				assert.Equal(t, tt.err, err)
				assert.True(t, errors.Is(err, ErrInvalidConfig))
				assert.True(t, cfg.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rate, cfg.Rate())
			assert.Equal(t, tt.burst, cfg.Burst())
		})
	}
}

func TestNewBucketConfig_AllValidPairs(t *testing.T) {
	for _, rate := range []uint32{1, 2, 7, 60, 166, 167, 1000, 99_999, 100_000} {
		for _, burst := range []uint32{1, 2, 59, 60, 61, 600, 9_999, 10_000} {
			cfg, err := NewBucketConfig(rate, burst)
			if uint64(burst) > uint64(rate)*60 {
				var target *UnreasonableBurstError
				assert.True(t, errors.As(err, &target), "rate=%d burst=%d", rate, burst)
				continue
			}
			require.NoError(t, err, "rate=%d burst=%d", rate, burst)
			assert.Equal(t, rate, cfg.Rate())
			assert.Equal(t, burst, cfg.Burst())
		}
	}
}

func TestConfigErrorMessages(t *testing.T) {
	_, err := NewBucketConfig(0, 5)
	assert.EqualError(t, err, "invalid rate limit: 0. Must be between 1 and 100000 messages per second")

	_, err = NewBucketConfig(10, 601)
	assert.EqualError(t, err, "unreasonable burst configuration: rate=10/s, burst=601. Burst should not exceed rate*60")
}

func TestDefaultBucketConfig(t *testing.T) {
	var want = map[Category][2]uint32{
		ProgressNotification: {10, 5},
		LoggingMessage:       {50, 10},
		SamplingRequest:      {2, 1},
		CompletionRequest:    {5, 2},
		ElicitationRequest:   {1, 1},
		ToolCall:             {20, 5},
		Other:                {100, 20},
	}
	for c, rb := range want {
		cfg := DefaultBucketConfig(c)
		assert.Equal(t, rb[0], cfg.Rate(), c.String())
		assert.Equal(t, rb[1], cfg.Burst(), c.String())
	}
	assert.Equal(t, DefaultBucketConfig(Other), DefaultBucketConfig(Category(42)))
}

func TestConfig_With(t *testing.T) {
	custom, err := NewBucketConfig(3, 3)
	require.NoError(t, err)

	base := DefaultConfig()
	cfg := base.With(ToolCall, custom)

	assert.Equal(t, custom, cfg.BucketFor(ToolCall))
	assert.Equal(t, DefaultBucketConfig(ToolCall), base.BucketFor(ToolCall))
	assert.Equal(t, DefaultBucketConfig(LoggingMessage), cfg.BucketFor(LoggingMessage))

	// a zero value override is ignored
	cfg = cfg.With(LoggingMessage, BucketConfig{})
	assert.Equal(t, DefaultBucketConfig(LoggingMessage), cfg.BucketFor(LoggingMessage))
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
buckets:
  tool_call: {rate: 3, burst: 2}
  elicitation_request:
    rate: 2
    burst: 2
`))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cfg.BucketFor(ToolCall).Rate())
	assert.Equal(t, uint32(2), cfg.BucketFor(ToolCall).Burst())
	assert.Equal(t, uint32(2), cfg.BucketFor(ElicitationRequest).Rate())
	assert.Equal(t, DefaultBucketConfig(Other), cfg.BucketFor(Other))

	_, err = ParseConfig([]byte("buckets:\n  gossip: {rate: 1, burst: 1}\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ParseConfig([]byte("buckets:\n  other: {rate: 10, burst: 601}\n"))
	var unreasonable *UnreasonableBurstError
	require.True(t, errors.As(err, &unreasonable))
	assert.Equal(t, uint32(601), unreasonable.Burst)
	// bucket errors are returned as built, not wrapped
	assert.Equal(t, &UnreasonableBurstError{Rate: 10, Burst: 601}, err)

	_, err = ParseConfig([]byte("buckets: [1, 2]"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("buckets:\n  sampling_request: {rate: 4, burst: 4}\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), cfg.BucketFor(SamplingRequest).Burst())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseCategory("nope")
	assert.Error(t, err)
	assert.Equal(t, "category(99)", Category(99).String())
}
