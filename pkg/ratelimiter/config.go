package ratelimiter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	MinRate  = 1
	MaxRate  = 100_000
	MinBurst = 1
	MaxBurst = 10_000

	// a bucket may not hold more than one minute worth of tokens
	maxBurstSeconds = 60
)

// BucketConfig is a validated rate and burst pair. The zero value means "not configured".
type BucketConfig struct {
	rate  uint32
	burst uint32
}

// NewBucketConfig checks the rate bounds, then the burst bounds, then the burst/rate ratio and
// returns the first violation.
func NewBucketConfig(rate, burst uint32) (BucketConfig, error) {
	if rate < MinRate || rate > MaxRate {
		return BucketConfig{}, &InvalidRateLimitError{Rate: rate}
	}
	if burst < MinBurst || burst > MaxBurst {
		return BucketConfig{}, &InvalidBurstCapacityError{Burst: burst}
	}
	if uint64(burst) > uint64(rate)*maxBurstSeconds {
		return BucketConfig{}, &UnreasonableBurstError{Rate: rate, Burst: burst}
	}
	return BucketConfig{rate: rate, burst: burst}, nil
}

// mustBucketConfig is only used for the built-in table.
func mustBucketConfig(rate, burst uint32) BucketConfig {
	c, err := NewBucketConfig(rate, burst)
	if err != nil {
		panic(err)
	}
	return c
}

// Rate is the refill rate in tokens per second.
func (c BucketConfig) Rate() uint32 { return c.rate }

// Burst is the bucket capacity.
func (c BucketConfig) Burst() uint32 { return c.burst }

func (c BucketConfig) IsZero() bool { return c.rate == 0 && c.burst == 0 }

func (c BucketConfig) String() string {
	return fmt.Sprintf("%d/s burst %d", c.rate, c.burst)
}

// defaultBuckets is the built-in policy. Interactive or expensive categories (sampling, elicitation)
// get one or two per second, chatty low risk ones (logging, other) get generous limits.
var defaultBuckets = map[Category]BucketConfig{
	ProgressNotification: mustBucketConfig(10, 5),
	LoggingMessage:       mustBucketConfig(50, 10),
	SamplingRequest:      mustBucketConfig(2, 1),
	CompletionRequest:    mustBucketConfig(5, 2),
	ElicitationRequest:   mustBucketConfig(1, 1),
	ToolCall:             mustBucketConfig(20, 5),
	Other:                mustBucketConfig(100, 20),
}

// DefaultBucketConfig returns the built-in configuration of c. Unknown categories get the Other policy.
func DefaultBucketConfig(c Category) BucketConfig {
	if bc, ok := defaultBuckets[c]; ok {
		return bc
	}
	return defaultBuckets[Other]
}

// Config holds per category overrides. Categories without an override use DefaultBucketConfig.
type Config struct {
	Buckets map[Category]BucketConfig
}

func DefaultConfig() Config {
	return Config{}
}

// With returns a copy of c overriding the bucket of category.
func (c Config) With(category Category, bc BucketConfig) Config {
	buckets := make(map[Category]BucketConfig, len(c.Buckets)+1)
	for k, v := range c.Buckets {
		buckets[k] = v
	}
	buckets[category] = bc
	return Config{Buckets: buckets}
}

// BucketFor returns the effective configuration of category.
func (c Config) BucketFor(category Category) BucketConfig {
	if bc, ok := c.Buckets[category]; ok && !bc.IsZero() {
		return bc
	}
	return DefaultBucketConfig(category)
}

type fileBucket struct {
	Rate  uint32 `yaml:"rate"`
	Burst uint32 `yaml:"burst"`
}

type fileConfig struct {
	Buckets map[string]fileBucket `yaml:"buckets"`
}

// ParseConfig reads a YAML document of the form
//
//	buckets:
//	  tool_call: {rate: 20, burst: 5}
//
// Every listed bucket is validated with NewBucketConfig.
func ParseConfig(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	for name, b := range fc.Buckets {
		category, err := ParseCategory(name)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		bc, err := NewBucketConfig(b.Rate, b.Burst)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.With(category, bc)
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file, see ParseConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}
