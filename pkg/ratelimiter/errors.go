package ratelimiter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig matches every configuration error returned by NewBucketConfig and LoadConfig.
	ErrInvalidConfig = errors.New("invalid rate limit configuration")

	// ErrExceeded matches an ExceededError.
	ErrExceeded = errors.New("rate limit exceeded")
)

// InvalidRateLimitError is returned when the rate is outside [MinRate, MaxRate].
type InvalidRateLimitError struct {
	Rate uint32
}

func (e *InvalidRateLimitError) Error() string {
	return fmt.Sprintf("invalid rate limit: %d. Must be between %d and %d messages per second", e.Rate, MinRate, MaxRate)
}

func (e *InvalidRateLimitError) Is(target error) bool { return target == ErrInvalidConfig }

// InvalidBurstCapacityError is returned when the burst is outside [MinBurst, MaxBurst].
type InvalidBurstCapacityError struct {
	Burst uint32
}

func (e *InvalidBurstCapacityError) Error() string {
	return fmt.Sprintf("invalid burst capacity: %d. Must be between %d and %d", e.Burst, MinBurst, MaxBurst)
}

func (e *InvalidBurstCapacityError) Is(target error) bool { return target == ErrInvalidConfig }

// UnreasonableBurstError is returned when the burst exceeds what the rate accumulates in one minute.
type UnreasonableBurstError struct {
	Rate  uint32
	Burst uint32
}

func (e *UnreasonableBurstError) Error() string {
	return fmt.Sprintf("unreasonable burst configuration: rate=%d/s, burst=%d. Burst should not exceed rate*%d", e.Rate, e.Burst, maxBurstSeconds)
}

func (e *UnreasonableBurstError) Is(target error) bool { return target == ErrInvalidConfig }

// ExceededError reports that the bucket of Category had no token left.
type ExceededError struct {
	Category Category
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for message category %s", e.Category)
}

func (e *ExceededError) Is(target error) bool { return target == ErrExceeded }
