package transport

import (
	"errors"
	"fmt"
)

// Cause tells why a send or close failed.
type Cause uint32

const (
	// CauseRateLimited means the message was rejected before reaching the wrapped transport.
	CauseRateLimited Cause = iota + 1
	// CauseTransport means the wrapped transport itself failed.
	CauseTransport
)

var causeStrings = map[Cause]string{
	CauseRateLimited: "rate limiting error",
	CauseTransport:   "transport error",
}

func (c Cause) String() string {
	if s, ok := causeStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("cause(%d)", uint32(c))
}

// Error is returned by RateLimitedTransport.Send and Close.
type Error struct {
	Cause Cause
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Cause, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is a rejection by the rate limiter. Callers usually back off.
func IsRateLimited(err error) bool {
	return hasCause(err, CauseRateLimited)
}

// IsTransportFailure reports whether err came from the wrapped transport.
func IsTransportFailure(err error) bool {
	return hasCause(err, CauseTransport)
}

func hasCause(err error, cause Cause) bool {
	var e *Error
	return errors.As(err, &e) && e.Cause == cause
}
