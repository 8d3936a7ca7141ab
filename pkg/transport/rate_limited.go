package transport

import (
	"context"

	"github.com/lowc1012/rate-limited-transport/pkg/protocol"
	"github.com/lowc1012/rate-limited-transport/pkg/ratelimiter"
)

// ensure that RateLimitedTransport satisfies the Transport interface
var _ Transport = &RateLimitedTransport{}

// RateLimitedTransport wraps a Transport and rate limits outbound messages by category. It is safe
// for concurrent use as long as the wrapped transport is; share the pointer between senders.
type RateLimitedTransport struct {
	inner   Transport
	limiter ratelimiter.Checker
}

// NewRateLimitedTransport wraps an existing Transport, checking every outbound message against
// limiter before handing it to inner. Several transports may share the same limiter.
func NewRateLimitedTransport(inner Transport, limiter ratelimiter.Checker) *RateLimitedTransport {
	return &RateLimitedTransport{
		inner:   inner,
		limiter: limiter,
	}
}

// Wrap is a shortcut for wrapping inner with a fresh limiter built from cfg.
func Wrap(inner Transport, cfg ratelimiter.Config, opts ...ratelimiter.Option) *RateLimitedTransport {
	return NewRateLimitedTransport(inner, ratelimiter.NewMessageRateLimiter(cfg, opts...))
}

// Send checks msg against the limiter and, only if it is admitted, forwards it unchanged to the
// wrapped transport. A rejected message is dropped: the wrapped transport never sees it and the
// caller gets an *Error with CauseRateLimited.
//
// The limiter is released before forwarding, so two concurrent senders may reach the wrapped
// transport in a different order than they passed the check.
func (t *RateLimitedTransport) Send(ctx context.Context, msg protocol.Message) error {
	// an abandoned send should not burn a token
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.limiter.Check(msg); err != nil {
		return &Error{Cause: CauseRateLimited, Err: err}
	}

	// from here on the message is in flight; cancelling ctx gives no guarantee either way
	if err := t.inner.Send(ctx, msg); err != nil {
		return &Error{Cause: CauseTransport, Err: err}
	}
	return nil
}

// Receive is never throttled.
func (t *RateLimitedTransport) Receive(ctx context.Context) (protocol.Message, error) {
	return t.inner.Receive(ctx)
}

func (t *RateLimitedTransport) Close() error {
	if err := t.inner.Close(); err != nil {
		return &Error{Cause: CauseTransport, Err: err}
	}
	return nil
}
