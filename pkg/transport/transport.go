// Package transport moves protocol messages between peers and provides RateLimitedTransport, a
// decorator that throttles outbound messages per category before they reach the wrapped transport.
package transport

import (
	"context"

	"github.com/lowc1012/rate-limited-transport/pkg/protocol"
)

// Transport is a bidirectional message channel.
type Transport interface {
	// Send delivers one outbound message. It must be safe to call concurrently.
	Send(ctx context.Context, msg protocol.Message) error
	// Receive returns the next inbound message, or io.EOF once the stream has ended.
	Receive(ctx context.Context) (protocol.Message, error)
	// Close releases the transport's resources.
	Close() error
}
