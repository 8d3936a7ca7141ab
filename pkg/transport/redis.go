package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lowc1012/rate-limited-transport/internal/log"
	"github.com/lowc1012/rate-limited-transport/pkg/protocol"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultKeyPrefix = "rpc"

	// BLPOP does not support timeouts below one second
	pollTimeout = time.Second
)

// ensure that RedisTransport satisfies the Transport interface
var _ Transport = &RedisTransport{}

// RedisSession names the pair of Redis lists used by one client/server conversation.
type RedisSession struct {
	Prefix string
	ID     string
}

// NewRedisSession creates a session with a random ID.
func NewRedisSession() RedisSession {
	return RedisSession{Prefix: defaultKeyPrefix, ID: uuid.New().String()}
}

func (s RedisSession) key(direction string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return fmt.Sprintf("%s:%s:%s", prefix, s.ID, direction)
}

// ClientToServerKey is the list the client pushes to and the server pops from.
func (s RedisSession) ClientToServerKey() string { return s.key("c2s") }

// ServerToClientKey is the list the server pushes to and the client pops from.
func (s RedisSession) ServerToClientKey() string { return s.key("s2c") }

// Client returns the client side of the session.
func (s RedisSession) Client(client redis.UniversalClient) *RedisTransport {
	return NewRedisTransport(client, s.ClientToServerKey(), s.ServerToClientKey())
}

// Server returns the server side of the session.
func (s RedisSession) Server(client redis.UniversalClient) *RedisTransport {
	return NewRedisTransport(client, s.ServerToClientKey(), s.ClientToServerKey())
}

// RedisTransport pushes outbound messages onto one Redis list and pops inbound messages from
// another. The Redis client is owned by the caller and is not closed by Close.
type RedisTransport struct {
	client     redis.UniversalClient
	sendKey    string
	receiveKey string

	closeOnce sync.Once
	done      chan struct{}
}

func NewRedisTransport(client redis.UniversalClient, sendKey, receiveKey string) *RedisTransport {
	return &RedisTransport{
		client:     client,
		sendKey:    sendKey,
		receiveKey: receiveKey,
		done:       make(chan struct{}),
	}
}

func (t *RedisTransport) closed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *RedisTransport) Send(ctx context.Context, msg protocol.Message) error {
	if t.closed() {
		return ErrClosed
	}
	b, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if err := t.client.RPush(ctx, t.sendKey, b).Err(); err != nil {
		log.Logger().Error("Failed to push message", zap.String("key", t.sendKey), zap.Error(err))
		return err
	}
	return nil
}

// Receive blocks until a message is available, ctx is done or the transport is closed. Entries
// that are not valid JSON-RPC are logged and dropped.
func (t *RedisTransport) Receive(ctx context.Context) (protocol.Message, error) {
	for {
		if t.closed() {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// BLPOP returns the popped key followed by the value
		res, err := t.client.BLPop(ctx, pollTimeout, t.receiveKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if t.closed() {
				return nil, io.EOF
			}
			log.Logger().Error("Failed to pop message", zap.String("key", t.receiveKey), zap.Error(err))
			return nil, err
		}
		if len(res) != 2 {
			continue
		}

		msg, err := protocol.Decode([]byte(res[1]))
		if err != nil {
			log.Logger().Warn("Dropping malformed message", zap.String("key", t.receiveKey), zap.Error(err))
			continue
		}
		return msg, nil
	}
}

// Close is idempotent. Messages still queued in Redis are left in place.
func (t *RedisTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}
