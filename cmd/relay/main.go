package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lowc1012/rate-limited-transport/internal/log"
	"github.com/lowc1012/rate-limited-transport/pkg/ratelimiter"
	"github.com/lowc1012/rate-limited-transport/pkg/transport"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app        = kingpin.New("relay", "Relays JSON-RPC messages from stdin to a sink, rate limited per message category.")
	configFile = app.Flag("config", "YAML file with per category bucket overrides.").String()
	sink       = app.Flag("sink", "Where admitted messages go.").Default("stdout").Enum("stdout", "redis")
	redisAddr  = app.Flag("redis-addr", "Redis address for the redis sink.").Default("localhost:6379").String()
	session    = app.Flag("session", "Redis session ID; a random one is generated when empty.").String()
	logLevel   = app.Flag("log-level", "Log level.").Default("info").Enum("debug", "info", "warn", "error")
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := log.NewLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	log.SetLogger(logger)
	defer logger.Sync()

	if err := run(); err != nil {
		log.Logger().Fatal("Relay failed", zap.Error(err))
	}
}

func run() error {
	cfg := ratelimiter.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = ratelimiter.LoadConfig(*configFile); err != nil {
			return err
		}
	}
	for _, c := range ratelimiter.Categories {
		log.Logger().Debug("Bucket configured", zap.Stringer("category", c), zap.Stringer("bucket", cfg.BucketFor(c)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out transport.Transport
	switch *sink {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", *redisAddr, err)
		}
		s := transport.NewRedisSession()
		if *session != "" {
			s.ID = *session
		}
		log.Logger().Info("Relaying to redis", zap.String("key", s.ClientToServerKey()))
		out = s.Client(client)
	default:
		out = transport.NewStreamTransport(io.NopCloser(strings.NewReader("")), nopCloser{os.Stdout})
	}

	limiter := ratelimiter.NewMessageRateLimiter(cfg)
	limited := transport.NewRateLimitedTransport(out, limiter)
	in := transport.NewStdioTransport()

	err := relay(ctx, in, limited)
	if closeErr := limited.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	stats := limiter.Stats()
	for _, c := range ratelimiter.Categories {
		s := stats[c]
		log.Logger().Info("Relay statistics",
			zap.Stringer("category", c),
			zap.Uint64("allowed", s.Allowed),
			zap.Uint64("denied", s.Denied))
	}
	return err
}

// relay copies messages from in to out until in is exhausted. Rate limited messages are dropped.
func relay(ctx context.Context, in, out transport.Transport) error {
	for {
		msg, err := in.Receive(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := out.Send(ctx, msg); err != nil {
			if transport.IsRateLimited(err) {
				log.Logger().Debug("Dropped message", zap.Error(err))
				continue
			}
			return err
		}
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
