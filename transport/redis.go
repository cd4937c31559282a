package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/itsneelabh/finalwatch/core"
)

const (
	// defaultStream is the Redis stream records are appended to when the
	// options leave it unset. Keys are namespaced to prevent collisions
	// with other applications sharing the server.
	defaultStream = "finalwatch:records"

	// writerBuffer is the internal queue between Emit and the writer
	// goroutine. Emit never waits on the network.
	writerBuffer = 1024

	connectTimeout = 5 * time.Second
	writeTimeout   = 2 * time.Second
)

// RedisOptions configures the Redis stream transport.
type RedisOptions struct {
	// RedisURL in redis://host:port/db form.
	RedisURL string
	// Stream is the stream key; defaults to "finalwatch:records".
	Stream string
	// MaxLen caps the stream length (approximate trimming); 0 = unbounded.
	MaxLen int64
	// Logger is optional.
	Logger core.Logger
}

// Redis publishes records as JSON entries on a Redis stream via XADD.
// Emit hands the record to an internal writer goroutine, so emission passes
// never block on the network; when the internal queue is full the record is
// dropped and counted.
type Redis struct {
	client  *redis.Client
	stream  string
	maxLen  int64
	logger  core.Logger
	queue   chan *core.FinalizerRecord
	dropped atomic.Int64

	closeOnce sync.Once
	done      chan struct{}
	drained   chan struct{}

	dropLimiter *core.RateLimiter
}

// NewRedis creates a Redis stream transport and verifies connectivity with
// a ping before returning.
func NewRedis(opts RedisOptions) (*Redis, error) {
	logger := opts.Logger
	if logger == nil {
		logger = &core.NoOpLogger{}
	}

	if opts.RedisURL == "" {
		logger.Error("Failed to initialize Redis transport", map[string]interface{}{
			"error":      "Redis URL is required",
			"error_type": "ErrMissingConfiguration",
		})
		return nil, fmt.Errorf("redis URL is required: %w", core.ErrMissingConfiguration)
	}

	redisOpt, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		logger.Error("Failed to parse Redis URL", map[string]interface{}{
			"error":     err,
			"redis_url": opts.RedisURL,
		})
		return nil, fmt.Errorf("invalid Redis URL: %w", core.ErrInvalidConfiguration)
	}

	client := redis.NewClient(redisOpt)
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error("Redis ping failed", map[string]interface{}{
			"error":     err.Error(),
			"redis_url": opts.RedisURL,
		})
		return nil, fmt.Errorf("redis ping failed: %w", core.ErrConnectionFailed)
	}

	stream := opts.Stream
	if stream == "" {
		stream = defaultStream
	}

	t := &Redis{
		client:      client,
		stream:      stream,
		maxLen:      opts.MaxLen,
		logger:      logger,
		queue:       make(chan *core.FinalizerRecord, writerBuffer),
		done:        make(chan struct{}),
		drained:     make(chan struct{}),
		dropLimiter: core.NewRateLimiter(dropWarnInterval),
	}
	go t.writer()

	logger.Info("Redis transport connected", map[string]interface{}{
		"stream": stream,
	})
	return t, nil
}

// Emit enqueues the record for the writer goroutine. Never blocks.
func (t *Redis) Emit(record *core.FinalizerRecord) {
	select {
	case <-t.done:
		t.dropped.Add(1)
	default:
		select {
		case t.queue <- record:
		default:
			t.dropped.Add(1)
			if t.dropLimiter.Allow() {
				t.logger.Warn("Dropping telemetry record, Redis writer backlogged", map[string]interface{}{
					"entity":  record.EntityName,
					"dropped": t.dropped.Load(),
				})
			}
		}
	}
}

// writer drains the queue and appends entries to the stream.
func (t *Redis) writer() {
	defer close(t.drained)
	for {
		select {
		case <-t.done:
			// Flush whatever is already queued, then stop.
			for {
				select {
				case record := <-t.queue:
					t.append(record)
				default:
					return
				}
			}
		case record := <-t.queue:
			t.append(record)
		}
	}
}

func (t *Redis) append(record *core.FinalizerRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		t.logger.Error("Failed to encode record", map[string]interface{}{
			"entity": record.EntityName,
			"error":  err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	args := &redis.XAddArgs{
		Stream: t.stream,
		Values: map[string]interface{}{"record": payload},
	}
	if t.maxLen > 0 {
		args.MaxLen = t.maxLen
		args.Approx = true
	}
	if err := t.client.XAdd(ctx, args).Err(); err != nil {
		t.dropped.Add(1)
		if t.dropLimiter.Allow() {
			t.logger.Error("Redis XADD failed", map[string]interface{}{
				"stream": t.stream,
				"error":  err.Error(),
			})
		}
	}
}

// Dropped returns the number of records dropped or failed to deliver.
func (t *Redis) Dropped() int64 {
	return t.dropped.Load()
}

// Close stops the writer after flushing queued records and closes the
// client connection.
func (t *Redis) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		<-t.drained
		err = t.client.Close()
	})
	return err
}
