package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/finalwatch/core"
)

// requireRedis checks if Redis is available and skips the test if not
func requireRedis(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping Redis test in short mode")
	}

	conn, err := net.DialTimeout("tcp", "localhost:6379", 500*time.Millisecond)
	if err != nil {
		t.Skip("Redis not available at localhost:6379 (connection refused)")
	}
	_ = conn.Close()
}

func TestRedisRequiresURL(t *testing.T) {
	_, err := NewRedis(RedisOptions{})
	assert.ErrorIs(t, err, core.ErrMissingConfiguration)
}

func TestRedisRejectsInvalidURL(t *testing.T) {
	_, err := NewRedis(RedisOptions{RedisURL: "not-a-url"})
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestRedisAppendsToStream(t *testing.T) {
	requireRedis(t)

	stream := "finalwatch:test:" + time.Now().Format("20060102150405.000")
	transport, err := NewRedis(RedisOptions{
		RedisURL: "redis://localhost:6379",
		Stream:   stream,
	})
	require.NoError(t, err)

	transport.Emit(record("StreamEntity"))
	require.NoError(t, transport.Close()) // flushes the queue

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	entries, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	payload, ok := entries[0].Values["record"].(string)
	require.True(t, ok)
	assert.Contains(t, payload, `"entity":"StreamEntity"`)

	// Clean up test data
	_ = client.Del(ctx, stream).Err()
}

func TestRedisEmitAfterCloseDrops(t *testing.T) {
	requireRedis(t)

	transport, err := NewRedis(RedisOptions{RedisURL: "redis://localhost:6379"})
	require.NoError(t, err)
	require.NoError(t, transport.Close())

	transport.Emit(record("Late"))
	assert.Equal(t, int64(1), transport.Dropped())
}
