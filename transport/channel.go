// Package transport provides core.Transport implementations for delivering
// finalizer records to telemetry backends. All transports are
// fire-and-forget: Emit never blocks the emitting goroutine, and delivery
// failures are absorbed here, not surfaced to the emitters.
package transport

import (
	"sync/atomic"
	"time"

	"github.com/itsneelabh/finalwatch/core"
)

// dropWarnInterval throttles buffer-full warnings across all transports.
const dropWarnInterval = 5 * time.Second

// Channel is an in-process transport backed by a buffered channel. A
// consumer drains Records(); when the buffer is full, Emit drops the record
// and counts the drop rather than stalling an emission pass that is holding
// the registry lock.
type Channel struct {
	records chan *core.FinalizerRecord
	dropped atomic.Int64
	logger  core.Logger

	// dropLimiter keeps a stalled consumer from flooding the logs.
	dropLimiter *core.RateLimiter
}

// NewChannel creates a channel transport with the given buffer capacity.
// A nil logger disables logging.
func NewChannel(bufferSize int, logger core.Logger) *Channel {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Channel{
		records:     make(chan *core.FinalizerRecord, bufferSize),
		logger:      logger,
		dropLimiter: core.NewRateLimiter(dropWarnInterval),
	}
}

// Emit enqueues the record, dropping it when the buffer is full.
func (c *Channel) Emit(record *core.FinalizerRecord) {
	select {
	case c.records <- record:
	default:
		c.dropped.Add(1)
		if c.dropLimiter.Allow() {
			c.logger.Warn("Dropping telemetry record, buffer full", map[string]interface{}{
				"entity":  record.EntityName,
				"dropped": c.dropped.Load(),
			})
		}
	}
}

// Records returns the consumer side of the transport.
func (c *Channel) Records() <-chan *core.FinalizerRecord {
	return c.records
}

// Dropped returns the number of records dropped due to a full buffer.
func (c *Channel) Dropped() int64 {
	return c.dropped.Load()
}
