package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/itsneelabh/finalwatch/core"
)

// PeriodicEmitter drives full-registry emission passes. One pass captures a
// single timestamp, then traverses every registry entry under the
// registry-wide lock and emits one record per entry, all carrying exactly
// that timestamp. Downstream consumers rely on the shared timestamp to
// correlate a batch as "the state of the registry at instant T".
//
// The lock is held for the entire traversal rather than per-entry. That
// makes the pass non-interruptible by registry mutators mid-scan, trading
// mutator latency for snapshot consistency.
type PeriodicEmitter struct {
	registry  core.FinalizerRegistry
	assembler *EventAssembler
	transport core.Transport
	clock     core.Clock
	logger    core.Logger
	metrics   *MetricInstruments
	telemetry *Provider

	// maxEntries bounds one pass for diagnostic scans; 0 means unbounded.
	maxEntries int

	passes  atomic.Int64
	emitted atomic.Int64
	skipped atomic.Int64
}

// PeriodicOptions configures a PeriodicEmitter beyond its collaborators.
type PeriodicOptions struct {
	// MaxEntriesPerPass stops a pass after visiting this many entries,
	// using the registry's early-stop protocol. 0 disables the bound.
	MaxEntriesPerPass int
}

// NewPeriodicEmitter creates a periodic emitter. clock defaults to the
// system clock, logger to a no-op; metrics and telemetry may be nil.
func NewPeriodicEmitter(registry core.FinalizerRegistry, assembler *EventAssembler, transport core.Transport, clock core.Clock, logger core.Logger, metrics *MetricInstruments, telemetry *Provider, opts PeriodicOptions) *PeriodicEmitter {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &PeriodicEmitter{
		registry:   registry,
		assembler:  assembler,
		transport:  transport,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		telemetry:  telemetry,
		maxEntries: opts.MaxEntriesPerPass,
	}
}

// Pass runs one full emission pass: capture T, lock, visit, emit, unlock.
// Per-entity assembly failures are logged and skipped; they never abort the
// remainder of the pass. Returns the number of records emitted.
func (p *PeriodicEmitter) Pass(ctx context.Context) int {
	if p.telemetry != nil {
		_, span := p.telemetry.StartSpan(ctx, "finalwatch.periodic.pass")
		defer span.End()
	}

	started := time.Now()
	timestamp := p.clock.Now()

	count := 0
	p.registry.ForEach(func(entity core.Entity, entry core.RegistryEntry) bool {
		record, err := p.assembler.Assemble(entity, entry, timestamp)
		if err != nil {
			// Entries for non-finalizer entities indicate an upstream
			// invariant violation; surface it and keep scanning.
			p.skipped.Add(1)
			p.logger.Error("Skipping registry entry", map[string]interface{}{
				"entity": entity.Name(),
				"error":  err.Error(),
			})
			return true
		}
		p.transport.Emit(record)
		count++
		return p.maxEntries == 0 || count < p.maxEntries
	})

	p.passes.Add(1)
	p.emitted.Add(int64(count))
	if p.metrics != nil {
		bg := context.Background()
		_ = p.metrics.RecordCounter(bg, MetricRecordsEmitted, int64(count))
		_ = p.metrics.RecordDuration(bg, MetricPassDuration, float64(time.Since(started).Milliseconds()))
	}
	p.logger.Debug("Periodic pass complete", map[string]interface{}{
		"records":     count,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return count
}

// Run drives passes on a ticker until ctx is cancelled. A pass already in
// progress always runs to completion; cancellation is only observed between
// passes.
func (p *PeriodicEmitter) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return core.ErrInvalidConfiguration
	}
	p.logger.Info("Periodic emitter started", map[string]interface{}{
		"interval": interval.String(),
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Periodic emitter stopped", map[string]interface{}{
				"passes":  p.passes.Load(),
				"emitted": p.emitted.Load(),
			})
			return ctx.Err()
		case <-ticker.C:
			p.Pass(ctx)
		}
	}
}

// Passes returns the number of completed passes.
func (p *PeriodicEmitter) Passes() int64 { return p.passes.Load() }

// Emitted returns the total number of records emitted by passes.
func (p *PeriodicEmitter) Emitted() int64 { return p.emitted.Load() }
