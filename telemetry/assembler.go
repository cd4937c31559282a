package telemetry

import (
	"context"
	"time"

	"github.com/itsneelabh/finalwatch/core"
)

// EventAssembler builds one FinalizerRecord per (entity, optional entry,
// timestamp) triple. It resolves and interns the entity's code-source
// location, reads the entry's counters, and returns the assembled record
// without emitting it; emission is the caller's side effect.
//
// Resolution failures degrade: the record is still produced with
// core.NoSymbol as its code-source, because telemetry must not be lost when
// metadata is unavailable. The failure is logged (rate-limited) and counted.
type EventAssembler struct {
	resolver  *CodeSourceResolver
	interner  *SymbolInterner
	sessionID string
	logger    core.Logger
	metrics   *MetricInstruments

	// errorLimiter keeps a persistently broken accessor from flooding the
	// logs once per entity per pass.
	errorLimiter *core.RateLimiter
}

// NewEventAssembler creates an assembler. metrics may be nil (no
// self-observability counters are recorded then).
func NewEventAssembler(resolver *CodeSourceResolver, interner *SymbolInterner, sessionID string, logger core.Logger, metrics *MetricInstruments) *EventAssembler {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &EventAssembler{
		resolver:     resolver,
		interner:     interner,
		sessionID:    sessionID,
		logger:       logger,
		metrics:      metrics,
		errorLimiter: core.NewRateLimiter(1 * time.Second),
	}
}

// Assemble builds the record for entity at ts. entry may be nil, meaning
// the entity is being discarded with no registry footprint: all counters
// are recorded as zero. Calling Assemble for an entity without a finalizer
// is a programming error upstream and fails with core.ErrNoFinalizer
// producing no record.
func (a *EventAssembler) Assemble(entity core.Entity, entry core.RegistryEntry, ts time.Time) (*core.FinalizerRecord, error) {
	if entity == nil || !entity.HasFinalizer() {
		return nil, core.ErrNoFinalizer
	}

	symbol := core.NoSymbol
	location, ok, err := a.resolver.Resolve(entity)
	switch {
	case err != nil:
		// Degrade-and-log: a structural resolution failure must not cost
		// the record or abort the surrounding pass.
		if a.metrics != nil {
			_ = a.metrics.RecordError(context.Background(), MetricResolutionFailures, "resolution")
		}
		if a.errorLimiter.Allow() {
			a.logger.Error("Code-source resolution failed", map[string]interface{}{
				"entity": entity.Name(),
				"error":  err.Error(),
				"impact": "record emitted without code-source",
			})
		}
	case ok:
		symbol = a.interner.Intern(location)
	}

	record := &core.FinalizerRecord{
		Timestamp:  ts,
		SessionID:  a.sessionID,
		Entity:     entity,
		EntityName: entity.Name(),
		CodeSource: symbol,
	}
	if entry != nil {
		record.Registered = entry.Registered()
		record.Enqueued = entry.Enqueued()
		record.Finalized = entry.Finalized()
	}
	return record, nil
}
