package telemetry

import (
	"context"
	"sync/atomic"

	"github.com/itsneelabh/finalwatch/core"
)

// UnloadEmitter fires one last record for an entity at the point its
// discard decision is final, before the entity becomes inaccessible. It is
// invoked synchronously by the discard machinery, exactly once per entity.
//
// The emitter deliberately avoids the registry-wide traversal lock: discard
// processing holds its own locks and a coarse acquisition here could
// deadlock against them. It uses the registry's narrow entity-scoped Lookup
// instead. The entry may already be gone by the time we look - that is the
// expected outcome for an entity whose table entry was removed first, and
// it yields a record with zero counters.
type UnloadEmitter struct {
	registry  core.FinalizerRegistry
	assembler *EventAssembler
	transport core.Transport
	clock     core.Clock
	logger    core.Logger
	telemetry *Provider

	emitted atomic.Int64
}

// NewUnloadEmitter creates an unload emitter. clock defaults to the system
// clock, logger to a no-op; telemetry may be nil.
func NewUnloadEmitter(registry core.FinalizerRegistry, assembler *EventAssembler, transport core.Transport, clock core.Clock, logger core.Logger, telemetry *Provider) *UnloadEmitter {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &UnloadEmitter{
		registry:  registry,
		assembler: assembler,
		transport: transport,
		clock:     clock,
		logger:    logger,
		telemetry: telemetry,
	}
}

// EntityUnloading emits the final record for entity with a fresh timestamp
// independent of any periodic pass. Returns core.ErrNoFinalizer when called
// for an entity that cannot own a finalizer.
func (u *UnloadEmitter) EntityUnloading(ctx context.Context, entity core.Entity) error {
	if u.telemetry != nil {
		_, span := u.telemetry.StartSpan(ctx, "finalwatch.unload.emit")
		defer span.End()
	}

	timestamp := u.clock.Now()
	entry := u.registry.Lookup(entity)

	record, err := u.assembler.Assemble(entity, entry, timestamp)
	if err != nil {
		u.logger.Error("Unload emission failed", map[string]interface{}{
			"entity": entityName(entity),
			"error":  err.Error(),
		})
		return err
	}

	u.transport.Emit(record)
	u.emitted.Add(1)
	return nil
}

// Emitted returns the number of unload records emitted.
func (u *UnloadEmitter) Emitted() int64 { return u.emitted.Load() }

func entityName(entity core.Entity) string {
	if entity == nil {
		return "<nil>"
	}
	return entity.Name()
}
