// Package registry provides the in-memory finalizer table: per-entity
// lifecycle counters mutated by the host's object-lifecycle machinery and
// read concurrently by the telemetry emitters.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/itsneelabh/finalwatch/core"
)

// Entry accumulates finalization counters for one entity. Counters are
// atomic so readers never observe torn values while lifecycle goroutines
// mutate them. At the source of each mutation finalized <= enqueued <=
// registered holds; momentary reads across the three may still observe an
// entry mid-mutation.
type Entry struct {
	entity     core.Entity
	registered atomic.Uint64
	enqueued   atomic.Uint64
	finalized  atomic.Uint64
}

// Entity returns the entity this entry belongs to.
func (e *Entry) Entity() core.Entity { return e.entity }

// Registered returns the count of instances registered for finalization.
func (e *Entry) Registered() uint64 { return e.registered.Load() }

// Enqueued returns the count of instances moved to the pending queue.
func (e *Entry) Enqueued() uint64 { return e.enqueued.Load() }

// Finalized returns the count of instances that completed finalization.
func (e *Entry) Finalized() uint64 { return e.finalized.Load() }

// OnEnqueued records one instance moved to the pending-finalization queue.
func (e *Entry) OnEnqueued() { e.enqueued.Add(1) }

// OnFinalized records one completed finalization.
func (e *Entry) OnFinalized() { e.finalized.Add(1) }

// Table is a coarse-locked map of entities to their counter entries.
// It implements core.FinalizerRegistry. The single table lock protects
// structural mutation (insert/remove) and full traversals; counter updates
// on an Entry never take it.
type Table struct {
	mu      sync.Mutex
	entries map[core.Entity]*Entry
	logger  core.Logger
}

// NewTable creates an empty finalizer table. A nil logger disables logging.
func NewTable(logger core.Logger) *Table {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Table{
		entries: make(map[core.Entity]*Entry),
		logger:  logger,
	}
}

// Register records one instance registration for the entity, creating its
// entry on first use. Entities without a finalizer are rejected.
func (t *Table) Register(entity core.Entity) (*Entry, error) {
	if entity == nil || !entity.HasFinalizer() {
		return nil, core.ErrNoFinalizer
	}

	t.mu.Lock()
	entry, ok := t.entries[entity]
	if !ok {
		entry = &Entry{entity: entity}
		t.entries[entity] = entry
		t.logger.Debug("Created finalizer table entry", map[string]interface{}{
			"entity": entity.Name(),
		})
	}
	t.mu.Unlock()

	entry.registered.Add(1)
	return entry, nil
}

// Lookup returns the entry for the entity, or nil when absent. The lock is
// held only for the map access, never across a traversal, so unload
// processing can call it without risking the traversal lock ordering.
func (t *Table) Lookup(entity core.Entity) core.RegistryEntry {
	t.mu.Lock()
	entry, ok := t.entries[entity]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return entry
}

// ForEach visits every entry present at lock-acquisition time under the
// table-wide lock. The visitor returning false stops the traversal; no
// further entries are visited. Order is map order: unspecified.
func (t *Table) ForEach(visit func(core.Entity, core.RegistryEntry) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for entity, entry := range t.entries {
		if !visit(entity, entry) {
			return
		}
	}
}

// Remove deletes the entity's entry, if any. Called when the entity is
// discarded; a concurrent emitter that already looked the entry up keeps
// its reference and reads final counter values.
func (t *Table) Remove(entity core.Entity) {
	t.mu.Lock()
	_, ok := t.entries[entity]
	delete(t.entries, entity)
	t.mu.Unlock()

	if ok {
		t.logger.Debug("Removed finalizer table entry", map[string]interface{}{
			"entity": entity.Name(),
		})
	}
}

// Len returns the number of entries currently in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
