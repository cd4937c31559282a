package telemetry

import (
	"sync"
	"time"

	"github.com/itsneelabh/finalwatch/core"
)

// fakeEntity is a comparable Entity double.
type fakeEntity struct {
	name      string
	finalizer bool
	pd        core.Object
}

func (e *fakeEntity) Name() string                  { return e.name }
func (e *fakeEntity) HasFinalizer() bool            { return e.finalizer }
func (e *fakeEntity) ProtectionDomain() core.Object { return e.pd }

// fakeAccessor simulates the reflective field accessor with pluggable
// behavior per method.
type fakeAccessor struct {
	objectField func(obj core.Object, name, signature string) (core.Object, error)
	stringField func(obj core.Object, name, signature string, scratch *core.Scratch) (string, bool, error)
}

func (a *fakeAccessor) ObjectField(obj core.Object, name, signature string) (core.Object, error) {
	if a.objectField == nil {
		return nil, nil
	}
	return a.objectField(obj, name, signature)
}

func (a *fakeAccessor) StringField(obj core.Object, name, signature string, scratch *core.Scratch) (string, bool, error) {
	if a.stringField == nil {
		return "", false, nil
	}
	return a.stringField(obj, name, signature, scratch)
}

// happyAccessor resolves every entity with a protection domain to location.
func happyAccessor(location string) *fakeAccessor {
	return &fakeAccessor{
		objectField: func(obj core.Object, name, signature string) (core.Object, error) {
			return "codesource-object", nil
		},
		stringField: func(obj core.Object, name, signature string, scratch *core.Scratch) (string, bool, error) {
			// Exercise the scratch contract the way a real accessor would:
			// decode into borrowed bytes, then materialize the string.
			buf := scratch.Grab(len(location))
			copy(buf, location)
			return string(buf), true, nil
		},
	}
}

// captureTransport records every emitted record for assertions.
type captureTransport struct {
	mu      sync.Mutex
	records []*core.FinalizerRecord
}

func (t *captureTransport) Emit(record *core.FinalizerRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, record)
}

func (t *captureTransport) Records() []*core.FinalizerRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*core.FinalizerRecord, len(t.records))
	copy(out, t.records)
	return out
}

// steppedClock returns strictly increasing timestamps, one step per Now.
type steppedClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newSteppedClock() *steppedClock {
	return &steppedClock{
		now:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		step: time.Millisecond,
	}
}

func (c *steppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// staticEntry is a RegistryEntry double with fixed counters.
type staticEntry struct {
	registered, enqueued, finalized uint64
}

func (e *staticEntry) Registered() uint64 { return e.registered }
func (e *staticEntry) Enqueued() uint64   { return e.enqueued }
func (e *staticEntry) Finalized() uint64  { return e.finalized }

// mapRegistry is a minimal FinalizerRegistry double for emitter tests.
// lookups and visits count Lookup calls and visitor invocations so tests
// can assert how much of the registry an emitter actually touched.
type mapRegistry struct {
	mu      sync.Mutex
	entries map[core.Entity]core.RegistryEntry
	lookups int
	visits  int
}

func newMapRegistry() *mapRegistry {
	return &mapRegistry{entries: make(map[core.Entity]core.RegistryEntry)}
}

func (r *mapRegistry) put(entity core.Entity, entry core.RegistryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entity] = entry
}

func (r *mapRegistry) Lookup(entity core.Entity) core.RegistryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	entry, ok := r.entries[entity]
	if !ok {
		return nil
	}
	return entry
}

func (r *mapRegistry) ForEach(visit func(core.Entity, core.RegistryEntry) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for entity, entry := range r.entries {
		r.visits++
		if !visit(entity, entry) {
			return
		}
	}
}

func newTestAssembler(accessor core.FieldAccessor) *EventAssembler {
	return NewEventAssembler(NewCodeSourceResolver(accessor), NewSymbolInterner(), "test-session", &core.NoOpLogger{}, nil)
}
