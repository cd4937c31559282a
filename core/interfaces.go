package core

import (
	"context"
	"time"
)

// Logger interface - minimal logging interface
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}

// Object is an opaque handle to a value owned by the host runtime.
// Objects are only meaningful to the FieldAccessor that produced them and
// must not be shared across goroutines without the accessor's own
// synchronization.
type Object interface{}

// Entity identifies a class-like type capable of owning a finalizer.
// Implementations must be comparable (usable as map keys) so the registry
// can key entries by identity.
type Entity interface {
	// Name returns a stable human-readable identifier for the entity.
	Name() string
	// HasFinalizer reports whether the entity declares a finalizer.
	// Entities without one are never processed by this subsystem.
	HasFinalizer() bool
	// ProtectionDomain returns the entity's associated protection/security
	// context object, or nil if it has none.
	ProtectionDomain() Object
}

// RegistryEntry exposes accumulated finalization counters for one Entity.
// Each counter read is individually atomic (never torn); the triple is not
// required to be transactionally consistent because other actors mutate the
// entry concurrently with reads.
type RegistryEntry interface {
	Registered() uint64
	Enqueued() uint64
	Finalized() uint64
}

// FinalizerRegistry is the external table of per-entity finalization
// counters.
type FinalizerRegistry interface {
	// Lookup returns the entry for the entity, or nil when absent.
	// Absence is expected during unload: the entry may disappear between
	// the discard decision and this call. Lookup is entity-scoped and
	// never requires the full-traversal lock.
	Lookup(entity Entity) RegistryEntry

	// ForEach visits every entry present at lock-acquisition time under
	// one registry-wide lock. Visiting order is unspecified. The visitor
	// returning false stops the traversal immediately; no further entries
	// are visited in that pass.
	ForEach(visit func(Entity, RegistryEntry) bool)
}

// FieldAccessor is the narrow reflective surface used to read fields from
// runtime objects. Structural failures (missing field, signature mismatch)
// are reported as *ResolutionError.
type FieldAccessor interface {
	// ObjectField reads an object-valued field. A nil Object with nil
	// error means the field is present but holds no value.
	ObjectField(obj Object, name, signature string) (Object, error)

	// StringField extracts a string-valued field. The scratch buffer is
	// lent for the duration of the call for transient decoding and must
	// not be retained. The bool result is false when the field holds no
	// value.
	StringField(obj Object, name, signature string, scratch *Scratch) (string, bool, error)
}

// Telemetry interface - optional self-observability support
type Telemetry interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	RecordMetric(name string, value float64, labels map[string]string)
}

// Span represents a telemetry span
type Span interface {
	End()
	SetAttribute(key string, value interface{})
	RecordError(err error)
}

// Transport delivers assembled records to a telemetry backend.
// Emit is fire-and-forget: it must not block the emitting goroutine and
// failure handling is the transport's own concern.
type Transport interface {
	Emit(record *FinalizerRecord)
}

// Clock abstracts timestamp capture so emitters can be tested
// deterministically. Now must be monotonic within a process lifetime.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by the runtime's monotonic clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// NoOpLogger provides a no-op logger implementation
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Error(msg string, fields map[string]interface{}) {}
func (n *NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}

// NoOpTransport discards every record. Useful as a safe default when no
// backend is configured.
type NoOpTransport struct{}

func (n *NoOpTransport) Emit(record *FinalizerRecord) {}

// NoOpTelemetry provides a no-op telemetry implementation
type NoOpTelemetry struct{}

func (n *NoOpTelemetry) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &NoOpSpan{}
}

func (n *NoOpTelemetry) RecordMetric(name string, value float64, labels map[string]string) {}

// NoOpSpan provides a no-op span implementation
type NoOpSpan struct{}

func (n *NoOpSpan) End()                                       {}
func (n *NoOpSpan) SetAttribute(key string, value interface{}) {}
func (n *NoOpSpan) RecordError(err error)                      {}
