package core

import "time"

// SymbolID is a stable small integer identifier for an interned string.
type SymbolID uint64

// NoSymbol is the distinguished "no value" symbol id. It is never assigned
// to interned content.
const NoSymbol SymbolID = 0

// FinalizerRecord is one emitted telemetry unit: the finalization counters
// observed for an entity at a single instant, plus the interned id of its
// code-source location when one could be resolved.
//
// Records are immutable once assembled; ownership transfers to the
// Transport on Emit.
type FinalizerRecord struct {
	// Timestamp is the capture instant. Every record of one periodic pass
	// carries the identical timestamp.
	Timestamp time.Time `json:"timestamp"`

	// SessionID identifies the telemetry session that produced the record.
	SessionID string `json:"session_id"`

	// Entity is the reported entity. Excluded from serialization; the
	// name travels on the wire instead.
	Entity Entity `json:"-"`

	// EntityName is the entity's stable name, duplicated for transports.
	EntityName string `json:"entity"`

	// CodeSource is the interned id of the entity's code-source location,
	// or NoSymbol when resolution found no value or failed structurally.
	CodeSource SymbolID `json:"code_source"`

	// Counters observed from the registry entry. All zero when the entity
	// had no registry footprint at capture time.
	Registered uint64 `json:"registered"`
	Enqueued   uint64 `json:"enqueued"`
	Finalized  uint64 `json:"finalized"`
}
