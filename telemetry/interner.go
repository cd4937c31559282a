package telemetry

import (
	"sync"

	"github.com/itsneelabh/finalwatch/core"
)

// SymbolInterner deduplicates strings into stable core.SymbolID values for
// compact inclusion in telemetry records. The table is append-only for the
// lifetime of a telemetry session: ids are never reused or evicted, and
// repeated interning of content-equal strings always yields the same id.
//
// Id 0 is reserved for core.NoSymbol ("no value"); assigned ids start at 1.
type SymbolInterner struct {
	mu  sync.Mutex
	ids map[string]core.SymbolID
	rev []string // rev[id-1] is the content of id
}

// NewSymbolInterner creates an empty interner.
func NewSymbolInterner() *SymbolInterner {
	return &SymbolInterner{
		ids: make(map[string]core.SymbolID),
	}
}

// Intern returns the id for s, allocating one on first use. The empty
// string is the "no value" case and always maps to core.NoSymbol without
// allocating a slot. Insert-or-get is atomic with respect to concurrent
// interners of the same content: two callers racing on first use observe
// the same id.
func (si *SymbolInterner) Intern(s string) core.SymbolID {
	if s == "" {
		return core.NoSymbol
	}

	si.mu.Lock()
	defer si.mu.Unlock()

	if id, ok := si.ids[s]; ok {
		return id
	}
	si.rev = append(si.rev, s)
	id := core.SymbolID(len(si.rev))
	si.ids[s] = id
	return id
}

// Lookup returns the content for id. The second result is false for
// core.NoSymbol and for ids that were never assigned. Ids arriving from
// received records are untrusted; the comparison stays unsigned so no id
// value can reach the backing slice out of range.
func (si *SymbolInterner) Lookup(id core.SymbolID) (string, bool) {
	if id == core.NoSymbol {
		return "", false
	}
	si.mu.Lock()
	defer si.mu.Unlock()
	if id > core.SymbolID(len(si.rev)) {
		return "", false
	}
	return si.rev[id-1], true
}

// Len returns the number of interned strings.
func (si *SymbolInterner) Len() int {
	si.mu.Lock()
	defer si.mu.Unlock()
	return len(si.rev)
}
