package telemetry

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/itsneelabh/finalwatch/core"
)

func TestInternContentEquality(t *testing.T) {
	si := NewSymbolInterner()

	a := si.Intern("file:/opt/app/lib.jar")
	b := si.Intern(string([]byte("file:/opt/app/lib.jar"))) // content-equal, distinct backing
	if a != b {
		t.Errorf("content-equal strings got different ids: %d vs %d", a, b)
	}

	c := si.Intern("file:/opt/app/other.jar")
	if c == a {
		t.Errorf("distinct strings share id %d", a)
	}

	if si.Len() != 2 {
		t.Errorf("expected 2 interned symbols, got %d", si.Len())
	}
}

func TestInternNoValueSentinel(t *testing.T) {
	si := NewSymbolInterner()

	if id := si.Intern(""); id != core.NoSymbol {
		t.Fatalf("empty string interned to %d, want NoSymbol", id)
	}
	if si.Len() != 0 {
		t.Errorf("no-value intern allocated a slot: len=%d", si.Len())
	}

	// Repeated calls stay stable and never allocate.
	for i := 0; i < 3; i++ {
		if id := si.Intern(""); id != core.NoSymbol {
			t.Fatalf("no-value intern returned %d on call %d", id, i)
		}
	}
	if si.Len() != 0 {
		t.Errorf("sentinel interning grew the table to %d", si.Len())
	}
}

func TestInternIdempotent(t *testing.T) {
	si := NewSymbolInterner()
	first := si.Intern("jrt:/java.base")
	for i := 0; i < 10; i++ {
		if got := si.Intern("jrt:/java.base"); got != first {
			t.Fatalf("repeat intern returned %d, want %d", got, first)
		}
	}
}

func TestInternLookupRoundTrip(t *testing.T) {
	si := NewSymbolInterner()
	id := si.Intern("file:/srv/app.jar")

	content, ok := si.Lookup(id)
	if !ok || content != "file:/srv/app.jar" {
		t.Errorf("Lookup(%d) = %q, %v", id, content, ok)
	}

	if _, ok := si.Lookup(core.NoSymbol); ok {
		t.Error("Lookup(NoSymbol) reported a value")
	}
	if _, ok := si.Lookup(core.SymbolID(99)); ok {
		t.Error("Lookup of unassigned id reported a value")
	}
}

// Ids in received records are untrusted input: values past the signed-int
// range must come back as "not assigned", never index the table.
func TestInternLookupUntrustedID(t *testing.T) {
	si := NewSymbolInterner()
	si.Intern("file:/srv/app.jar")

	if _, ok := si.Lookup(core.SymbolID(math.MaxUint64)); ok {
		t.Error("Lookup of out-of-range id reported a value")
	}
	if _, ok := si.Lookup(core.SymbolID(math.MaxInt64) + 1); ok {
		t.Error("Lookup past the signed-int range reported a value")
	}
}

// TestInternConcurrentFirstUse hammers first-use interning from many
// goroutines: every content must map to exactly one id.
func TestInternConcurrentFirstUse(t *testing.T) {
	si := NewSymbolInterner()

	const goroutines = 16
	const symbols = 50

	results := make([][]core.SymbolID, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids := make([]core.SymbolID, symbols)
			for i := 0; i < symbols; i++ {
				ids[i] = si.Intern(fmt.Sprintf("file:/lib/module-%d.jar", i))
			}
			results[g] = ids
		}(g)
	}
	wg.Wait()

	for g := 1; g < goroutines; g++ {
		for i := 0; i < symbols; i++ {
			if results[g][i] != results[0][i] {
				t.Fatalf("goroutine %d saw id %d for symbol %d, goroutine 0 saw %d",
					g, results[g][i], i, results[0][i])
			}
		}
	}
	if si.Len() != symbols {
		t.Errorf("expected %d symbols after concurrent interning, got %d", symbols, si.Len())
	}
}
