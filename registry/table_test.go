package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/finalwatch/core"
)

type testEntity struct {
	name      string
	finalizer bool
}

func (e *testEntity) Name() string                  { return e.name }
func (e *testEntity) HasFinalizer() bool            { return e.finalizer }
func (e *testEntity) ProtectionDomain() core.Object { return nil }

func TestTableRegisterAndLookup(t *testing.T) {
	table := NewTable(nil)
	entity := &testEntity{name: "Conn", finalizer: true}

	entry, err := table.Register(entity)
	require.NoError(t, err)
	require.NotNil(t, entry)

	_, err = table.Register(entity)
	require.NoError(t, err)
	_, err = table.Register(entity)
	require.NoError(t, err)

	entry.OnEnqueued()
	entry.OnEnqueued()
	entry.OnFinalized()

	got := table.Lookup(entity)
	require.NotNil(t, got)
	assert.Equal(t, uint64(3), got.Registered())
	assert.Equal(t, uint64(2), got.Enqueued())
	assert.Equal(t, uint64(1), got.Finalized())
	assert.Equal(t, 1, table.Len())
}

func TestTableRejectsNonFinalizerEntity(t *testing.T) {
	table := NewTable(nil)

	_, err := table.Register(&testEntity{name: "Plain", finalizer: false})
	assert.ErrorIs(t, err, core.ErrNoFinalizer)

	_, err = table.Register(nil)
	assert.ErrorIs(t, err, core.ErrNoFinalizer)
}

func TestTableLookupAbsent(t *testing.T) {
	table := NewTable(nil)
	entry := table.Lookup(&testEntity{name: "Ghost", finalizer: true})
	assert.Nil(t, entry)
}

func TestTableRemove(t *testing.T) {
	table := NewTable(nil)
	entity := &testEntity{name: "Gone", finalizer: true}

	entry, err := table.Register(entity)
	require.NoError(t, err)

	table.Remove(entity)
	assert.Nil(t, table.Lookup(entity))
	assert.Equal(t, 0, table.Len())

	// A holder of the entry keeps reading final counter values.
	assert.Equal(t, uint64(1), entry.Registered())

	// Removing twice is harmless.
	table.Remove(entity)
}

func TestTableForEachVisitsAll(t *testing.T) {
	table := NewTable(nil)
	names := map[string]bool{"A": false, "B": false, "C": false}
	for name := range names {
		_, err := table.Register(&testEntity{name: name, finalizer: true})
		require.NoError(t, err)
	}

	table.ForEach(func(entity core.Entity, entry core.RegistryEntry) bool {
		names[entity.Name()] = true
		return true
	})

	for name, visited := range names {
		assert.True(t, visited, "entity %s not visited", name)
	}
}

// The visitor returning false must stop the traversal immediately: no
// further visits occur in that pass.
func TestTableForEachEarlyStop(t *testing.T) {
	table := NewTable(nil)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		_, err := table.Register(&testEntity{name: name, finalizer: true})
		require.NoError(t, err)
	}

	visits := 0
	table.ForEach(func(entity core.Entity, entry core.RegistryEntry) bool {
		visits++
		return visits < 2
	})
	assert.Equal(t, 2, visits)
}

// Counter mutation races with traversal: every observed read must be a
// value some mutator actually stored (atomics, not torn reads), and the
// traversal itself must not race structurally.
func TestTableConcurrentMutationAndTraversal(t *testing.T) {
	table := NewTable(nil)
	entity := &testEntity{name: "Hot", finalizer: true}
	entry, err := table.Register(entity)
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if _, err := table.Register(entity); err != nil {
				return
			}
			entry.OnEnqueued()
			entry.OnFinalized()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			table.ForEach(func(e core.Entity, re core.RegistryEntry) bool {
				_ = re.Registered()
				_ = re.Enqueued()
				_ = re.Finalized()
				return true
			})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = table.Lookup(entity)
		}
	}()

	// Wait for the mutator and lookup goroutines, then release the reader.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	close(stop)
	<-done

	got := table.Lookup(entity)
	require.NotNil(t, got)
	assert.Equal(t, uint64(1001), got.Registered())
	assert.Equal(t, uint64(1000), got.Enqueued())
	assert.Equal(t, uint64(1000), got.Finalized())
}
