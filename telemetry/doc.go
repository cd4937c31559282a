/*
Package telemetry implements periodic emission of finalizer lifecycle
records: for every entity registered with the finalization mechanism, a
record carrying its registered/enqueued/finalized counters and an interned
code-source identifier.

Architecture Overview:

The package is built from small collaborating pieces:

1. SymbolInterner - deduplicates code-source strings into stable ids
2. CodeSourceResolver - reads the code-source location through the host's
reflective field accessor
3. EventAssembler - builds one immutable record per (entity, entry,
timestamp) triple
4. PeriodicEmitter / UnloadEmitter - the two entry points that drive
assembly and hand records to the transport

Snapshot Semantics:

A periodic pass captures one timestamp, then traverses the registry under
its registry-wide lock; every record of the pass carries exactly that
timestamp, so consumers can correlate a batch as the registry state at one
instant. The unload path is independent: it takes its own timestamp, uses
only the registry's narrow entity-scoped lookup (never the traversal lock,
which could deadlock against the discard machinery), and tolerates the
entry having already been removed.

Thread Safety:

All public types are safe for concurrent use. The interner serializes
insert-or-get under a mutex so racing first-time interners of the same
content observe one id. Registry entry counters are read atomically and may
be mutated concurrently by lifecycle goroutines; a pass does not require a
transactionally consistent triple.

Failure Policy:

Telemetry must not be lost because metadata is unavailable: a structural
code-source resolution failure is logged (rate-limited), counted, and the
record is emitted with no code-source. A per-entity failure never aborts
the rest of a pass. Calling the assembler for an entity without a finalizer
is an upstream invariant violation and fails with core.ErrNoFinalizer.

Usage:

	system, err := telemetry.NewSystem(telemetry.UseProfile(telemetry.ProfileProduction), telemetry.Options{
	    Registry: table,
	    Accessor: accessor,
	})
	if err != nil {
	    return err
	}
	defer system.Shutdown(context.Background())

	go system.Run(ctx)                       // periodic passes
	hook := system.EntityUnloading           // discard machinery hook
*/
package telemetry
