package telemetry

import (
	"sync"

	"github.com/itsneelabh/finalwatch/core"
)

// Field names and type signatures of the security-context object graph
// traversed during code-source resolution. These mirror the host runtime's
// layout and are only meaningful to its FieldAccessor.
const (
	fieldCodeSource      = "codesource"
	sigCodeSource        = "Ljava/security/CodeSource;"
	fieldLocationNoFrag  = "locationNoFragString"
	sigLocationNoFrag    = "Ljava/lang/String;"
	scratchInitialBufLen = 256
)

// CodeSourceResolver resolves an entity's code-source location string
// through the reflective FieldAccessor collaborator:
//
//	entity -> protection domain -> codesource -> locationNoFragString
//
// Any step finding no value is a legitimate absence, not an error.
// Structural failures from the accessor (missing field, signature mismatch)
// surface as *core.ResolutionError so callers can distinguish a
// resolver/runtime mismatch from an entity that simply has no code source.
//
// Resolution runs entirely on the calling goroutine: the objects handed
// back by the accessor are not safe to move across goroutines. Transient
// decode memory comes from a pooled scratch buffer scoped to one call.
type CodeSourceResolver struct {
	accessor core.FieldAccessor
	scratch  sync.Pool
}

// NewCodeSourceResolver creates a resolver backed by the given accessor.
func NewCodeSourceResolver(accessor core.FieldAccessor) *CodeSourceResolver {
	return &CodeSourceResolver{
		accessor: accessor,
		scratch: sync.Pool{
			New: func() interface{} {
				return core.NewScratch(scratchInitialBufLen)
			},
		},
	}
}

// Resolve returns the entity's code-source location string. The bool result
// is false when any step of the chain holds no value.
func (r *CodeSourceResolver) Resolve(entity core.Entity) (string, bool, error) {
	pd := entity.ProtectionDomain()
	if pd == nil {
		return "", false, nil
	}

	scratch := r.scratch.Get().(*core.Scratch)
	defer func() {
		scratch.Reset()
		r.scratch.Put(scratch)
	}()

	cs, err := r.accessor.ObjectField(pd, fieldCodeSource, sigCodeSource)
	if err != nil {
		return "", false, core.NewResolutionError("protection domain", fieldCodeSource, sigCodeSource, err)
	}
	if cs == nil {
		return "", false, nil
	}

	location, ok, err := r.accessor.StringField(cs, fieldLocationNoFrag, sigLocationNoFrag, scratch)
	if err != nil {
		return "", false, core.NewResolutionError("code source", fieldLocationNoFrag, sigLocationNoFrag, err)
	}
	if !ok {
		return "", false, nil
	}
	return location, true, nil
}
