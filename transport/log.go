package transport

import (
	"sync/atomic"

	"github.com/itsneelabh/finalwatch/core"
)

// Log writes every record through a core.Logger. Intended for local
// development, where seeing records on stdout beats wiring a backend.
type Log struct {
	logger  core.Logger
	emitted atomic.Int64
}

// NewLog creates a logging transport.
func NewLog(logger core.Logger) *Log {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Log{logger: logger}
}

// Emit logs the record at info level.
func (t *Log) Emit(record *core.FinalizerRecord) {
	t.emitted.Add(1)
	t.logger.Info("Finalizer record", map[string]interface{}{
		"entity":      record.EntityName,
		"timestamp":   record.Timestamp,
		"code_source": record.CodeSource,
		"registered":  record.Registered,
		"enqueued":    record.Enqueued,
		"finalized":   record.Finalized,
	})
}

// Emitted returns the number of records logged.
func (t *Log) Emitted() int64 {
	return t.emitted.Load()
}
