package telemetry

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Health represents the health status of the emission subsystem
type Health struct {
	Enabled         bool   `json:"enabled"`
	Initialized     bool   `json:"initialized"`
	SessionID       string `json:"session_id,omitempty"`
	Passes          int64  `json:"passes"`
	RecordsEmitted  int64  `json:"records_emitted"`
	UnloadsEmitted  int64  `json:"unloads_emitted"`
	RecordsDropped  int64  `json:"records_dropped"`
	InternedSymbols int    `json:"interned_symbols"`
	Uptime          string `json:"uptime"`
}

// GetHealth returns the current health of the global system.
func GetHealth() Health {
	s := GetSystem()
	if s == nil {
		return Health{
			Enabled:     false,
			Initialized: false,
		}
	}
	return s.Health()
}

// Health reports the system's emission statistics.
func (s *System) Health() Health {
	dropped := int64(0)
	if d, ok := s.transport.(interface{ Dropped() int64 }); ok {
		dropped = d.Dropped()
	}
	return Health{
		Enabled:         s.config.Enabled,
		Initialized:     true,
		SessionID:       s.sessionID,
		Passes:          s.periodic.Passes(),
		RecordsEmitted:  s.periodic.Emitted(),
		UnloadsEmitted:  s.unload.Emitted(),
		RecordsDropped:  dropped,
		InternedSymbols: s.interner.Len(),
		Uptime:          time.Since(s.startTime).String(),
	}
}

// HealthHandler provides an HTTP endpoint for subsystem health
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	health := GetHealth()
	w.Header().Set("Content-Type", "application/json")

	if !health.Initialized {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(health)
}

// Handler returns the health endpoint wrapped with OpenTelemetry HTTP
// instrumentation, ready to mount on a mux.
func Handler() http.Handler {
	return otelhttp.NewHandler(http.HandlerFunc(HealthHandler), "finalwatch.health")
}
