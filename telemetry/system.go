package telemetry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/itsneelabh/finalwatch/core"
	"github.com/itsneelabh/finalwatch/transport"
)

var (
	// globalSystem holds the singleton System instance.
	// atomic.Value gives lock-free reads for the health surface.
	globalSystem atomic.Value // *System

	// initOnce ensures Initialize() can only succeed once.
	initOnce sync.Once
)

// Options supplies the external collaborators. Registry and Accessor are
// required; the rest default sensibly. Collaborators are injected rather
// than reached for as ambient globals so test doubles can stand in.
type Options struct {
	// Registry is the finalizer table to snapshot and look entities up in.
	Registry core.FinalizerRegistry

	// Accessor performs reflective field reads for code-source resolution.
	Accessor core.FieldAccessor

	// Transport receives assembled records. When nil, one is built from
	// Config.Transport.
	Transport core.Transport

	// Clock supplies timestamps; defaults to the system clock.
	Clock core.Clock

	// Logger defaults to a TelemetryLogger for the configured service.
	Logger core.Logger
}

// System wires the emission subsystem together: interner, resolver,
// assembler, the two emitters, transport, and self-observability. Each
// System owns one telemetry session with its own session id and interner;
// symbol ids are only meaningful within that session.
type System struct {
	config    Config
	sessionID string
	startTime time.Time

	logger    core.Logger
	provider  *Provider
	metrics   *MetricInstruments
	interner  *SymbolInterner
	assembler *EventAssembler
	periodic  *PeriodicEmitter
	unload    *UnloadEmitter
	transport core.Transport

	ownsTransport bool
}

// NewSystem builds a System from config and collaborators.
//
// When config.Enabled is false, self-observability (spans, metrics about
// the emitters) is turned off but record emission still works; disabling
// telemetry about telemetry must not silence the records themselves.
func NewSystem(config Config, opts Options) (*System, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry collaborator is required: %w", core.ErrMissingConfiguration)
	}
	if opts.Accessor == nil {
		return nil, fmt.Errorf("field accessor collaborator is required: %w", core.ErrMissingConfiguration)
	}
	if config.ServiceName == "" {
		config.ServiceName = "finalwatch"
	}
	if config.Interval <= 0 {
		config.Interval = Duration(30 * time.Second)
	}

	logger := opts.Logger
	if logger == nil {
		logger = NewTelemetryLogger(config.ServiceName)
	}

	s := &System{
		config:    config,
		sessionID: uuid.NewString(),
		startTime: time.Now(),
		logger:    logger,
	}

	if config.Enabled {
		provider, err := NewProvider(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create telemetry provider: %w", err)
		}
		s.provider = provider
		s.metrics = NewMetricInstruments("finalwatch")
	}

	s.transport = opts.Transport
	if s.transport == nil {
		built, err := buildTransport(config.Transport, logger)
		if err != nil {
			return nil, err
		}
		s.transport = built
		s.ownsTransport = true
	}

	clock := opts.Clock
	if clock == nil {
		clock = core.SystemClock{}
	}

	s.interner = NewSymbolInterner()
	resolver := NewCodeSourceResolver(opts.Accessor)
	s.assembler = NewEventAssembler(resolver, s.interner, s.sessionID, logger, s.metrics)
	s.periodic = NewPeriodicEmitter(opts.Registry, s.assembler, s.transport, clock, logger, s.metrics, s.provider, PeriodicOptions{
		MaxEntriesPerPass: config.MaxEntriesPerPass,
	})
	s.unload = NewUnloadEmitter(opts.Registry, s.assembler, s.transport, clock, logger, s.provider)

	if s.metrics != nil {
		if err := s.metrics.RegisterGauge(MetricInternerSize, func() float64 {
			return float64(s.interner.Len())
		}); err != nil {
			logger.Warn("Failed to register interner gauge", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.Info("Emission subsystem created", map[string]interface{}{
		"session_id": s.sessionID,
		"service":    config.ServiceName,
		"interval":   time.Duration(config.Interval).String(),
		"transport":  transportName(config.Transport, opts.Transport),
		"enabled":    config.Enabled,
	})
	return s, nil
}

func buildTransport(config TransportConfig, logger core.Logger) (core.Transport, error) {
	switch config.Type {
	case "channel":
		return transport.NewChannel(config.BufferSize, logger), nil
	case "redis":
		return transport.NewRedis(transport.RedisOptions{
			RedisURL: config.RedisURL,
			Stream:   config.Stream,
			Logger:   logger,
		})
	case "log":
		return transport.NewLog(logger), nil
	case "", "none":
		return &core.NoOpTransport{}, nil
	default:
		return nil, fmt.Errorf("unknown transport type %q: %w", config.Type, core.ErrInvalidConfiguration)
	}
}

func transportName(config TransportConfig, injected core.Transport) string {
	if injected != nil {
		return "injected"
	}
	if config.Type == "" {
		return "none"
	}
	return config.Type
}

// Periodic returns the periodic emitter for external schedulers that drive
// passes themselves instead of using Run.
func (s *System) Periodic() *PeriodicEmitter { return s.periodic }

// Unload returns the unload emitter for the discard machinery to hook.
func (s *System) Unload() *UnloadEmitter { return s.unload }

// Interner returns the session's symbol interner, e.g. for consumers that
// need to map symbol ids in received records back to strings.
func (s *System) Interner() *SymbolInterner { return s.interner }

// SessionID returns the session identifier stamped on every record.
func (s *System) SessionID() string { return s.sessionID }

// EntityUnloading is the unload hook: call it exactly once per discarded
// entity, synchronously, before the entity becomes inaccessible.
func (s *System) EntityUnloading(ctx context.Context, entity core.Entity) error {
	return s.unload.EntityUnloading(ctx, entity)
}

// Run drives periodic passes at the configured interval until ctx is
// cancelled.
func (s *System) Run(ctx context.Context) error {
	return s.periodic.Run(ctx, time.Duration(s.config.Interval))
}

// Shutdown flushes and stops the subsystem. Transports built by the system
// are closed; injected transports stay open for their owner to close.
func (s *System) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down emission subsystem", map[string]interface{}{
		"session_id": s.sessionID,
		"passes":     s.periodic.Passes(),
		"emitted":    s.periodic.Emitted() + s.unload.Emitted(),
		"uptime_ms":  time.Since(s.startTime).Milliseconds(),
	})

	if s.ownsTransport {
		if closer, ok := s.transport.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				s.logger.Error("Error closing transport", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	if s.metrics != nil {
		if err := s.metrics.Shutdown(); err != nil {
			s.logger.Error("Error unregistering gauges", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if s.provider != nil {
		if err := s.provider.Shutdown(ctx); err != nil {
			s.logger.Error("Error during provider shutdown", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}
	}
	return nil
}

// Initialize activates the global emission subsystem. Safe to call multiple
// times - only the first call takes effect. Prefer NewSystem and explicit
// wiring where possible; the global exists for the health surface and for
// hosts with a single telemetry session per process.
func Initialize(config Config, opts Options) (*System, error) {
	var initErr error
	initOnce.Do(func() {
		system, err := NewSystem(config, opts)
		if err != nil {
			initErr = err
			return
		}
		globalSystem.Store(system)
	})
	if initErr != nil {
		return nil, initErr
	}
	if s := globalSystem.Load(); s != nil {
		return s.(*System), nil
	}
	return nil, core.ErrNotInitialized
}

// GetSystem returns the global system, or nil before Initialize.
func GetSystem() *System {
	s := globalSystem.Load()
	if s == nil {
		return nil
	}
	return s.(*System)
}
