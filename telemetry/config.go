package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itsneelabh/finalwatch/core"
)

// Duration wraps time.Duration so intervals can be written as "30s" in
// YAML configuration files.
type Duration time.Duration

// UnmarshalYAML parses a duration string like "10s" or "2m".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in time.Duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// TransportConfig selects and configures the record transport.
type TransportConfig struct {
	// Type is one of "channel", "redis", "log", "none".
	Type string `yaml:"type"`

	// BufferSize is the channel transport's capacity.
	BufferSize int `yaml:"buffer_size"`

	// RedisURL and Stream configure the redis transport.
	RedisURL string `yaml:"redis_url"`
	Stream   string `yaml:"stream"`
}

// Config configures the emission subsystem
type Config struct {
	// Basic settings
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`

	// Endpoint receives the subsystem's own OTLP self-observability data
	// (spans and metrics about emission, not the records themselves).
	Endpoint string `yaml:"endpoint"`

	// TraceExporter is one of "otlp", "stdout", "none".
	TraceExporter string `yaml:"trace_exporter"`

	// Interval between periodic passes.
	Interval Duration `yaml:"interval"`

	// MaxEntriesPerPass bounds a pass for diagnostic scans; 0 = unbounded.
	MaxEntriesPerPass int `yaml:"max_entries_per_pass"`

	Transport TransportConfig `yaml:"transport"`
}

// Profile represents a pre-configured telemetry profile
type Profile string

const (
	ProfileDevelopment Profile = "development"
	ProfileStaging     Profile = "staging"
	ProfileProduction  Profile = "production"
)

// Profiles contains pre-configured telemetry profiles
var Profiles = map[Profile]Config{
	ProfileDevelopment: {
		Enabled:       true,
		TraceExporter: "stdout",
		Interval:      Duration(10 * time.Second),
		Transport: TransportConfig{
			Type:       "log",
			BufferSize: 256,
		},
	},
	ProfileStaging: {
		Enabled:       true,
		Endpoint:      "otel-collector.staging:4318",
		TraceExporter: "otlp",
		Interval:      Duration(30 * time.Second),
		Transport: TransportConfig{
			Type:       "channel",
			BufferSize: 1024,
		},
	},
	ProfileProduction: {
		Enabled:       true,
		Endpoint:      "otel-collector.prod:4318", // Override with env var
		TraceExporter: "otlp",
		Interval:      Duration(60 * time.Second),
		Transport: TransportConfig{
			Type:       "channel",
			BufferSize: 4096,
		},
	},
}

// UseProfile returns a configuration based on a profile name
func UseProfile(profile Profile) Config {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	// Default to development profile
	return Profiles[ProfileDevelopment]
}

// WithOverrides applies overrides to a config
func (c Config) WithOverrides(overrides Config) Config {
	// Override non-zero values
	if overrides.Enabled {
		c.Enabled = overrides.Enabled
	}
	if overrides.ServiceName != "" {
		c.ServiceName = overrides.ServiceName
	}
	if overrides.Endpoint != "" {
		c.Endpoint = overrides.Endpoint
	}
	if overrides.TraceExporter != "" {
		c.TraceExporter = overrides.TraceExporter
	}
	if overrides.Interval > 0 {
		c.Interval = overrides.Interval
	}
	if overrides.MaxEntriesPerPass > 0 {
		c.MaxEntriesPerPass = overrides.MaxEntriesPerPass
	}
	if overrides.Transport.Type != "" {
		c.Transport.Type = overrides.Transport.Type
	}
	if overrides.Transport.BufferSize > 0 {
		c.Transport.BufferSize = overrides.Transport.BufferSize
	}
	if overrides.Transport.RedisURL != "" {
		c.Transport.RedisURL = overrides.Transport.RedisURL
	}
	if overrides.Transport.Stream != "" {
		c.Transport.Stream = overrides.Transport.Stream
	}
	return c
}

// WithEnvOverrides applies environment variable overrides:
// FINALWATCH_SERVICE_NAME, FINALWATCH_OTEL_ENDPOINT, FINALWATCH_INTERVAL,
// FINALWATCH_REDIS_URL. Invalid values are ignored in favor of the existing
// configuration.
func (c Config) WithEnvOverrides() Config {
	if v := os.Getenv("FINALWATCH_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("FINALWATCH_OTEL_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("FINALWATCH_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Interval = Duration(parsed)
		}
	}
	if v := os.Getenv("FINALWATCH_REDIS_URL"); v != "" {
		c.Transport.RedisURL = v
	}
	return c
}

// LoadConfigFile reads a YAML configuration file and layers it over the
// development profile defaults.
func LoadConfigFile(path string) (Config, error) {
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return Config{}, fmt.Errorf("unsupported config file extension %q: %w", ext, core.ErrInvalidConfiguration)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, core.ErrInvalidConfiguration)
	}

	return UseProfile(ProfileDevelopment).WithOverrides(fileConfig), nil
}
