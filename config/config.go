package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete configuration.
type Config struct {
	// Log configures the zap logger.
	Log LogConfig `yaml:"log" env:"LOG"`
	// Ticks configures the hosted tick source.
	Ticks TicksConfig `yaml:"ticks" env:"TICKS"`
	// Buffer configures every channel buffer.
	Buffer BufferConfig `yaml:"buffer" env:"BUFFER"`
	// Pump configures the retry protocol and flush cadence.
	Pump PumpConfig `yaml:"pump" env:"PUMP"`
	// Transport configures the rate-limited output device.
	Transport TransportConfig `yaml:"transport" env:"TRANSPORT"`
	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// LogConfig configures logging.
type LogConfig struct {
	// debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// json, console
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TicksConfig configures the tick counter.
type TicksConfig struct {
	Period time.Duration `yaml:"period" env:"PERIOD"`
}

// BufferConfig configures a cyclic buffer.
type BufferConfig struct {
	ElementSize int `yaml:"element_size" env:"ELEMENT_SIZE"`
	Capacity    int `yaml:"capacity" env:"CAPACITY"`
	// reject, drop_oldest
	Overflow string `yaml:"overflow" env:"OVERFLOW"`
}

// PumpConfig configures pumping.
type PumpConfig struct {
	Retries       int           `yaml:"retries" env:"RETRIES"`
	FlushInterval time.Duration `yaml:"flush_interval" env:"FLUSH_INTERVAL"`
}

// TransportConfig configures the output device.
type TransportConfig struct {
	BytesPerSecond float64 `yaml:"bytes_per_second" env:"BYTES_PER_SECOND"`
	Burst          int     `yaml:"burst" env:"BURST"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Addr      string `yaml:"addr" env:"ADDR"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	var errs []string

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}

	if c.Ticks.Period <= 0 {
		errs = append(errs, "ticks period must be positive")
	}

	if c.Buffer.ElementSize <= 0 {
		errs = append(errs, "buffer element_size must be positive")
	}
	if c.Buffer.Capacity <= 0 {
		errs = append(errs, "buffer capacity must be positive")
	}
	switch c.Buffer.Overflow {
	case "reject", "drop_oldest":
	default:
		errs = append(errs, fmt.Sprintf("unknown buffer overflow policy %q", c.Buffer.Overflow))
	}

	if c.Pump.Retries < 0 {
		errs = append(errs, "pump retries must not be negative")
	}
	if c.Pump.FlushInterval <= 0 {
		errs = append(errs, "pump flush_interval must be positive")
	}

	if c.Transport.BytesPerSecond < 0 {
		errs = append(errs, "transport bytes_per_second must not be negative")
	}
	if c.Transport.Burst < c.Buffer.ElementSize {
		errs = append(errs, "transport burst must hold at least one buffer element")
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, "metrics addr is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
