package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log:       DefaultLogConfig(),
		Ticks:     TicksConfig{Period: time.Millisecond},
		Buffer:    DefaultBufferConfig(),
		Pump:      DefaultPumpConfig(),
		Transport: DefaultTransportConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stderr"},
	}
}

// DefaultBufferConfig returns a 256-octet buffer.
func DefaultBufferConfig() BufferConfig {
	return BufferConfig{
		ElementSize: 1,
		Capacity:    256,
		Overflow:    "reject",
	}
}

// DefaultPumpConfig returns the default retry budget and flush cadence.
func DefaultPumpConfig() PumpConfig {
	return PumpConfig{
		Retries:       10,
		FlushInterval: 10 * time.Millisecond,
	}
}

// DefaultTransportConfig approximates a 115200 baud UART with a 16 octet FIFO.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		BytesPerSecond: 11520,
		Burst:          16,
	}
}

// DefaultMetricsConfig returns metrics disabled on :9464.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Addr:      ":9464",
		Namespace: "halcore",
	}
}
