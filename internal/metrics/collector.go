// Package metrics exports pump, channel and device counters to Prometheus.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/timzifer/halcore/pump"
)

// Collector holds every exported metric. It implements pump.Recorder.
type Collector struct {
	// Pump
	pumpRuns      *prometheus.CounterVec
	pumpAttempts  *prometheus.CounterVec
	pumpMoved     *prometheus.CounterVec
	pumpDuration  *prometheus.HistogramVec
	pumpRemaining *prometheus.GaugeVec

	// Channels
	channelWrites *prometheus.CounterVec
	flushRounds   *prometheus.CounterVec

	// Devices
	transferErrors *prometheus.CounterVec

	logger *zap.Logger
}

var _ pump.Recorder = (*Collector)(nil)

// NewCollector registers all metrics under namespace with reg.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.pumpRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pump_runs_total",
			Help:      "Total number of pump runs by outcome",
		},
		[]string{"channel", "direction", "outcome"},
	)

	c.pumpAttempts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pump_attempts_total",
			Help:      "Total number of transfer attempts made by pump runs",
		},
		[]string{"channel", "direction"},
	)

	c.pumpMoved = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pump_elements_moved_total",
			Help:      "Total number of elements moved by pump runs",
		},
		[]string{"channel", "direction"},
	)

	c.pumpDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pump_run_duration_seconds",
			Help:      "Pump run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"channel", "direction"},
	)

	c.pumpRemaining = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pump_remaining_elements",
			Help:      "Elements left buffered (drain) or slots left free (fill) after the last run",
		},
		[]string{"channel", "direction"},
	)

	c.channelWrites = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_writes_total",
			Help:      "Total number of elements written to channel buffers",
		},
		[]string{"channel", "accepted"},
	)

	c.flushRounds = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flush_rounds_total",
			Help:      "Total number of flush rounds over all channels",
		},
		[]string{"result"},
	)

	c.transferErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_errors_total",
			Help:      "Total number of classified device transfer errors",
		},
		[]string{"device", "class"},
	)

	c.logger.Debug("metrics collector initialised", zap.String("namespace", namespace))
	return c
}

// ObservePump records a finished pump run.
func (c *Collector) ObservePump(channel string, dir pump.Direction, res pump.Result, elapsed time.Duration) {
	d := dir.String()
	c.pumpRuns.WithLabelValues(channel, d, res.Outcome.String()).Inc()
	c.pumpAttempts.WithLabelValues(channel, d).Add(float64(res.Attempts))
	c.pumpMoved.WithLabelValues(channel, d).Add(float64(res.Moved))
	c.pumpDuration.WithLabelValues(channel, d).Observe(elapsed.Seconds())
	c.pumpRemaining.WithLabelValues(channel, d).Set(float64(res.Remaining))
}

// RecordWrite records one element offered to a channel buffer.
func (c *Collector) RecordWrite(channel string, accepted bool) {
	c.channelWrites.WithLabelValues(channel, strconv.FormatBool(accepted)).Inc()
}

// RecordFlush records the outcome of a flush round.
func (c *Collector) RecordFlush(err error) {
	result := "ok"
	if err != nil {
		result = "incomplete"
	}
	c.flushRounds.WithLabelValues(result).Inc()
}

// RecordTransferError records a classified device error.
func (c *Collector) RecordTransferError(device, class string) {
	c.transferErrors.WithLabelValues(device, class).Inc()
}
