package pump

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/timzifer/halcore/cyclic"
	"github.com/timzifer/halcore/internal/contract"
	"github.com/timzifer/halcore/internal/telemetry"
	"github.com/timzifer/halcore/stream"
)

// DefaultRetries is the retry budget of a Pumper built without WithRetries.
const DefaultRetries = 10

// Direction tells whether a run drained or filled a buffer.
type Direction int

const (
	DirectionDrain Direction = iota
	DirectionFill
)

func (d Direction) String() string {
	if d == DirectionFill {
		return "fill"
	}
	return "drain"
}

// Recorder receives every finished run, typically to export it as metrics.
type Recorder interface {
	ObservePump(channel string, dir Direction, res Result, elapsed time.Duration)
}

// Option configures a Pumper.
type Option func(*Pumper)

// WithRetries sets the retry budget.
func WithRetries(n int) Option {
	return func(p *Pumper) {
		p.retries = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pumper) {
		p.logger = l
	}
}

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pumper) {
		p.recorder = r
	}
}

// WithCounters replaces the process-wide pump counters.
func WithCounters(m *telemetry.Counters) Option {
	return func(p *Pumper) {
		p.metrics = m
	}
}

// Pumper runs Drain and Fill for one named channel with a fixed retry
// budget and reports each run.
type Pumper struct {
	channel  string
	retries  int
	logger   *zap.Logger
	recorder Recorder
	metrics  *telemetry.Counters
}

// NewPumper returns a Pumper for channel.
func NewPumper(channel string, opts ...Option) *Pumper {
	p := &Pumper{
		channel: channel,
		retries: DefaultRetries,
		metrics: telemetry.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	contract.AssertParams(p.retries >= 0, "pump: negative retry budget")
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.With(zap.String("component", "pump"), zap.String("channel", channel))
	return p
}

// Channel returns the channel name.
func (p *Pumper) Channel() string {
	return p.channel
}

// Retries returns the retry budget.
func (p *Pumper) Retries() int {
	return p.retries
}

// Drain runs Drain with the configured budget.
func (p *Pumper) Drain(ctx context.Context, c *cyclic.Buffer, sink stream.Sink) Result {
	return p.run(ctx, DirectionDrain, func() Result { return Drain(c, sink, p.retries) })
}

// Fill runs Fill with the configured budget.
func (p *Pumper) Fill(ctx context.Context, c *cyclic.Buffer, src stream.Source) Result {
	return p.run(ctx, DirectionFill, func() Result { return Fill(c, src, p.retries) })
}

func (p *Pumper) run(ctx context.Context, dir Direction, pump func() Result) Result {
	finish := p.metrics.StartPump()
	start := time.Now()

	res := pump()

	elapsed := time.Since(start)
	finish(res.Attempts, res.Moved, res.Outcome == RetriesExhausted)
	if p.recorder != nil {
		p.recorder.ObservePump(p.channel, dir, res, elapsed)
	}
	p.logger.Debug("pump finished",
		zap.Stringer("direction", dir),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("attempts", res.Attempts),
		zap.Int("moved", res.Moved),
		zap.Int("remaining", res.Remaining),
		zap.Duration("elapsed", elapsed),
	)
	return res
}
