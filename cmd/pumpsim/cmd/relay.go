package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timzifer/halcore"
	"github.com/timzifer/halcore/config"
	"github.com/timzifer/halcore/cyclic"
	"github.com/timzifer/halcore/internal/metrics"
	"github.com/timzifer/halcore/internal/telemetry"
	"github.com/timzifer/halcore/pump"
	"github.com/timzifer/halcore/stream"
	"github.com/timzifer/halcore/ticks"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay stdin to a rate-limited stdout through a log buffer",
	Long: `relay reads stdin into a staging buffer, writes every element into the
log channel and flushes it periodically into stdout, throttled to the
configured byte rate. It returns once stdin is exhausted and everything was
flushed, or when interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := runRelay(ctx, cfg, logger, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(relayCmd)
}

// runRelay moves in to out until in is exhausted and the log channel is
// empty.
func runRelay(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) error {
	policy, err := cyclic.ParseOverflowPolicy(cfg.Buffer.Overflow)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(cfg.Metrics.Namespace, registry, logger)
	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics.Addr, registry, logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	counter := ticks.NewCounter()
	go func() { _ = counter.Run(ctx, cfg.Ticks.Period) }()

	comm := halcore.NewComm(
		halcore.WithLogger(logger),
		halcore.WithRetries(cfg.Pump.Retries),
		halcore.WithRecorder(collector),
	)
	sink := stream.NewRateLimitedSink(out, bytesPerSecond(cfg.Transport), cfg.Transport.Burst)
	comm.SetDevice(halcore.RoleLog, sink,
		cyclic.New(cfg.Buffer.ElementSize, cfg.Buffer.Capacity, cyclic.WithOverflowPolicy(policy)))

	fed := make(chan error, 1)
	go func() {
		fed <- feed(ctx, cfg, logger, counter, collector, comm, in)
	}()

	ticker := time.NewTicker(cfg.Pump.FlushInterval)
	defer ticker.Stop()

	inputDone := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-fed:
			if err != nil {
				return err
			}
			inputDone = true
			fed = nil
		case <-ticker.C:
		}

		flushErr := comm.Flush(ctx)
		if werr := sink.Err(); werr != nil {
			return fmt.Errorf("write output: %w", werr)
		}
		if inputDone && flushErr == nil {
			fields := []zap.Field{
				zap.Int64("octets", sink.Sent()),
				zap.Uint64("rounds", comm.Rounds()),
				zap.Uint64("clean_rounds", comm.CleanRounds()),
			}
			logger.Info("relay finished", append(fields, telemetry.Default().Snapshot().Fields()...)...)
			return nil
		}
	}
}

// feed pumps in through a staging buffer into the log channel. A refused
// write is retried after one flush interval.
func feed(ctx context.Context, cfg *config.Config, logger *zap.Logger, clock ticks.Clock,
	recorder pump.Recorder, comm *halcore.Comm, in io.Reader) error {
	src := stream.New(&stream.IODriver{Name: "stdin", R: in},
		stream.WithClock(clock),
		stream.WithLogger(logger),
	)
	staging := cyclic.New(cfg.Buffer.ElementSize, cfg.Buffer.Capacity)
	pumper := pump.NewPumper("stdin",
		pump.WithRetries(cfg.Pump.Retries),
		pump.WithLogger(logger),
		pump.WithRecorder(recorder),
	)
	elem := make([]byte, cfg.Buffer.ElementSize)

	for {
		pumper.Fill(ctx, staging, src)

		for staging.Pop(elem) {
			for !comm.Write(halcore.RoleLog, elem) {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(cfg.Pump.FlushInterval):
				}
			}
		}

		switch src.Status() {
		case stream.StatusStopped:
			if n := staging.Pending(); n > 0 {
				logger.Warn("input ended inside an element", zap.Int("dropped_octets", n))
			}
			return nil
		case stream.StatusOK, stream.StatusTimedout:
			// short read, try again
		default:
			stream.CheckTransferStatus(src)
			return fmt.Errorf("read input: %s", src.Status())
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// bytesPerSecond treats a zero rate as unthrottled.
func bytesPerSecond(t config.TransportConfig) float64 {
	if t.BytesPerSecond == 0 {
		return math.Inf(1)
	}
	return t.BytesPerSecond
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
