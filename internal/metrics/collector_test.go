package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/timzifer/halcore/pump"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollector("halcore", reg, zap.NewNop()), reg
}

func TestNewCollectorRegistersOnGivenRegistry(t *testing.T) {
	c, reg := newTestCollector(t)
	require.NotNil(t, c)

	c.RecordFlush(nil)
	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	// A second collector on the same registry collides.
	assert.Panics(t, func() { NewCollector("halcore", reg, nil) })
}

func TestCollector_ObservePump(t *testing.T) {
	c, _ := newTestCollector(t)

	c.ObservePump("uart0", pump.DirectionDrain, pump.Result{Outcome: pump.Success, Attempts: 2, Moved: 4}, time.Millisecond)
	c.ObservePump("uart0", pump.DirectionDrain, pump.Result{Outcome: pump.RetriesExhausted, Attempts: 3, Remaining: 4}, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.pumpRuns.WithLabelValues("uart0", "drain", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pumpRuns.WithLabelValues("uart0", "drain", "retries_exhausted")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.pumpAttempts.WithLabelValues("uart0", "drain")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.pumpMoved.WithLabelValues("uart0", "drain")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.pumpRemaining.WithLabelValues("uart0", "drain")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.pumpDuration))
}

func TestCollector_RecordWriteAndFlush(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordWrite("log", true)
	c.RecordWrite("log", true)
	c.RecordWrite("log", false)
	c.RecordFlush(nil)
	c.RecordFlush(errors.New("incomplete"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.channelWrites.WithLabelValues("log", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.channelWrites.WithLabelValues("log", "false")))

	expected := `
# HELP halcore_flush_rounds_total Total number of flush rounds over all channels
# TYPE halcore_flush_rounds_total counter
halcore_flush_rounds_total{result="incomplete"} 1
halcore_flush_rounds_total{result="ok"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c.flushRounds, strings.NewReader(expected)))
}

func TestCollector_RecordTransferError(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordTransferError("i2c0", "no_acknowledge")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.transferErrors.WithLabelValues("i2c0", "no_acknowledge")))
}
