package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/timzifer/halcore/ticks"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassOK, Classify(ErrNone))
	assert.Equal(t, ClassNoAcknowledge, Classify(ErrNoAck))
	for _, code := range []ErrorCode{ErrUnknown, ErrUnsupportedInterface, ErrNoPacketSize,
		ErrTimedout, ErrBus, ErrTargetNoAck, ErrArbitrationLost} {
		assert.Equal(t, ClassGeneric, Classify(code), code.String())
	}
}

func observedPacket(t *testing.T, code ErrorCode) (*Packet, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	p := New(NewLoopback("i2c0", 1), WithLogger(zap.New(core)), WithClock(ticks.NewManual(1)))
	p.SendTo(0x1D)
	p.SetError(code)
	return p, logs
}

func TestClassifyAndLogNAck(t *testing.T) {
	t.Run("no error", func(t *testing.T) {
		p, logs := observedPacket(t, ErrNone)
		assert.False(t, ClassifyAndLogNAck(p))
		assert.Zero(t, logs.Len())
	})

	t.Run("no acknowledge", func(t *testing.T) {
		p, logs := observedPacket(t, ErrNoAck)
		assert.True(t, ClassifyAndLogNAck(p))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "device not found", entries[0].Message)
		assert.Equal(t, "1Dh", entries[0].ContextMap()["device_address"])
		assert.Equal(t, "i2c0", entries[0].ContextMap()["device"])
	})

	t.Run("other error", func(t *testing.T) {
		p, logs := observedPacket(t, ErrBus)
		assert.True(t, ClassifyAndLogNAck(p))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "communication error", entries[0].Message)
		assert.Equal(t, "6h", entries[0].ContextMap()["error_code"])
	})
}

func TestClassifyAndLogGeneric(t *testing.T) {
	p, logs := observedPacket(t, ErrNone)
	assert.False(t, ClassifyAndLogGeneric(p))
	assert.Zero(t, logs.Len())

	p, logs = observedPacket(t, ErrNoAck)
	assert.True(t, ClassifyAndLogGeneric(p))
	entries := logs.FilterMessage("communication error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "5h", entries[0].ContextMap()["error_code"])
	assert.Equal(t, "no acknowledge", entries[0].ContextMap()["error"])
}

type classRecorder struct {
	got []string
}

func (r *classRecorder) RecordTransferError(device, class string) {
	r.got = append(r.got, device+"/"+class)
}

func TestSinkClassifiesFailedMessages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lb := NewLoopback("i2c0", 1)
	lb.Unreachable(0x1D)
	p := New(lb, WithLogger(zap.New(core)), WithClock(ticks.NewManual(1)))
	p.SendTo(0x1D)

	rec := &classRecorder{}
	sink := NewSink(p)
	sink.SetErrorRecorder(rec)

	assert.Zero(t, sink.Send([]byte{1}))
	assert.True(t, sink.EOF())
	assert.Equal(t, []string{"i2c0/no_acknowledge"}, rec.got)

	entries := logs.FilterMessage("device not found").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "1Dh", entries[0].ContextMap()["device_address"])
}

func TestSinkTreatsSaturationAsPlainEOF(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := New(NewLoopback("i2c0", 1), WithLogger(zap.New(core)), WithClock(ticks.NewManual(1)))

	rec := &classRecorder{}
	sink := NewSink(p)
	sink.SetErrorRecorder(rec)

	assert.Equal(t, 1, sink.Send([]byte{1}))
	assert.Zero(t, sink.Send([]byte{2}))
	assert.True(t, sink.EOF())
	assert.Equal(t, ErrTimedout, p.Code())
	assert.Empty(t, rec.got)
	assert.Zero(t, logs.FilterMessage("communication error").Len())
}
