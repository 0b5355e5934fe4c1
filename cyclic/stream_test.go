package cyclic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timzifer/halcore/internal/contract"
	"github.com/timzifer/halcore/stream/streamtest"
)

func filled(t *testing.T, values ...byte) *Buffer {
	t.Helper()
	b := New(1, 4)
	for _, v := range values {
		require.True(t, b.Push([]byte{v}))
	}
	return b
}

func TestToStreamDrainsAcceptingSink(t *testing.T) {
	b := filled(t, 10, 20, 30, 40)
	sink := streamtest.NewScriptedSink(streamtest.Unlimited)

	assert.Equal(t, 4, b.ToStream(sink))
	assert.False(t, sink.EOF())
	assert.Zero(t, b.Elements())
	assert.Equal(t, 4, b.OutCount())
	assert.Equal(t, []byte{10, 20, 30, 40}, sink.Data())
	assert.Zero(t, sink.Refusals())
}

func TestToStreamStopsOnEOF(t *testing.T) {
	b := filled(t, 10, 20, 30, 40)
	sink := streamtest.NewScriptedSink(streamtest.Unlimited, 2)

	assert.Equal(t, 2, b.ToStream(sink))
	assert.True(t, sink.EOF())
	assert.Equal(t, 2, b.Elements())

	assert.Equal(t, 2, b.ToStream(sink))
	assert.False(t, sink.EOF())
	assert.Zero(t, b.Elements())
	assert.Equal(t, []byte{10, 20, 30, 40}, sink.Data())
}

func TestToStreamKeepsElementCutShort(t *testing.T) {
	b := New(4, 2)
	require.True(t, b.Push([]byte{1, 2, 3, 4}))
	sink := streamtest.NewScriptedSink(streamtest.Unlimited, 3)

	assert.Zero(t, b.ToStream(sink))
	assert.True(t, sink.EOF())
	assert.Equal(t, 1, b.Elements())

	assert.Equal(t, 1, b.ToStream(sink))
	assert.Equal(t, []byte{1, 2, 3, 4}, sink.Data())
}

type lyingSink struct{}

func (lyingSink) Send(p []byte) int { return len(p) - 1 }
func (lyingSink) EOF() bool         { return false }

func TestToStreamRejectsPartialWithoutEOF(t *testing.T) {
	b := New(2, 2)
	require.True(t, b.Push([]byte{1, 2}))

	v := contract.Catch(func() { b.ToStream(lyingSink{}) })
	require.NotNil(t, v)
	assert.Equal(t, contract.KindInterface, v.Kind)
	assert.Equal(t, 1, b.Elements())
}

func TestToStreamOnEmptyBuffer(t *testing.T) {
	b := New(1, 2)
	sink := streamtest.NewScriptedSink(streamtest.Unlimited)

	assert.Zero(t, b.ToStream(sink))
	assert.Zero(t, sink.Calls())
}

func TestFromStreamBoundedByFreeSpace(t *testing.T) {
	b := filled(t, 1)
	src := streamtest.NewScriptedSource([]byte{2, 3, 4, 5, 6}, streamtest.Unlimited)

	assert.Equal(t, 3, b.FromStream(src))
	assert.Equal(t, 3, b.InCount())
	assert.Equal(t, 4, b.Elements())
	assert.Equal(t, 2, src.Remaining())

	dst := []byte{0}
	var got []byte
	for b.Pop(dst) {
		got = append(got, dst[0])
	}
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
}

func TestFromStreamResumesPartialElement(t *testing.T) {
	b := New(4, 4)
	src := streamtest.NewScriptedSource([]byte{1, 2, 3, 4, 5, 6, 7, 8}, streamtest.Unlimited, 6)

	assert.Equal(t, 1, b.FromStream(src))
	assert.True(t, src.EOF())
	assert.Equal(t, 2, b.Pending())

	assert.Equal(t, 1, b.FromStream(src))
	assert.Zero(t, b.Pending())
	assert.Zero(t, src.Remaining())
	require.Equal(t, 2, b.Elements())

	dst := make([]byte, 4)
	require.True(t, b.Pop(dst))
	assert.Equal(t, []byte{1, 2, 3, 4}, dst)
	require.True(t, b.Pop(dst))
	assert.Equal(t, []byte{5, 6, 7, 8}, dst)
}

func TestFromStreamKeepsPartialElementAcrossPush(t *testing.T) {
	b := New(2, 4)
	src := streamtest.NewScriptedSource([]byte{1, 2, 3}, streamtest.Unlimited, 3)

	assert.Equal(t, 1, b.FromStream(src))
	require.Equal(t, 1, b.Pending())

	require.True(t, b.Push([]byte{9, 9}))

	src2 := streamtest.NewScriptedSource([]byte{4}, streamtest.Unlimited)
	assert.Equal(t, 1, b.FromStream(src2))
	assert.Zero(t, b.Pending())

	dst := make([]byte, 2)
	var got [][]byte
	for b.Pop(dst) {
		got = append(got, append([]byte(nil), dst...))
	}
	assert.Equal(t, [][]byte{{1, 2}, {9, 9}, {3, 4}}, got)
}

func TestDiscardAndResetDropPendingBytes(t *testing.T) {
	for name, clearFn := range map[string]func(*Buffer){
		"discard": func(b *Buffer) { b.Discard() },
		"reset":   func(b *Buffer) { b.Reset() },
	} {
		t.Run(name, func(t *testing.T) {
			b := New(2, 4)
			b.FromStream(streamtest.NewScriptedSource([]byte{1}, streamtest.Unlimited))
			require.Equal(t, 1, b.Pending())

			clearFn(b)
			assert.Zero(t, b.Pending())

			assert.Equal(t, 1, b.FromStream(streamtest.NewScriptedSource([]byte{5, 6}, streamtest.Unlimited)))
			dst := make([]byte, 2)
			require.True(t, b.Pop(dst))
			assert.Equal(t, []byte{5, 6}, dst)
		})
	}
}

func TestFromStreamStopsOnEOF(t *testing.T) {
	b := New(1, 4)
	src := streamtest.NewScriptedSource([]byte{1, 2, 3}, streamtest.Unlimited, 1)

	assert.Equal(t, 1, b.FromStream(src))
	assert.True(t, src.EOF())
	assert.Equal(t, 2, b.FromStream(src))
	assert.Equal(t, 3, b.Elements())
	assert.Zero(t, b.Pending())
}
