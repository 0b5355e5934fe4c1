package cyclic

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/timzifer/halcore/stream/streamtest"
)

func TestProperty_PushPopMatchesFIFOModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 16).Draw(rt, "capacity")
		b := New(1, capacity)
		var model []byte

		ops := rapid.SliceOfN(rapid.IntRange(0, 2), 1, 200).Draw(rt, "ops")
		for i, op := range ops {
			switch op {
			case 0, 1:
				v := byte(i)
				ok := b.Push([]byte{v})
				require.Equal(rt, len(model) < capacity, ok)
				if ok {
					model = append(model, v)
				}
			case 2:
				dst := []byte{0}
				ok := b.Pop(dst)
				require.Equal(rt, len(model) > 0, ok)
				if ok {
					require.Equal(rt, model[0], dst[0])
					model = model[1:]
				}
			}
			require.Equal(rt, len(model), b.Elements())
			require.LessOrEqual(rt, b.Elements(), capacity)
			require.Equal(rt, capacity-len(model), b.Available())
		}
	})
}

func TestProperty_PushThenPopReturnsPushed(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 16).Draw(rt, "capacity")
		size := rapid.IntRange(1, 8).Draw(rt, "size")
		b := New(size, capacity)

		prefill := rapid.IntRange(0, capacity-1).Draw(rt, "prefill")
		for range prefill {
			require.True(rt, b.Push(make([]byte, size)))
		}
		dst := make([]byte, size)
		for range prefill {
			require.True(rt, b.Pop(dst))
		}

		elem := rapid.SliceOfN(rapid.Byte(), size, size).Draw(rt, "elem")
		require.True(rt, b.Push(elem))
		require.True(rt, b.Pop(dst))
		require.Equal(rt, elem, dst)
	})
}

func TestProperty_ToStreamWithAcceptingSinkEmptiesInOneCall(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 32).Draw(rt, "capacity")
		k := rapid.IntRange(0, capacity).Draw(rt, "k")
		b := New(1, capacity)
		var want []byte
		for i := range k {
			require.True(rt, b.Push([]byte{byte(i)}))
			want = append(want, byte(i))
		}

		sink := streamtest.NewScriptedSink(streamtest.Unlimited)
		require.Equal(rt, k, b.ToStream(sink))
		require.Zero(rt, b.Elements())
		require.False(rt, sink.EOF())
		require.Zero(rt, sink.Refusals())
		require.Equal(rt, want, sink.Data())
	})
}
