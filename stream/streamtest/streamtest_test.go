package streamtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptedSinkWindows(t *testing.T) {
	s := NewScriptedSink(Unlimited, 2)

	assert.Equal(t, 1, s.Send([]byte{1}))
	assert.Equal(t, 1, s.Send([]byte{2}))
	assert.False(t, s.EOF())

	assert.Equal(t, 0, s.Send([]byte{3}))
	assert.True(t, s.EOF())
	assert.Equal(t, 0, s.Window())

	assert.Equal(t, 1, s.Send([]byte{3}))
	assert.False(t, s.EOF())
	assert.Equal(t, 1, s.Window())

	assert.Equal(t, []byte{1, 2, 3}, s.Data())
	assert.Equal(t, 4, s.Calls())
	assert.Equal(t, 1, s.Refusals())
}

func TestScriptedSinkRefusesWholeChunk(t *testing.T) {
	s := NewScriptedSink(0, 3)

	assert.Equal(t, 0, s.Send([]byte{1, 2, 3, 4}))
	assert.True(t, s.EOF())
	assert.Empty(t, s.Data())

	// Every later window has a zero quota.
	assert.Equal(t, 0, s.Send([]byte{1}))
	assert.True(t, s.EOF())
}

func TestScriptedSourceWindows(t *testing.T) {
	s := NewScriptedSource([]byte{1, 2, 3, 4, 5}, Unlimited, 3)
	buf := make([]byte, 2)

	assert.Equal(t, 2, s.Receive(buf))
	assert.False(t, s.EOF())
	assert.Equal(t, 1, s.Receive(buf))
	assert.True(t, s.EOF())
	assert.Equal(t, []byte{3}, buf[:1])

	assert.Equal(t, 2, s.Receive(buf))
	assert.Equal(t, []byte{4, 5}, buf)
	assert.Equal(t, 0, s.Remaining())

	assert.Equal(t, 0, s.Receive(buf))
	assert.True(t, s.EOF())
	assert.Equal(t, 4, s.Calls())
}
