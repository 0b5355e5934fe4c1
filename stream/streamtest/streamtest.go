// Package streamtest provides scripted transports for tests.
//
// Both doubles work in windows. A window is the stretch of calls between two
// EOF signals: once a call is refused, the window closes and the next call
// opens the following one with a fresh quota. This models a device that is
// saturated for the rest of a pump attempt and has drained by the next.
package streamtest

// Unlimited is a window quota without limit.
const Unlimited = -1

type windows struct {
	quotas []int
	rest   int
	index  int
	used   int
	eof    bool
}

func (w *windows) open() {
	if w.eof {
		w.index++
		w.used = 0
	}
}

func (w *windows) left() int {
	q := w.rest
	if w.index < len(w.quotas) {
		q = w.quotas[w.index]
	}
	if q == Unlimited {
		return Unlimited
	}
	return q - w.used
}

// ScriptedSink accepts whole chunks while the current window has room and
// refuses the first chunk that does not fit.
type ScriptedSink struct {
	win      windows
	data     []byte
	calls    int
	refusals int
}

// NewScriptedSink returns a sink whose windows accept the given byte quotas
// in order, then rest bytes per window forever after.
func NewScriptedSink(rest int, quotas ...int) *ScriptedSink {
	return &ScriptedSink{win: windows{quotas: quotas, rest: rest}}
}

// Send accepts p if it fits the current window.
func (s *ScriptedSink) Send(p []byte) int {
	s.calls++
	s.win.open()

	if left := s.win.left(); left != Unlimited && len(p) > left {
		s.win.eof = true
		s.refusals++
		return 0
	}

	s.win.used += len(p)
	s.data = append(s.data, p...)
	s.win.eof = false
	return len(p)
}

// EOF reports whether the last Send was refused.
func (s *ScriptedSink) EOF() bool {
	return s.win.eof
}

// Data returns every accepted byte in order.
func (s *ScriptedSink) Data() []byte {
	return s.data
}

// Calls returns how many times Send was called.
func (s *ScriptedSink) Calls() int {
	return s.calls
}

// Refusals returns how many Send calls were refused.
func (s *ScriptedSink) Refusals() int {
	return s.refusals
}

// Window returns the index of the current window.
func (s *ScriptedSink) Window() int {
	return s.win.index
}

// ScriptedSource produces bytes from a fixed payload, limited per window. A
// call that cannot be filled completely returns what it could and raises EOF.
type ScriptedSource struct {
	win     windows
	payload []byte
	calls   int
}

// NewScriptedSource returns a source producing payload under the given
// per-window quotas.
func NewScriptedSource(payload []byte, rest int, quotas ...int) *ScriptedSource {
	return &ScriptedSource{win: windows{quotas: quotas, rest: rest}, payload: payload}
}

// Receive copies as much of the remaining payload into p as the window allows.
func (s *ScriptedSource) Receive(p []byte) int {
	s.calls++
	s.win.open()

	n := min(len(p), len(s.payload))
	if left := s.win.left(); left != Unlimited {
		n = min(n, left)
	}
	copy(p, s.payload[:n])
	s.payload = s.payload[n:]
	s.win.used += n
	s.win.eof = n < len(p)
	return n
}

// EOF reports whether the last Receive came up short.
func (s *ScriptedSource) EOF() bool {
	return s.win.eof
}

// Remaining returns how many payload bytes have not been produced yet.
func (s *ScriptedSource) Remaining() int {
	return len(s.payload)
}

// Calls returns how many times Receive was called.
func (s *ScriptedSource) Calls() int {
	return s.calls
}
