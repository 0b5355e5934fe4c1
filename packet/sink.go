package packet

import "github.com/timzifer/halcore/internal/contract"

// ErrorRecorder receives the class of every failed message, typically to
// export it as a metric.
type ErrorRecorder interface {
	RecordTransferError(device, class string)
}

// Sink adapts a Packet to the stream.Sink contract: every Send is one
// message. EOF is raised when the message did not go out whole.
//
// ErrTimedout is a saturated device and only raises EOF. Any other error
// code is classified, logged like ClassifyAndLogNAck does and passed to the
// ErrorRecorder.
type Sink struct {
	p        *Packet
	eof      bool
	recorder ErrorRecorder
}

// NewSink returns a sink writing messages through p.
func NewSink(p *Packet) *Sink {
	contract.AssertParams(p.IsValid(), "packet: invalid packet")
	return &Sink{p: p}
}

// SetErrorRecorder attaches r; nil detaches it.
func (s *Sink) SetErrorRecorder(r ErrorRecorder) {
	s.recorder = r
}

// Send transmits b as one message.
func (s *Sink) Send(b []byte) int {
	n := s.p.Send(b)
	s.eof = n < len(b)

	if code := s.p.Code(); code != ErrNone && code != ErrTimedout {
		ClassifyAndLogNAck(s.p)
		if s.recorder != nil {
			s.recorder.RecordTransferError(s.p.Description(), Classify(code).String())
		}
	}
	return n
}

// EOF reports whether the last message was cut short.
func (s *Sink) EOF() bool {
	return s.eof
}

// Packet returns the underlying packet.
func (s *Sink) Packet() *Packet {
	return s.p
}

// Description returns the packet driver description.
func (s *Sink) Description() string {
	return s.p.Description()
}
