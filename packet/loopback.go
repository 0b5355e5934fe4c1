package packet

import (
	"github.com/timzifer/halcore/internal/contract"
	"github.com/timzifer/halcore/queue"
)

type frame struct {
	link queue.Node[*frame]
	data []byte
	read int
	from uint32
}

func (f *frame) QueueNode() *queue.Node[*frame] { return &f.link }

// Loopback is an in-memory driver: every message sent is queued and later
// received by the same Packet, with the destination address reported as its
// source. It holds at most depth messages; a send to a full loopback makes
// no progress. Addresses marked unreachable fail with ErrNoAck.
//
// Frames are recycled through a free list, so a Loopback only allocates
// while its high-water mark grows.
type Loopback struct {
	name        string
	depth       int
	pending     queue.Queue[*frame]
	free        queue.Queue[*frame]
	unreachable map[uint32]bool
}

// NewLoopback returns a loopback driver holding up to depth messages.
func NewLoopback(name string, depth int) *Loopback {
	contract.AssertParams(name != "" && depth > 0, "packet: invalid loopback")
	return &Loopback{
		name:        name,
		depth:       depth,
		unreachable: make(map[uint32]bool),
	}
}

// Description returns the loopback name.
func (l *Loopback) Description() string {
	return l.name
}

// Unreachable makes sends to addr fail with ErrNoAck.
func (l *Loopback) Unreachable(addr uint32) {
	l.unreachable[addr] = true
}

// Pending returns how many messages wait to be received.
func (l *Loopback) Pending() int {
	return l.pending.Len()
}

// Transmit queues data as one message.
func (l *Loopback) Transmit(p *Packet, data []byte) int {
	if l.unreachable[p.Destination()] {
		p.SetError(ErrNoAck)
		return 0
	}
	if l.pending.Len() >= l.depth {
		return 0
	}

	f, ok := l.free.Dequeue()
	if !ok {
		f = &frame{}
	}
	f.data = append(f.data[:0], data...)
	f.read = 0
	f.from = p.Destination()
	l.pending.Enqueue(f)
	return len(data)
}

// RecvSize returns the unread size of the oldest message.
func (l *Loopback) RecvSize(_ *Packet, _ int) int {
	f, ok := l.pending.Front()
	if !ok {
		return 0
	}
	return len(f.data) - f.read
}

// Receive copies the oldest message into buf, releasing it once fully read.
func (l *Loopback) Receive(p *Packet, buf []byte) int {
	f, ok := l.pending.Front()
	if !ok {
		return 0
	}
	n := copy(buf, f.data[f.read:])
	f.read += n
	if f.read == len(f.data) {
		l.pending.Detach(f)
		l.free.Enqueue(f)
		p.SetRecvFrom(f.from)
	}
	return n
}

// Exchange echoes send into recv, one byte per byte, like a shift register
// with MISO tied to MOSI.
func (l *Loopback) Exchange(p *Packet, send, recv []byte) (int, int) {
	if l.unreachable[p.Destination()] {
		p.SetError(ErrNoAck)
		return 0, 0
	}
	n := copy(recv, send)
	return n, n
}
