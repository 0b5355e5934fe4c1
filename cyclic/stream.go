package cyclic

import (
	"github.com/timzifer/halcore/internal/contract"
	"github.com/timzifer/halcore/stream"
)

// ToStream sends elements to sink in FIFO order, one element per Send, until
// the buffer is empty or sink raises EOF. An element is removed only after
// sink accepted all of its bytes; one refused or cut short stays at the front
// and is offered again whole on the next call. It returns the number of
// elements removed, also reported by OutCount.
func (b *Buffer) ToStream(sink stream.Sink) int {
	contract.AssertParams(sink != nil, "cyclic: nil sink")
	contract.AssertState(b.capacity > 0, "cyclic: buffer not initialised")
	b.lastOut = 0

	for b.elements > 0 {
		n := sink.Send(b.slot(b.out))
		eof := sink.EOF()
		if n != b.elemSize {
			contract.AssertInterface(eof, "cyclic: sink took part of an element without EOF")
			break
		}
		b.commitOut()
		if eof {
			break
		}
	}
	return int(b.lastOut)
}

// FromStream receives elements from src straight into free slots until the
// buffer is full or src raises EOF. Bytes of an element src stopped short of
// are held back, see Pending, and the next call continues that element, so
// no byte src produced is lost. It returns the number of elements stored,
// also reported by InCount.
func (b *Buffer) FromStream(src stream.Source) int {
	contract.AssertParams(src != nil, "cyclic: nil source")
	contract.AssertState(b.capacity > 0, "cyclic: buffer not initialised")
	b.lastIn = 0

	for b.elements < b.capacity {
		resumed := b.partial > 0
		dst := b.slot(b.in)
		if resumed {
			dst = b.pending
		}

		n := src.Receive(dst[b.partial:])
		eof := src.EOF()
		b.partial += n
		if b.partial < b.elemSize {
			contract.AssertInterface(eof, "cyclic: source produced part of an element without EOF")
			if !resumed && b.partial > 0 {
				// Push writes into the same slot, keep the head aside.
				copy(b.pending, dst[:b.partial])
			}
			break
		}

		if resumed {
			copy(b.slot(b.in), b.pending)
		}
		b.partial = 0
		b.commitIn()
		if eof {
			break
		}
	}
	return int(b.lastIn)
}
