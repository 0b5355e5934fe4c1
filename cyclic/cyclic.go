package cyclic

import (
	"fmt"
	"math"

	"github.com/timzifer/halcore/internal/contract"
)

// OverflowPolicy decides what Push does on a full buffer.
type OverflowPolicy int

const (
	// OverflowReject refuses the new element and leaves the buffer unchanged.
	OverflowReject OverflowPolicy = iota
	// OverflowDropOldest overwrites the oldest unconsumed element.
	OverflowDropOldest
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowReject:
		return "reject"
	case OverflowDropOldest:
		return "drop_oldest"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy maps the String form back to a policy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "reject":
		return OverflowReject, nil
	case "drop_oldest":
		return OverflowDropOldest, nil
	default:
		return OverflowReject, fmt.Errorf("cyclic: unknown overflow policy %q", s)
	}
}

// Stats are usage counters kept across Reset.
type Stats struct {
	Reads     uint64
	Writes    uint64
	Overflows uint64
	Peeks     uint64
	Discards  uint64
	Rejected  uint64
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithOverflowPolicy selects how Push handles a full buffer.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(b *Buffer) {
		b.policy = p
	}
}

// Buffer is a ring of capacity elements of elementSize bytes each.
type Buffer struct {
	storage  []byte
	elemSize int
	capacity uint32
	in       uint32
	out      uint32
	elements uint32
	lastIn   uint32
	lastOut  uint32
	policy   OverflowPolicy
	stats    Stats

	// Bytes of an element FromStream has started but not completed.
	pending []byte
	partial int
}

// New returns a buffer backed by freshly allocated storage.
func New(elementSize, capacity int, opts ...Option) *Buffer {
	contract.AssertParams(elementSize > 0 && capacity > 0, "cyclic: element size and capacity must be positive")
	b := &Buffer{}
	b.Init(make([]byte, elementSize*capacity), elementSize, capacity, opts...)
	return b
}

// Init binds b to storage, which must hold at least capacity elements. The
// buffer keeps using storage until the next Init; the caller keeps owning it.
// Init clears all state, statistics included.
func (b *Buffer) Init(storage []byte, elementSize, capacity int, opts ...Option) {
	contract.AssertParams(b != nil, "cyclic: nil buffer")
	contract.AssertParams(elementSize > 0 && capacity > 0, "cyclic: element size and capacity must be positive")
	contract.AssertParams(uint64(capacity) <= math.MaxUint32, "cyclic: capacity out of range")
	contract.AssertParams(len(storage)/elementSize >= capacity, "cyclic: storage too small")

	size := elementSize * capacity
	*b = Buffer{
		storage:  storage[:size:size],
		elemSize: elementSize,
		capacity: uint32(capacity),
		pending:  make([]byte, elementSize),
	}
	for _, opt := range opts {
		opt(b)
	}
}

// Capacity returns the number of elements the buffer can hold.
func (b *Buffer) Capacity() int {
	return int(b.capacity)
}

// ElementSize returns the size of one element in bytes.
func (b *Buffer) ElementSize() int {
	return b.elemSize
}

// Elements returns how many elements are waiting to be consumed.
func (b *Buffer) Elements() int {
	return int(b.elements)
}

// Available returns how many elements can be pushed before the buffer is full.
func (b *Buffer) Available() int {
	return int(b.capacity - b.elements)
}

// Policy returns the overflow policy.
func (b *Buffer) Policy() OverflowPolicy {
	return b.policy
}

// InCount returns how many elements the last data-in operation stored.
func (b *Buffer) InCount() int {
	return int(b.lastIn)
}

// OutCount returns how many elements the last data-out operation consumed.
func (b *Buffer) OutCount() int {
	return int(b.lastOut)
}

// Pending returns how many bytes of an incomplete element FromStream holds
// back until the rest arrives.
func (b *Buffer) Pending() int {
	return b.partial
}

// Stats returns a copy of the usage counters.
func (b *Buffer) Stats() Stats {
	return b.stats
}

// Push copies elem into the buffer. On a full buffer it either refuses the
// element and returns false, or drops the oldest element, depending on the
// overflow policy.
func (b *Buffer) Push(elem []byte) bool {
	b.assertElement(elem)
	b.lastIn = 0

	if b.elements == b.capacity {
		if b.policy != OverflowDropOldest {
			b.stats.Rejected++
			return false
		}
		b.out = b.next(b.out)
		b.elements--
		b.stats.Overflows++
	}

	copy(b.slot(b.in), elem)
	b.commitIn()
	return true
}

// Pop copies the oldest element into dst and removes it. It returns false
// and leaves dst untouched when the buffer is empty.
func (b *Buffer) Pop(dst []byte) bool {
	b.assertElement(dst)
	b.lastOut = 0

	if b.elements == 0 {
		return false
	}

	copy(dst, b.slot(b.out))
	b.commitOut()
	return true
}

// PushAll pushes the whole elements of src in order, stopping at the first
// one the buffer refuses. len(src) must be a multiple of the element size.
// It returns the number of elements stored, also reported by InCount.
func (b *Buffer) PushAll(src []byte) int {
	contract.AssertState(b.capacity > 0, "cyclic: buffer not initialised")
	contract.AssertParams(len(src)%b.elemSize == 0, "cyclic: partial element in source")

	var n uint32
	for off := 0; off < len(src); off += b.elemSize {
		if !b.Push(src[off : off+b.elemSize]) {
			break
		}
		n++
	}
	b.lastIn = n
	return int(n)
}

// PopInto moves as many of the oldest elements as fit into dst and returns
// how many it moved, also reported by OutCount.
func (b *Buffer) PopInto(dst []byte) int {
	contract.AssertState(b.capacity > 0, "cyclic: buffer not initialised")

	var n uint32
	for off := 0; off+b.elemSize <= len(dst) && b.elements > 0; off += b.elemSize {
		copy(dst[off:], b.slot(b.out))
		b.commitOut()
		n++
	}
	b.lastOut = n
	return int(n)
}

// PeekInto copies as many of the oldest elements as fit into dst without
// consuming them and returns how many it copied.
func (b *Buffer) PeekInto(dst []byte) int {
	contract.AssertState(b.capacity > 0, "cyclic: buffer not initialised")

	n := min(len(dst)/b.elemSize, int(b.elements))
	for i := 0; i < n; i++ {
		copy(dst[i*b.elemSize:], b.slot(b.at(i)))
	}
	b.stats.Peeks += uint64(n)
	return n
}

// Peek copies the element at index, counted from the oldest, into dst
// without consuming it. It returns false if index is out of range.
func (b *Buffer) Peek(index int, dst []byte) bool {
	b.assertElement(dst)
	if index < 0 || index >= int(b.elements) {
		return false
	}

	copy(dst, b.slot(b.at(index)))
	b.stats.Peeks++
	return true
}

// Overwrite replaces the unconsumed element at index with elem. It returns
// false if index is out of range.
func (b *Buffer) Overwrite(index int, elem []byte) bool {
	b.assertElement(elem)
	if index < 0 || index >= int(b.elements) {
		return false
	}

	copy(b.slot(b.at(index)), elem)
	return true
}

// Discard drops every unconsumed element, and any incomplete element
// FromStream holds, and returns how many complete elements there were.
func (b *Buffer) Discard() int {
	n := b.elements
	b.out = b.at(int(n))
	b.elements = 0
	b.partial = 0
	b.stats.Discards += uint64(n)
	return int(n)
}

// Reset zeroes the storage and empties the buffer. Capacity, element size,
// policy and statistics are kept.
func (b *Buffer) Reset() {
	clear(b.storage)
	b.in = 0
	b.out = 0
	b.elements = 0
	b.lastIn = 0
	b.lastOut = 0
	b.partial = 0
}

func (b *Buffer) assertElement(elem []byte) {
	contract.AssertState(b.capacity > 0, "cyclic: buffer not initialised")
	contract.AssertParams(len(elem) == b.elemSize, "cyclic: element size mismatch")
}

func (b *Buffer) slot(i uint32) []byte {
	start := int(i) * b.elemSize
	end := start + b.elemSize
	return b.storage[start:end:end]
}

func (b *Buffer) next(i uint32) uint32 {
	return (i + 1) % b.capacity
}

func (b *Buffer) at(index int) uint32 {
	return uint32((uint64(b.out) + uint64(index)) % uint64(b.capacity))
}

func (b *Buffer) commitIn() {
	b.in = b.next(b.in)
	b.elements++
	b.lastIn++
	b.stats.Writes++
}

func (b *Buffer) commitOut() {
	b.out = b.next(b.out)
	b.elements--
	b.lastOut++
	b.stats.Reads++
}
