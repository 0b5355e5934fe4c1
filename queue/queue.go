package queue

import (
	"iter"

	"github.com/timzifer/halcore/internal/contract"
)

// Node is the link embedded in a queueable record. The zero value is an
// unlinked node. Callers must not read or modify its fields.
type Node[T any] struct {
	prev  *Node[T] // closer to the front
	next  *Node[T] // closer to the back
	owner *Queue[T]
	value T
}

// Linked reports whether the node currently belongs to a queue.
func (n *Node[T]) Linked() bool {
	return n.owner != nil
}

// Linker is implemented by records that embed a Node. T is normally a
// pointer to the record itself:
//
//	type task struct {
//		link queue.Node[*task]
//		id   int
//	}
//
//	func (t *task) QueueNode() *queue.Node[*task] { return &t.link }
type Linker[T any] interface {
	comparable
	QueueNode() *Node[T]
}

// Queue is a double-ended queue of caller-owned records. The zero value is an
// empty queue ready to use. A Queue is not safe for concurrent mutation.
type Queue[T Linker[T]] struct {
	head *Node[T]
	tail *Node[T]
	size int
}

// New returns an empty queue.
func New[T Linker[T]]() *Queue[T] {
	return &Queue[T]{}
}

// Init empties the queue. Records still linked into it are not unlinked, so
// Init must only be called on a zero or already drained queue.
func (q *Queue[T]) Init() {
	contract.AssertParams(q != nil, "queue: nil queue")
	contract.AssertState(q.size == 0, "queue: init on a non-empty queue")
	*q = Queue[T]{}
}

// Len returns the number of linked records.
func (q *Queue[T]) Len() int {
	return q.size
}

// Front returns the record at the front without removing it.
func (q *Queue[T]) Front() (T, bool) {
	var zero T
	if q.head == nil {
		return zero, false
	}
	return q.head.value, true
}

// Back returns the record at the back without removing it.
func (q *Queue[T]) Back() (T, bool) {
	var zero T
	if q.tail == nil {
		return zero, false
	}
	return q.tail.value, true
}

// Contains reports whether rec is linked into q. A nil queue contains
// nothing.
func (q *Queue[T]) Contains(rec T) bool {
	var zero T
	if q == nil || rec == zero {
		return false
	}
	return rec.QueueNode().owner == q
}

// PushBack links rec at the back of the queue.
func (q *Queue[T]) PushBack(rec T) {
	n := q.claim(rec)
	if q.tail == nil {
		q.head = n
		q.tail = n
	} else {
		q.tail.next = n
		n.prev = q.tail
		q.tail = n
	}
	q.size++
}

// PushFront links rec at the front of the queue.
func (q *Queue[T]) PushFront(rec T) {
	n := q.claim(rec)
	if q.head == nil {
		q.head = n
		q.tail = n
	} else {
		q.head.prev = n
		n.next = q.head
		q.head = n
	}
	q.size++
}

// PopFront unlinks and returns the record at the front.
func (q *Queue[T]) PopFront() (T, bool) {
	var zero T
	if q.head == nil {
		return zero, false
	}
	value := q.head.value
	q.unlinkNode(q.head)
	return value, true
}

// PopBack unlinks and returns the record at the back.
func (q *Queue[T]) PopBack() (T, bool) {
	var zero T
	if q.tail == nil {
		return zero, false
	}
	value := q.tail.value
	q.unlinkNode(q.tail)
	return value, true
}

// Enqueue is PushBack, for single-ended FIFO use.
func (q *Queue[T]) Enqueue(rec T) {
	q.PushBack(rec)
}

// Dequeue is PopFront, for single-ended FIFO use.
func (q *Queue[T]) Dequeue() (T, bool) {
	return q.PopFront()
}

// Detach unlinks rec from wherever it sits in the queue. rec must be linked
// into q.
func (q *Queue[T]) Detach(rec T) {
	var zero T
	contract.AssertParams(q != nil && rec != zero, "queue: nil queue or record")
	n := rec.QueueNode()
	contract.AssertParams(n != nil, "queue: record returned a nil node")
	contract.AssertState(n.owner == q, "queue: detaching a record linked elsewhere")
	contract.AssertState(q.size > 0 && q.head != nil && q.tail != nil, "queue: detach from empty queue")
	q.unlinkNode(n)
}

// All returns an iterator over the records in the given direction. The
// record just yielded may be detached inside the loop body.
func (q *Queue[T]) All(dir Direction) iter.Seq[T] {
	return func(yield func(T) bool) {
		var t Traversal[T]
		t.Init(q, dir)
		for {
			rec, ok := t.Step()
			if !ok || !yield(rec) {
				return
			}
		}
	}
}

func (q *Queue[T]) claim(rec T) *Node[T] {
	var zero T
	contract.AssertParams(q != nil && rec != zero, "queue: nil queue or record")
	n := rec.QueueNode()
	contract.AssertParams(n != nil, "queue: record returned a nil node")
	contract.AssertState(n.owner == nil, "queue: record already linked")
	n.owner = q
	n.value = rec
	n.prev = nil
	n.next = nil
	return n
}

func (q *Queue[T]) unlinkNode(n *Node[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		q.head = n.next
	}

	if n.next != nil {
		n.next.prev = n.prev
	} else {
		q.tail = n.prev
	}

	var zero T
	n.prev = nil
	n.next = nil
	n.owner = nil
	n.value = zero
	q.size--
}
