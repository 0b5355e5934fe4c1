package queue

import "github.com/timzifer/halcore/internal/contract"

// Direction selects the order in which a Traversal visits records.
type Direction int

const (
	// FrontToBack visits records from the front to the back.
	FrontToBack Direction = iota
	// BackToFront visits records from the back to the front.
	BackToFront
)

// Traversal steps through a queue one record at a time. The step captures the
// following node before returning, so the caller may detach the record it
// just received without disturbing the remaining steps. Detaching any other
// record during a traversal ends it early at that record.
type Traversal[T Linker[T]] struct {
	queue   *Queue[T]
	current *Node[T]
	dir     Direction
}

// NewTraversal returns a traversal positioned at the first record in dir.
func NewTraversal[T Linker[T]](q *Queue[T], dir Direction) *Traversal[T] {
	t := &Traversal[T]{}
	t.Init(q, dir)
	return t
}

// Init binds the traversal to q and positions it at the first record in dir.
func (t *Traversal[T]) Init(q *Queue[T], dir Direction) {
	contract.AssertParams(t != nil && q != nil, "queue: nil traversal or queue")
	contract.AssertParams(dir == FrontToBack || dir == BackToFront, "queue: invalid direction")
	t.queue = q
	t.dir = dir
	t.Reset()
}

// Reset moves the traversal back to its first record.
func (t *Traversal[T]) Reset() {
	contract.AssertParams(t != nil && t.queue != nil, "queue: traversal not initialised")
	if t.dir == FrontToBack {
		t.current = t.queue.head
	} else {
		t.current = t.queue.tail
	}
}

// Step returns the record at the current position and advances. It returns
// false once the end is reached.
func (t *Traversal[T]) Step() (T, bool) {
	var zero T
	contract.AssertParams(t != nil && t.queue != nil, "queue: traversal not initialised")

	n := t.current
	if n == nil || n.owner != t.queue {
		t.current = nil
		return zero, false
	}

	if t.dir == FrontToBack {
		t.current = n.next
	} else {
		t.current = n.prev
	}
	return n.value, true
}
