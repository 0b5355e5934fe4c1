package queue

import (
	"testing"

	"github.com/timzifer/halcore/internal/contract"
)

type record struct {
	link Node[*record]
	id   int
}

func (r *record) QueueNode() *Node[*record] { return &r.link }

func records(n int) []*record {
	out := make([]*record, n)
	for i := range out {
		out[i] = &record{id: i + 1}
	}
	return out
}

func ids(q *Queue[*record], dir Direction) []int {
	var out []int
	for r := range q.All(dir) {
		out = append(out, r.id)
	}
	return out
}

func expectIDs(t *testing.T, got []int, want ...int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func expectViolation(t *testing.T, kind contract.Kind, fn func()) {
	t.Helper()
	defer func() {
		v := contract.Recover(recover())
		if v == nil {
			t.Fatalf("expected a %s violation, got none", kind)
		}
		if v.Kind != kind {
			t.Fatalf("expected a %s violation, got %s", kind, v.Kind)
		}
	}()
	fn()
}

func TestQueueEnqueueAndDequeue(t *testing.T) {
	var q Queue[*record]
	rs := records(3)

	if _, ok := q.Dequeue(); ok {
		t.Fatalf("expected Dequeue to fail on an empty queue")
	}

	for _, r := range rs {
		q.Enqueue(r)
	}
	if got := q.Len(); got != 3 {
		t.Fatalf("expected 3 linked records, got %d", got)
	}

	for i, want := range []int{1, 2, 3} {
		r, ok := q.Dequeue()
		if !ok || r.id != want {
			t.Fatalf("dequeue %d expected %d, got %v,%v", i, want, r, ok)
		}
		if r.link.Linked() {
			t.Fatalf("dequeued record %d is still linked", r.id)
		}
	}

	if q.Len() != 0 {
		t.Fatalf("expected queue to be empty after dequeues")
	}
}

func TestQueuePushAndPopBothEnds(t *testing.T) {
	q := New[*record]()
	rs := records(4)

	q.PushBack(rs[0])
	q.PushFront(rs[1])
	q.PushBack(rs[2])
	q.PushFront(rs[3])

	expectIDs(t, ids(q, FrontToBack), 4, 2, 1, 3)

	if r, ok := q.Front(); !ok || r.id != 4 {
		t.Fatalf("expected Front to return 4, got %v,%v", r, ok)
	}
	if r, ok := q.Back(); !ok || r.id != 3 {
		t.Fatalf("expected Back to return 3, got %v,%v", r, ok)
	}

	if r, ok := q.PopBack(); !ok || r.id != 3 {
		t.Fatalf("expected PopBack to return 3, got %v,%v", r, ok)
	}
	if r, ok := q.PopFront(); !ok || r.id != 4 {
		t.Fatalf("expected PopFront to return 4, got %v,%v", r, ok)
	}
	expectIDs(t, ids(q, FrontToBack), 2, 1)
}

func TestQueueDetachMiddleAndEnds(t *testing.T) {
	var q Queue[*record]
	rs := records(5)
	for _, r := range rs {
		q.Enqueue(r)
	}

	q.Detach(rs[2])
	expectIDs(t, ids(&q, FrontToBack), 1, 2, 4, 5)

	q.Detach(rs[0])
	q.Detach(rs[4])
	expectIDs(t, ids(&q, FrontToBack), 2, 4)
	expectIDs(t, ids(&q, BackToFront), 4, 2)

	q.Detach(rs[1])
	q.Detach(rs[3])
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d records", q.Len())
	}
	if _, ok := q.Front(); ok {
		t.Fatalf("expected Front to fail on an empty queue")
	}

	// Detached records can be linked again.
	q.Enqueue(rs[2])
	expectIDs(t, ids(&q, FrontToBack), 3)
}

func TestQueueRejectsDoubleInsertion(t *testing.T) {
	var q, other Queue[*record]
	r := &record{id: 1}
	q.Enqueue(r)

	expectViolation(t, contract.KindState, func() { q.Enqueue(r) })
	expectViolation(t, contract.KindState, func() { other.PushFront(r) })

	if !q.Contains(r) || other.Contains(r) {
		t.Fatalf("record should belong to the first queue only")
	}
}

func TestQueueRejectsNilAndForeignDetach(t *testing.T) {
	var q, other Queue[*record]
	r := &record{id: 1}
	other.Enqueue(r)

	expectViolation(t, contract.KindParams, func() { q.Enqueue(nil) })
	expectViolation(t, contract.KindParams, func() { q.Detach(nil) })
	expectViolation(t, contract.KindState, func() { q.Detach(r) })
	expectViolation(t, contract.KindState, func() { q.Detach(&record{id: 2}) })

	if other.Len() != 1 {
		t.Fatalf("failed detach must not change the owning queue")
	}
}

func TestQueueInit(t *testing.T) {
	var q Queue[*record]
	q.Init()
	q.Init()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after Init")
	}

	q.Enqueue(&record{id: 1})
	expectViolation(t, contract.KindState, func() { q.Init() })
}

func TestTraversalReverseOrderAndReset(t *testing.T) {
	var q Queue[*record]
	for _, r := range records(4) {
		q.Enqueue(r)
	}

	trv := NewTraversal(&q, BackToFront)
	var got []int
	for r, ok := trv.Step(); ok; r, ok = trv.Step() {
		got = append(got, r.id)
	}
	expectIDs(t, got, 4, 3, 2, 1)

	if _, ok := trv.Step(); ok {
		t.Fatalf("expected traversal to stay at its end")
	}

	trv.Reset()
	if r, ok := trv.Step(); !ok || r.id != 4 {
		t.Fatalf("expected Reset to restart at 4, got %v,%v", r, ok)
	}
}

func TestTraversalDetachYieldedRecord(t *testing.T) {
	var q Queue[*record]
	for _, r := range records(6) {
		q.Enqueue(r)
	}

	var visited []int
	var trv Traversal[*record]
	trv.Init(&q, FrontToBack)
	for r, ok := trv.Step(); ok; r, ok = trv.Step() {
		visited = append(visited, r.id)
		if r.id%2 == 0 {
			q.Detach(r)
		}
	}

	expectIDs(t, visited, 1, 2, 3, 4, 5, 6)
	expectIDs(t, ids(&q, FrontToBack), 1, 3, 5)
}

func TestTraversalEndsWhenUpcomingRecordIsDetached(t *testing.T) {
	var q Queue[*record]
	rs := records(3)
	for _, r := range rs {
		q.Enqueue(r)
	}

	trv := NewTraversal(&q, FrontToBack)
	if r, ok := trv.Step(); !ok || r.id != 1 {
		t.Fatalf("expected first step to return 1, got %v,%v", r, ok)
	}
	q.Detach(rs[1])
	if _, ok := trv.Step(); ok {
		t.Fatalf("expected traversal to end at the detached record")
	}
}

func TestAllStopsWhenLoopBreaks(t *testing.T) {
	var q Queue[*record]
	for _, r := range records(5) {
		q.Enqueue(r)
	}

	var got []int
	for r := range q.All(FrontToBack) {
		got = append(got, r.id)
		if r.id == 2 {
			break
		}
	}
	expectIDs(t, got, 1, 2)
}

func TestNilQueueContainsNothing(t *testing.T) {
	var q *Queue[*record]
	r := &record{id: 1}
	if q.Contains(r) {
		t.Fatalf("nil queue must not contain an unlinked record")
	}

	var linked Queue[*record]
	linked.PushBack(r)
	if q.Contains(r) {
		t.Fatalf("nil queue must not contain a record linked elsewhere")
	}
}
