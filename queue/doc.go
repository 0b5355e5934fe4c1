// Package queue provides an intrusive double-ended queue.
//
// The link lives inside the caller's record: a record embeds a Node and
// exposes it through QueueNode. The queue never allocates or frees anything;
// it only links and unlinks nodes owned by the caller. Because each node
// keeps a back-reference to its record, converting between node and record
// needs no pointer arithmetic, and the link field may sit anywhere in the
// record.
//
// A node belongs to at most one queue at a time. Inserting a linked node,
// detaching a node from a queue it does not belong to, or passing a nil
// record are contract violations and panic.
//
// Records can be visited front to back or back to front with a Traversal or
// the All iterator. The record most recently returned by a step may be
// detached before the next step.
//
// The queue has no internal locking. Callers sharing a queue between
// goroutines must serialise access themselves.
package queue
