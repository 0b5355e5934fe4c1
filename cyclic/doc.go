// Package cyclic implements a fixed-capacity ring buffer of fixed-size
// elements over caller-owned storage.
//
// A Buffer never allocates after Init and never resizes. Elements move in
// and out whole: Push and Pop copy exactly one element, and the stream
// operations commit an element only once the transport has taken or
// produced all of its bytes.
//
// A Buffer is not safe for concurrent use. Callers sharing one between an
// interrupt handler or goroutine and main-line code must provide their own
// mutual exclusion.
package cyclic
