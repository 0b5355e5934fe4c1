// Package pump drives a cyclic buffer against a stream transport with a
// bounded retry budget.
//
// Drain and Fill never block and never sleep: each attempt moves what the
// transport takes or produces right now, and a transport EOF only costs one
// unit of the budget. A run therefore ends after at most retries+1 attempts.
// Callers that need to wait for a slow device do so between runs.
package pump

import (
	"github.com/timzifer/halcore/cyclic"
	"github.com/timzifer/halcore/internal/contract"
	"github.com/timzifer/halcore/stream"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	// Success means the buffer was emptied (Drain) or filled (Fill).
	Success Outcome = iota
	// RetriesExhausted means the transport raised EOF on the last allowed
	// attempt and work is left over. The caller decides whether to resume.
	RetriesExhausted
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case RetriesExhausted:
		return "retries_exhausted"
	default:
		return "unknown"
	}
}

// Result describes a finished run.
type Result struct {
	Outcome Outcome
	// Attempts is the number of ToStream or FromStream calls made.
	Attempts int
	// Moved is the number of elements transferred over all attempts.
	Moved int
	// Remaining is the number of elements still buffered after Drain, or
	// of free slots left after Fill.
	Remaining int
}

// Ok reports whether the run succeeded.
func (r Result) Ok() bool {
	return r.Outcome == Success
}

// Drain sends the elements of c to sink until c is empty or the retry budget
// is spent. An empty buffer succeeds without touching sink.
//
// Each attempt ends either with c empty or with sink raising EOF, as
// cyclic.Buffer.ToStream enforces, so a run never finishes with elements
// left and no EOF, nor with EOF and nothing left.
func Drain(c *cyclic.Buffer, sink stream.Sink, retries int) Result {
	contract.AssertParams(c != nil && sink != nil, "pump: nil buffer or sink")
	contract.AssertParams(retries >= 0, "pump: negative retry budget")

	var r Result
	for c.Elements() > 0 {
		if r.Attempts > retries {
			r.Outcome = RetriesExhausted
			break
		}
		r.Attempts++
		r.Moved += c.ToStream(sink)
	}
	r.Remaining = c.Elements()
	return r
}

// Fill receives elements from src until c is full or the retry budget is
// spent. A full buffer succeeds without touching src.
func Fill(c *cyclic.Buffer, src stream.Source, retries int) Result {
	contract.AssertParams(c != nil && src != nil, "pump: nil buffer or source")
	contract.AssertParams(retries >= 0, "pump: negative retry budget")

	var r Result
	for c.Available() > 0 {
		if r.Attempts > retries {
			r.Outcome = RetriesExhausted
			break
		}
		r.Attempts++
		r.Moved += c.FromStream(src)
	}
	r.Remaining = c.Available()
	return r
}
