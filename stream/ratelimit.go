package stream

import (
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/timzifer/halcore/internal/contract"
)

// RateLimitedSink writes to an io.Writer no faster than a fixed byte rate,
// like a UART with a bounded baud rate and a small transmit FIFO. It never
// blocks: a chunk that does not fit the current budget is refused whole and
// EOF is raised until budget is available again.
//
// A failing writer is a broken transport, reported by Err rather than EOF.
type RateLimitedSink struct {
	w       io.Writer
	limiter *rate.Limiter
	now     func() time.Time
	eof     bool
	err     error
	sent    int64
}

// RateLimitOption configures a RateLimitedSink.
type RateLimitOption func(*RateLimitedSink)

// WithNow replaces the wall clock used to refill the budget.
func WithNow(now func() time.Time) RateLimitOption {
	return func(r *RateLimitedSink) {
		r.now = now
	}
}

// NewRateLimitedSink returns a sink accepting bytesPerSecond on average with
// bursts of up to burst bytes. No chunk larger than burst can ever be sent.
func NewRateLimitedSink(w io.Writer, bytesPerSecond float64, burst int, opts ...RateLimitOption) *RateLimitedSink {
	contract.AssertParams(w != nil, "stream: nil writer")
	contract.AssertParams(bytesPerSecond >= 0 && burst > 0, "stream: invalid rate")

	r := &RateLimitedSink{
		w:       w,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Send writes p if the budget allows all of it.
func (r *RateLimitedSink) Send(p []byte) int {
	contract.AssertParams(len(p) <= r.limiter.Burst(), "stream: chunk larger than burst")

	if r.err != nil || !r.limiter.AllowN(r.now(), len(p)) {
		r.eof = true
		return 0
	}

	n, err := r.w.Write(p)
	r.sent += int64(n)
	if err != nil {
		r.err = err
	}
	r.eof = n < len(p)
	return n
}

// EOF reports whether the last Send was refused or cut short.
func (r *RateLimitedSink) EOF() bool {
	return r.eof
}

// Err returns the first write error. Once set, every Send is refused.
func (r *RateLimitedSink) Err() error {
	return r.err
}

// Sent returns the total bytes written.
func (r *RateLimitedSink) Sent() int64 {
	return r.sent
}
