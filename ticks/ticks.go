// Package ticks keeps the system tick count and the hooks run on every tick.
//
// A Counter has a single writer, the tick source (a hardware timer interrupt
// on a target, a time.Ticker when hosted), and any number of readers. All
// state is accessed atomically so readers never need a lock.
package ticks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/timzifer/halcore/internal/contract"
)

// Ticks counts timer periods since the counter started.
type Ticks uint64

// Clock reports the current tick count.
type Clock interface {
	Now() Ticks
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() Ticks

// Now calls f.
func (f ClockFunc) Now() Ticks { return f() }

// Hook runs from the tick source after the count has been incremented.
// Hooks must return quickly and must not call SetHook.
type Hook interface {
	OnTick(now Ticks)
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(now Ticks)

// OnTick calls f.
func (f HookFunc) OnTick(now Ticks) { f(now) }

// Slot identifies one of the fixed hook positions.
type Slot int

const (
	// SlotBoard is reserved for board support code.
	SlotBoard Slot = iota
	// SlotScheduler is reserved for a cooperative scheduler.
	SlotScheduler
	// SlotUser is free for application code.
	SlotUser

	slotCount
)

type hookEntry struct {
	hook Hook
}

// Counter is a tick counter with a fixed set of hook slots. The zero value is
// ready to use.
type Counter struct {
	ticks atomic.Uint64
	hooks [slotCount]atomic.Pointer[hookEntry]
}

// NewCounter returns a counter starting at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Tick advances the count by one and runs every installed hook in slot
// order. Only the tick source may call Tick.
func (c *Counter) Tick() {
	now := Ticks(c.ticks.Add(1))
	for i := range c.hooks {
		if e := c.hooks[i].Load(); e != nil {
			e.hook.OnTick(now)
		}
	}
}

// Now returns the current tick count.
func (c *Counter) Now() Ticks {
	return Ticks(c.ticks.Load())
}

// SetHook installs h in slot and returns the hook it replaced, if any.
func (c *Counter) SetHook(slot Slot, h Hook) (Hook, bool) {
	contract.AssertParams(slot >= 0 && slot < slotCount, "ticks: invalid hook slot")
	contract.AssertParams(h != nil, "ticks: nil hook, use ClearHook")
	prev := c.hooks[slot].Swap(&hookEntry{hook: h})
	if prev == nil {
		return nil, false
	}
	return prev.hook, true
}

// ClearHook empties slot and returns the hook it held, if any.
func (c *Counter) ClearHook(slot Slot) (Hook, bool) {
	contract.AssertParams(slot >= 0 && slot < slotCount, "ticks: invalid hook slot")
	prev := c.hooks[slot].Swap(nil)
	if prev == nil {
		return nil, false
	}
	return prev.hook, true
}

// Run calls Tick once per period until ctx is done. It returns ctx.Err().
func (c *Counter) Run(ctx context.Context, period time.Duration) error {
	contract.AssertParams(period > 0, "ticks: period must be positive")
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
		}
	}
}

var (
	defaultOnce    sync.Once
	defaultCounter *Counter
)

// Default returns the process-wide counter. It is created on first use and
// never replaced.
func Default() *Counter {
	defaultOnce.Do(func() {
		defaultCounter = NewCounter()
	})
	return defaultCounter
}

// Manual is a Clock for tests and simulations that advances only when told.
type Manual struct {
	now  atomic.Uint64
	step atomic.Uint64
}

// NewManual returns a manual clock that advances by step on every Now call.
// A zero step gives a clock that moves only through Advance.
func NewManual(step Ticks) *Manual {
	m := &Manual{}
	m.step.Store(uint64(step))
	return m
}

// Now returns the current value and then advances by the configured step.
func (m *Manual) Now() Ticks {
	step := m.step.Load()
	return Ticks(m.now.Add(step) - step)
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d Ticks) {
	m.now.Add(uint64(d))
}
