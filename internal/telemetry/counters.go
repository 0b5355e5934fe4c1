// Package telemetry hält prozessweite Zähler für Pump-Läufe und Flush-Runden.
package telemetry

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Counters zählt Pump-Läufe und Flush-Runden ohne Sperren. Der Nullwert ist
// einsatzbereit.
type Counters struct {
	pumpRuns      atomic.Uint64
	pumpAttempts  atomic.Uint64
	pumpMoved     atomic.Uint64
	pumpExhausted atomic.Uint64
	pumpNanos     atomic.Int64

	flushRounds     atomic.Uint64
	flushIncomplete atomic.Uint64
	flushNanos      atomic.Int64
}

// Snapshot ist ein Abzug aller Zähler.
type Snapshot struct {
	PumpRuns      uint64
	PumpAttempts  uint64
	PumpMoved     uint64
	PumpExhausted uint64
	PumpAverage   time.Duration

	FlushRounds     uint64
	FlushIncomplete uint64
	FlushAverage    time.Duration
}

var defaultCounters Counters

// Default liefert die globalen Zähler.
func Default() *Counters {
	return &defaultCounters
}

// StartPump zählt einen Pump-Lauf. Die Abschlussfunktion meldet Versuche,
// bewegte Elemente und ob das Retry-Budget aufgebraucht wurde.
func (c *Counters) StartPump() func(attempts, moved int, exhausted bool) {
	start := time.Now()
	c.pumpRuns.Add(1)
	return func(attempts, moved int, exhausted bool) {
		c.pumpNanos.Add(time.Since(start).Nanoseconds())
		c.pumpAttempts.Add(uint64(attempts))
		c.pumpMoved.Add(uint64(moved))
		if exhausted {
			c.pumpExhausted.Add(1)
		}
	}
}

// StartFlush zählt eine Flush-Runde; err != nil markiert sie als unvollständig.
func (c *Counters) StartFlush() func(err error) {
	start := time.Now()
	c.flushRounds.Add(1)
	return func(err error) {
		c.flushNanos.Add(time.Since(start).Nanoseconds())
		if err != nil {
			c.flushIncomplete.Add(1)
		}
	}
}

// Snapshot liest alle Zähler.
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		PumpRuns:        c.pumpRuns.Load(),
		PumpAttempts:    c.pumpAttempts.Load(),
		PumpMoved:       c.pumpMoved.Load(),
		PumpExhausted:   c.pumpExhausted.Load(),
		FlushRounds:     c.flushRounds.Load(),
		FlushIncomplete: c.flushIncomplete.Load(),
	}
	if s.PumpRuns > 0 {
		s.PumpAverage = time.Duration(c.pumpNanos.Load() / int64(s.PumpRuns))
	}
	if s.FlushRounds > 0 {
		s.FlushAverage = time.Duration(c.flushNanos.Load() / int64(s.FlushRounds))
	}
	return s
}

// Reset setzt alle Zähler zurück.
func (c *Counters) Reset() {
	c.pumpRuns.Store(0)
	c.pumpAttempts.Store(0)
	c.pumpMoved.Store(0)
	c.pumpExhausted.Store(0)
	c.pumpNanos.Store(0)
	c.flushRounds.Store(0)
	c.flushIncomplete.Store(0)
	c.flushNanos.Store(0)
}

// Fields gibt den Abzug als Log-Felder aus.
func (s Snapshot) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint64("pump_runs", s.PumpRuns),
		zap.Uint64("pump_attempts", s.PumpAttempts),
		zap.Uint64("pump_moved", s.PumpMoved),
		zap.Uint64("pump_exhausted", s.PumpExhausted),
		zap.Duration("pump_average", s.PumpAverage),
		zap.Uint64("flush_rounds", s.FlushRounds),
		zap.Uint64("flush_incomplete", s.FlushIncomplete),
		zap.Duration("flush_average", s.FlushAverage),
	}
}
