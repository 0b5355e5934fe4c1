package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/timzifer/halcore/internal/telemetry"
)

// Channel beschreibt einen gepufferten Ausgabekanal.
//
// Flush überträgt die gepufferten Daten an das Gerät. Ein Fehler betrifft nur
// diesen Kanal; der Orchestrator fährt mit den übrigen Kanälen fort und meldet
// alle Fehler gemeinsam.
type Channel interface {
	Name() string
	Flush(ctx context.Context) error
}

// FlushOrchestrator serialisiert Flush-Runden über alle bekannten Kanäle.
type FlushOrchestrator struct {
	mu       sync.Mutex
	channels []Channel
	counters *telemetry.Counters
	rounds   atomic.Uint64
	clean    atomic.Uint64
}

type flushObserverKey struct{}

// WithFlushObserver returns a context that notifies observer about the final
// outcome of FlushAll, after every channel has been flushed and before the
// error is returned to the caller.
func WithFlushObserver(ctx context.Context, observer func(error)) context.Context {
	if observer == nil {
		return ctx
	}
	return context.WithValue(ctx, flushObserverKey{}, observer)
}

// NewFlushOrchestrator erzeugt einen neuen Orchestrator. Ohne counters zählt
// er in telemetry.Default().
func NewFlushOrchestrator(counters *telemetry.Counters, channels ...Channel) *FlushOrchestrator {
	if counters == nil {
		counters = telemetry.Default()
	}
	copyChannels := append([]Channel(nil), channels...)
	return &FlushOrchestrator{channels: copyChannels, counters: counters}
}

// FlushAll führt Flush auf allen Kanälen in Registrierungsreihenfolge innerhalb
// einer globalen kritischen Sektion aus. Bei Kontextabbruch werden die
// restlichen Kanäle übersprungen.
func (o *FlushOrchestrator) FlushAll(ctx context.Context) (err error) {
	finish := o.counters.StartFlush()
	defer func() { finish(err) }()

	observer, _ := ctx.Value(flushObserverKey{}).(func(error))

	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for _, ch := range o.channels {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, ctxErr)
			break
		}
		if flushErr := ch.Flush(ctx); flushErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), flushErr))
		}
	}
	err = errors.Join(errs...)

	if observer != nil {
		observer(err)
	}

	o.rounds.Add(1)
	if err == nil {
		o.clean.Add(1)
	}
	return err
}

// Rounds gibt die Anzahl abgeschlossener Flush-Runden zurück.
func (o *FlushOrchestrator) Rounds() uint64 {
	return o.rounds.Load()
}

// CleanRounds gibt die Anzahl fehlerfreier Flush-Runden zurück.
func (o *FlushOrchestrator) CleanRounds() uint64 {
	return o.clean.Load()
}

// Len returns the number of registered channels.
func (o *FlushOrchestrator) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.channels)
}

// RegisterChannel hängt zur Laufzeit einen weiteren Kanal an.
func (o *FlushOrchestrator) RegisterChannel(ch Channel) error {
	if ch == nil {
		return errors.New("nil channel")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.channels = append(o.channels, ch)
	return nil
}

// ReplaceChannel ersetzt den Kanal gleichen Namens oder hängt ch an, falls
// keiner existiert.
func (o *FlushOrchestrator) ReplaceChannel(ch Channel) error {
	if ch == nil {
		return errors.New("nil channel")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, existing := range o.channels {
		if existing.Name() == ch.Name() {
			o.channels[i] = ch
			return nil
		}
	}
	o.channels = append(o.channels, ch)
	return nil
}
