package input

import (
	"context"
	"sync"
	"time"

	"focusd/internal/event"
)

// Kind identifies one class of raw input activity.
type Kind string

const (
	Press   Kind = "press"
	Release Kind = "release"
	Move    Kind = "move"
	Click   Kind = "click"
	Scroll  Kind = "scroll"
)

// Aggregator accumulates raw input events into per-kind counts. Record and
// Flush are safe to call from any goroutine; the read-emit-reset in Flush
// is atomic with respect to concurrent Record calls.
type Aggregator struct {
	mu       sync.Mutex
	stats    map[Kind]int
	interval time.Duration
	sink     event.Sink
}

// NewAggregator creates an aggregator flushing through sink. interval is
// the periodic flush interval reported on timer-driven flushes.
func NewAggregator(interval time.Duration, sink event.Sink) *Aggregator {
	return &Aggregator{
		stats:    make(map[Kind]int),
		interval: interval,
		sink:     sink,
	}
}

// Record increments the counter for kind.
func (a *Aggregator) Record(kind Kind) {
	a.mu.Lock()
	a.stats[kind]++
	a.mu.Unlock()
}

// Flush emits an input event carrying the accumulated counts and resets
// them. A flush of an empty bank emits nothing. timeout marks a regular
// sampling interval; the tracker flushes with timeout=false right before
// an active-window emission so that activity is never attributed across a
// window-switch boundary.
func (a *Aggregator) Flush(timeout bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.stats) == 0 {
		return
	}

	stats := make(map[string]int, len(a.stats))
	for kind, count := range a.stats {
		stats[string(kind)] = count
	}

	payload := event.InputPayload{
		Timeout: timeout,
		Stats:   stats,
	}
	if timeout {
		payload.Interval = int(a.interval / time.Second)
	}

	a.sink.Emit(event.Input, payload)
	a.stats = make(map[Kind]int)
}

// Run drives periodic timeout flushes until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Flush(true)
		}
	}
}
