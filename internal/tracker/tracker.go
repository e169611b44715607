// Package tracker drives the focus-change detection loop: it waits for
// windowing-system notifications, re-checks the foreground window, swaps
// the per-window notification subscription, and emits active-window events
// when the resolved metadata actually changes.
package tracker

import (
	"context"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"focusd/internal/event"
	"focusd/internal/logger"
	"focusd/internal/window"
	"focusd/internal/x11"
)

// WindowSystem is the windowing-system surface the tracker drives.
type WindowSystem interface {
	ActiveWindow() (xproto.Window, error)
	Subscribe(win xproto.Window) error
	Unsubscribe(win xproto.Window) error
	WaitForEvent() (xgb.Event, xgb.Error)
	PollForEvent() (xgb.Event, xgb.Error)
}

// Resolver turns a window handle into its metadata.
type Resolver interface {
	Resolve(win xproto.Window) *window.Metadata
}

// Flusher drains accumulated input counts. The tracker flushes with
// timeout=false right before each active-window emission.
type Flusher interface {
	Flush(timeout bool)
}

// Tracker holds the process-wide focus state. Run executes on a single
// goroutine; the mutex only guards Current for outside readers.
type Tracker struct {
	ws       WindowSystem
	resolver Resolver
	agg      Flusher
	sink     event.Sink

	mu         sync.RWMutex
	lastWindow xproto.Window
	lastMeta   *window.Metadata
	started    bool
}

// New creates a tracker.
func New(ws WindowSystem, resolver Resolver, agg Flusher, sink event.Sink) *Tracker {
	return &Tracker{
		ws:       ws,
		resolver: resolver,
		agg:      agg,
		sink:     sink,
	}
}

// Current returns the metadata of the last emitted window state.
func (t *Tracker) Current() *window.Metadata {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastMeta
}

// Run performs one unconditional check, then blocks on windowing-system
// notifications until ctx is cancelled and the connection is closed. Any
// number of pending notifications coalesce into a single re-check.
func (t *Tracker) Run(ctx context.Context) error {
	log := logger.WithComponent("tracker")

	t.check()

	for {
		ev, xerr := t.ws.WaitForEvent()
		if ev == nil && xerr == nil {
			// Connection closed.
			if ctx.Err() != nil {
				return nil
			}
			return ErrConnectionClosed
		}
		if xerr != nil {
			log.Debug().Str("error", xerr.Error()).Msg("X event error")
		}
		t.drain()

		if ctx.Err() != nil {
			return nil
		}
		t.check()
	}
}

// drain discards queued notifications; the following check is idempotent.
func (t *Tracker) drain() {
	for {
		ev, xerr := t.ws.PollForEvent()
		if ev == nil && xerr == nil {
			return
		}
	}
}

// check queries the foreground window, swaps the notification subscription
// if the handle changed, and emits on metadata change. The handle is
// updated unconditionally: two different handles may resolve to equal
// metadata, and that must not re-emit.
func (t *Tracker) check() {
	log := logger.WithComponent("tracker")

	win, err := t.ws.ActiveWindow()
	if err != nil {
		log.Debug().Err(err).Msg("Failed to query active window")
		win = x11.None
	}

	if win != t.lastWindow {
		// Both sides are best-effort: either window may already be
		// gone.
		if err := t.ws.Unsubscribe(t.lastWindow); err != nil {
			log.Debug().Err(err).Uint32("wid", uint32(t.lastWindow)).Msg("Unsubscribe failed")
		}
		if err := t.ws.Subscribe(win); err != nil {
			log.Debug().Err(err).Uint32("wid", uint32(win)).Msg("Subscribe failed")
		}
	}

	meta := t.resolver.Resolve(win)
	if !t.started || !meta.Equal(t.lastMeta) {
		t.agg.Flush(false)
		if meta == nil {
			t.sink.Emit(event.ActiveWindow, nil)
		} else {
			t.sink.Emit(event.ActiveWindow, meta)
		}
		t.mu.Lock()
		t.lastMeta = meta
		t.mu.Unlock()
	}

	t.started = true
	t.lastWindow = win
}
