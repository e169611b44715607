package window

import (
	"github.com/BurntSushi/xgb/xproto"

	"focusd/internal/logger"
	"focusd/internal/x11"
)

// PropertyClient is the subset of the windowing client the resolver needs.
// Each query fails independently; a failure on a stale handle is detected
// with x11.IsWindowGone.
type PropertyClient interface {
	WindowName(win xproto.Window) (string, error)
	WindowPID(win xproto.Window) (uint32, error)
	WindowClass(win xproto.Window) ([]string, error)
	WindowFullscreen(win xproto.Window) (bool, error)
}

// ProcessCache resolves a pid to its command line, memoized.
type ProcessCache interface {
	Resolve(pid int) ([]string, error)
}

// Resolver gathers window metadata. Resolution is best-effort: individual
// property failures degrade the field to absent, and a handle that became
// invalid mid-resolution yields nil rather than an error.
type Resolver struct {
	client PropertyClient
	procs  ProcessCache
}

// NewResolver creates a metadata resolver.
func NewResolver(client PropertyClient, procs ProcessCache) *Resolver {
	return &Resolver{client: client, procs: procs}
}

// Resolve returns the metadata for win, or nil for an absent handle or a
// window that closed during resolution. It never returns an error.
func (r *Resolver) Resolve(win xproto.Window) *Metadata {
	if win == x11.None {
		return nil
	}

	log := logger.WithComponent("resolver")

	rawPID, err := r.client.WindowPID(win)
	if err != nil {
		if x11.IsWindowGone(err) {
			return nil
		}
		log.Debug().Err(err).Uint32("wid", uint32(win)).Msg("Failed to read window pid")
		rawPID = 0
	}

	var pid *int
	if rawPID != 0 {
		// The cmdline itself is not embedded; resolving through the
		// cache drives the one-time new-pid discovery event. A pid
		// whose process is already gone degrades to absent.
		if _, err := r.procs.Resolve(int(rawPID)); err != nil {
			log.Debug().Err(err).Uint32("pid", rawPID).Msg("Process vanished before lookup")
		} else {
			p := int(rawPID)
			pid = &p
		}
	}

	var name *string
	rawName, err := r.client.WindowName(win)
	if err != nil {
		if x11.IsWindowGone(err) {
			return nil
		}
		log.Debug().Err(err).Uint32("wid", uint32(win)).Msg("Failed to read window name")
	} else if rawName != "" {
		name = &rawName
	}

	fullscreen, err := r.client.WindowFullscreen(win)
	if err != nil {
		if x11.IsWindowGone(err) {
			return nil
		}
		log.Debug().Err(err).Uint32("wid", uint32(win)).Msg("Failed to read window state")
		fullscreen = false
	}

	class, err := r.client.WindowClass(win)
	if err != nil {
		if x11.IsWindowGone(err) {
			return nil
		}
		log.Debug().Err(err).Uint32("wid", uint32(win)).Msg("Failed to read window class")
		class = nil
	}
	if class == nil {
		class = []string{}
	}

	return &Metadata{
		Name:       name,
		ID:         uint32(win),
		PID:        pid,
		Fullscreen: fullscreen,
		Class:      class,
	}
}
