// Package hook delivers raw keyboard and pointer activity from the OS
// input layer. Listeners run on their own goroutines and report each
// observed event kind through a callback; they carry no payload beyond the
// kind, since only aggregate counts matter downstream.
package hook

import "focusd/internal/input"

// Listener is the boundary to an OS input-hook subsystem.
type Listener interface {
	// Start begins delivering input kinds to fn asynchronously.
	Start(fn func(input.Kind)) error
	// Stop stops delivery and releases the underlying devices.
	Stop() error
}
