package tracker

import "errors"

// ErrConnectionClosed is returned by Run when the windowing-system
// connection drops without the context being cancelled first.
var ErrConnectionClosed = errors.New("windowing system connection closed")
