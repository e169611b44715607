package event

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"focusd/internal/logger"
)

// Sink serializes tagged event records. Implementations must preserve call
// order and must not fail on well-formed payloads.
type Sink interface {
	Emit(name string, data interface{})
}

// Stream writes one JSON record per line to w, unbuffered, and fans each
// record out to subscribed listeners. It is safe for concurrent use; the
// internal lock makes it a single writer.
type Stream struct {
	mu sync.Mutex
	w  io.Writer
	// now is swappable for tests.
	now func() time.Time

	lmu       sync.RWMutex
	listeners []chan Record
}

// NewStream creates a stream sink writing to w.
func NewStream(w io.Writer) *Stream {
	return &Stream{w: w, now: time.Now}
}

// Emit writes one record to the stream and notifies listeners.
func (s *Stream) Emit(name string, data interface{}) {
	rec := Record{
		Time:  float64(s.now().UnixNano()) / float64(time.Second),
		V:     Version,
		Event: name,
		Data:  data,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		// Payloads are plain structs and maps; this indicates a
		// programming error, not a runtime condition.
		logger.WithComponent("event").Error().Err(err).Str("event", name).Msg("Failed to encode record")
		return
	}

	s.mu.Lock()
	s.w.Write(line)
	s.w.Write([]byte{'\n'})
	s.mu.Unlock()

	s.notify(rec)
}

// Subscribe adds a listener for emitted records.
func (s *Stream) Subscribe() chan Record {
	ch := make(chan Record, 16)
	s.lmu.Lock()
	s.listeners = append(s.listeners, ch)
	s.lmu.Unlock()
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (s *Stream) Unsubscribe(ch chan Record) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	for i, listener := range s.listeners {
		if listener == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (s *Stream) notify(rec Record) {
	s.lmu.RLock()
	defer s.lmu.RUnlock()

	for _, listener := range s.listeners {
		select {
		case listener <- rec:
		default:
			// Skip if channel is full
		}
	}
}
