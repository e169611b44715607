// Package api exposes a read-only local mirror of the event stream: the
// current window over HTTP and live records over a websocket. It never
// alters what goes to stdout.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"focusd/internal/event"
	"focusd/internal/logger"
	"focusd/internal/tracker"
)

// Server represents the HTTP API server
type Server struct {
	router   *mux.Router
	stream   *event.Stream
	tracker  *tracker.Tracker
	upgrader websocket.Upgrader
}

// NewServer creates a new API server
func NewServer(stream *event.Stream, trk *tracker.Tracker) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		stream:  stream,
		tracker: trk,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local, read-only endpoint.
				return true
			},
		},
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/window/current", s.handleGetCurrentWindow).Methods("GET")
	api.HandleFunc("/events", s.handleEventStream)
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start starts the HTTP server on localhost.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	logger.WithComponent("api").Info().Str("addr", addr).Msg("Stream server listening")
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleGetCurrentWindow(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	current := s.tracker.Current()
	if current == nil {
		// A focused-nothing state is data, not an error.
		w.Write([]byte("null\n"))
		return
	}
	json.NewEncoder(w).Encode(current)
}

func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("api")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	records := s.stream.Subscribe()
	defer s.stream.Unsubscribe(records)

	for rec := range records {
		if err := conn.WriteJSON(rec); err != nil {
			log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
