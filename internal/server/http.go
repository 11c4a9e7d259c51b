package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// health is refreshed by the frame loop so HTTP handlers never touch the room.
type health struct {
	Status     string `json:"status"`
	Objects    int    `json:"objects"`
	MaxObjects int    `json:"max_objects"`
	DeleteMode bool   `json:"delete_mode"`
	Clients    int64  `json:"clients"`
	Frame      int64  `json:"frame"`
}

// Handler returns the HTTP routes: /ws for clients and /healthz for probes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := health{Status: "starting"}
	if cur := s.health.Load(); cur != nil {
		h = *cur
	}
	h.Clients = atomic.LoadInt64(&s.clientCount)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h); err != nil {
		s.logger.Warn("Failed to write health response")
	}
}
