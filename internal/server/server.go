// Package server exposes the HTTP and websocket surface.
package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/unoarena/server/internal/game"
	"github.com/unoarena/server/internal/room"
)

// Server routes HTTP requests and owns the websocket session registry.
type Server struct {
	rooms *room.Manager
	users game.UserStore
	log   *logrus.Entry

	sessionsMu sync.Mutex
	sessions   map[string]map[*session]struct{}
}

// New builds a Server. users may be nil when no database is configured;
// the user endpoint then reports unavailable.
func New(rooms *room.Manager, users game.UserStore) *Server {
	return &Server{
		rooms:    rooms,
		users:    users,
		log:      logrus.WithField("component", "server"),
		sessions: make(map[string]map[*session]struct{}),
	}
}

// Router assembles the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/user/{id}", s.handleGetUser)
	r.Get("/ws", s.handleWS)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  s.rooms.Count(),
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if s.users == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "user store unavailable"})
		return
	}
	id := chi.URLParam(r, "id")
	user, err := s.users.GetUserByID(r.Context(), id)
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("user lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// registerSession adds sess to the fanout registry for its room.
func (s *Server) registerSession(sess *session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	set, ok := s.sessions[sess.roomID]
	if !ok {
		set = make(map[*session]struct{})
		s.sessions[sess.roomID] = set
	}
	set[sess] = struct{}{}
}

func (s *Server) unregisterSession(sess *session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if set, ok := s.sessions[sess.roomID]; ok {
		delete(set, sess)
		if len(set) == 0 {
			delete(s.sessions, sess.roomID)
		}
	}
}

// fanout delivers ev to every session in roomID, dropping on slow peers.
func (s *Server) fanout(roomID string, ev Event) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	for sess := range s.sessions[roomID] {
		sess.send(ev)
	}
}
