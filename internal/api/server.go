// Package api provides the HTTP façade over the simulation engine.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
//
// The engine itself is single-threaded; the server serializes every access
// behind one mutex, so handlers always observe a consistent world.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/talgya/guardian-sim/internal/sim"
)

// Server serves the simulation state over HTTP.
type Server struct {
	World      *sim.World
	AdminKey   string // Bearer token for POST endpoints. Empty = POST disabled.
	BatchLimit int    // Max runs per batch request.
	Origins    []string

	mu  sync.Mutex
	hub *hub
}

// Handler builds the full route table wrapped in CORS and gzip middleware.
func (s *Server) Handler() http.Handler {
	if s.hub == nil {
		s.hub = newHub()
	}
	batchLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/scales", s.handleScales)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/scale/", s.adminOnly(s.handleSetScale))
	mux.HandleFunc("/api/v1/start", s.adminOnly(s.handleStart))
	mux.HandleFunc("/api/v1/start_random", s.adminOnly(s.handleStartRandom))
	mux.HandleFunc("/api/v1/randomize", s.adminOnly(s.handleRandomize))
	mux.HandleFunc("/api/v1/step", s.adminOnly(s.handleStep))
	mux.HandleFunc("/api/v1/reset", s.adminOnly(s.handleReset))
	mux.HandleFunc("/api/v1/params", s.adminOnly(s.handleParams))
	mux.HandleFunc("/api/v1/stats/reset", s.adminOnly(s.handleStatsReset))
	mux.HandleFunc("/api/v1/toggle_positions", s.adminOnly(s.handleTogglePositions))
	mux.HandleFunc("/api/v1/batch/", s.adminOnly(RateLimitMiddleware(batchLimiter, s.handleBatch)))

	return gzhttp.GzipHandler(s.corsMiddleware(mux))
}

// corsMiddleware adds CORS headers for allowed frontend origins. Localhost
// dev servers are always allowed.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range s.Origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin key configured)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// snapshotLocked grabs the engine lock, applies fn, and returns the
// resulting snapshot. Mutating handlers funnel through here so every change
// is also pushed to stream subscribers.
func (s *Server) snapshotLocked(fn func(*sim.World)) sim.Snapshot {
	s.mu.Lock()
	if fn != nil {
		fn(s.World)
	}
	snap := s.World.Snapshot()
	s.mu.Unlock()
	if fn != nil && s.hub != nil {
		s.hub.broadcast(snap)
	}
	return snap
}

func postOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
