// Package web exposes a small read-only status endpoint over the latest
// board snapshot.
package web

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"herald/internal/models"
	"herald/internal/storage"
	"herald/internal/vars"
)

// Server holds the dependencies and rate-limit configuration of the status
// endpoint.
type Server struct {
	state     *State
	history   *storage.Recorder // may be nil
	rateCount int
	rateWin   time.Duration
}

// New creates a status endpoint server. history may be nil when the
// population history database is disabled.
func New(state *State, history *storage.Recorder, rateCount int, rateWin time.Duration) *Server {
	return &Server{
		state:     state,
		history:   history,
		rateCount: rateCount,
		rateWin:   rateWin,
	}
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(s.handleHealth))
	mux.Handle("GET /api/snapshot", http.HandlerFunc(s.handleSnapshot))
	mux.Handle("GET /api/peak", http.HandlerFunc(s.handlePeak))

	return s.loggingMiddleware(s.rateLimitMiddleware(mux))
}

// handleHealth reports liveness and build info.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"name":    vars.Name,
		"version": vars.Version,
	})
}

// handleSnapshot returns the latest rendered board as JSON.
func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	items, updated := s.state.Get()
	if items == nil {
		items = []models.BoardItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"updated": updated,
		"servers": items,
	})
}

// handlePeak returns the highest recorded population for one server over
// the last 24 hours. Query params: ?key=1.2.3.4:2302
func (s *Server) handlePeak(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "History disabled", http.StatusNotFound)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key", http.StatusBadRequest)
		return
	}

	peak, err := s.history.Peak(key, 24*time.Hour)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to read peak population")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"key": key, "peak": peak})
}

// rateLimitMiddleware applies a hard per-IP rate limit and rejects requests
// with "429 Too Many Requests" when it is exceeded.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	// Drop old clients every 5 min
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			mu.Lock()
			now := time.Now()
			for ip, c := range clients {
				if now.Sub(c.lastSeen) > 10*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		mu.Lock()
		cli, found := clients[ip]
		if !found {
			limit := rate.Limit(float64(s.rateCount) / s.rateWin.Seconds())
			cli = &client{limiter: rate.NewLimiter(limit, s.rateCount)}
			clients[ip] = cli
		}
		cli.lastSeen = time.Now()
		limiter := cli.limiter
		mu.Unlock()

		if !limiter.Allow() {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs the details of each HTTP request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
