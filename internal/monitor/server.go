// Package monitor exposes the read-only surface consumed by external
// dashboards: shared snapshot, current solution, replan archive and a live
// event stream. It polls at its own cadence and never blocks the
// coordinator beyond the snapshot lock.
package monitor

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"fleetopt/internal/buildinfo"
	"fleetopt/internal/metrics"
	"fleetopt/internal/state"
	"fleetopt/internal/store"
)

type Server struct {
	Shared    *state.SharedState
	Solutions *state.SolutionState
	Archive   store.Store
	Broker    EventBroker
	// Status reports coordinator state and fatal error for readiness.
	Status func() (string, error)

	limiter *rate.Limiter
}

func NewServer(shared *state.SharedState, solutions *state.SolutionState, archive store.Store, broker EventBroker, rps float64, burst int) *Server {
	if rps <= 0 {
		rps = 50
	}
	if burst <= 0 {
		burst = int(rps) * 2
	}
	return &Server{
		Shared:    shared,
		Solutions: solutions,
		Archive:   archive,
		Broker:    broker,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Handler builds the monitor mux with rate limiting and metrics applied.
func (s *Server) Handler() http.Handler {
	metrics.RegisterDefault()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/snapshot", s.SnapshotHandler)
	mux.HandleFunc("/v1/solution", s.SolutionHandler)
	mux.HandleFunc("/v1/replans", s.ReplansHandler)
	mux.HandleFunc("/v1/stream", s.StreamHandler)
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	return s.middleware(mux)
}

// SnapshotHandler handles GET /v1/snapshot
func (s *Server) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.Shared.Read())
}

// SolutionHandler handles GET /v1/solution
func (s *Server) SolutionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.Solutions.Read())
}

// ReplansHandler handles GET /v1/replans
func (s *Server) ReplansHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
	items, err := s.Archive.ListReplans(r.Context(), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List replans failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler reports 503 once the coordinator has stopped.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	st := "unknown"
	var err error
	if s.Status != nil {
		st, err = s.Status()
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": st, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": st})
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" && !s.limiter.Allow() {
			writeProblem(w, http.StatusTooManyRequests, "Rate limited", "too many requests", r.URL.Path)
			return
		}
		if r.URL.Path == "/v1/stream" {
			// websocket upgrade needs the raw ResponseWriter (Hijacker)
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)
		status := fmt.Sprintf("%d", rec.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(dur.Seconds())
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
