// Package api exposes the HTTP status interface for hostmerge.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wakuvilla/hostmerge/internal/blocklist"
	"github.com/wakuvilla/hostmerge/internal/history"
	"github.com/wakuvilla/hostmerge/internal/metrics"
)

// HealthReader exposes the persisted per-source health records.
type HealthReader interface {
	Load() map[string]blocklist.HealthRecord
}

// Server wires HTTP handlers to the history and health stores.
type Server struct {
	router  chi.Router
	history history.Store
	health  HealthReader
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(historyStore history.Store, healthStore HealthReader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		history: historyStore,
		health:  healthStore,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(recoverMiddleware)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", metrics.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Get("/history", s.getHistory)
		r.Get("/sources", s.getSources)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type historyRow struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.Load(r.Context())
	if err != nil {
		s.logger.Error("load history for API", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	rows := make([]historyRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, historyRow{Date: e.Date.Format(history.DateLayout), Value: e.Value})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) getSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Load())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("dur", time.Since(start)),
		)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
