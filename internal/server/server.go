// Package server exposes the analysis system over HTTP for external
// frontends.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/research"
)

const maxBatchSymbols = 50

// Server wraps the research system behind a JSON API. The system is
// built lazily on the initialize call so the process can start without
// credentials and report its degraded state.
type Server struct {
	cfg *config.Config

	mu     sync.RWMutex
	system *research.System
}

func New(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// NewWithSystem wraps an already-initialized system.
func NewWithSystem(cfg *config.Config, system *research.System) *Server {
	return &Server{cfg: cfg, system: system}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/initialize", s.handleInitialize).Methods(http.MethodPost)
	r.HandleFunc("/api/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	return r
}

// ListenAndServe blocks serving the API until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) currentSystem() *research.System {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.system
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "multibagger-analysis",
	})
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.system == nil {
		system, err := research.New(r.Context(), s.cfg)
		if err != nil {
			log.Printf("[server] initialization failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		s.system = system
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  s.system.Status(),
	})
}

type analyzeRequest struct {
	Symbol  string   `json:"symbol,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	system := s.currentSystem()
	if system == nil {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"error":   "system not initialized, call /api/initialize first",
		})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body: " + err.Error(),
		})
		return
	}

	symbols := req.Symbols
	if req.Symbol != "" {
		symbols = append([]string{req.Symbol}, symbols...)
	}
	if len(symbols) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "no symbols provided",
		})
		return
	}
	if len(symbols) > maxBatchSymbols {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "too many symbols in one request",
		})
		return
	}

	report := system.AnalyzeBatch(r.Context(), symbols)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"report":  report,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	system := s.currentSystem()
	if system == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"initialized": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, system.Status())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[server] could not encode response: %v", err)
	}
}
