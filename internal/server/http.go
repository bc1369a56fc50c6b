package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/reviewquest/progression/pkg/notify"
	"github.com/reviewquest/progression/pkg/progression"
)

// Pinger reports storage connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPServer serves the caller-facing progression API: the award entry
// point plus read endpoints for the dashboard.
type HTTPServer struct {
	server *http.Server
	port   int
	engine *progression.Engine
	hub    *notify.Hub
	pinger Pinger
}

// NewHTTPServer creates a new API server instance.
func NewHTTPServer(port int, engine *progression.Engine, hub *notify.Hub, pinger Pinger) *HTTPServer {
	return &HTTPServer{
		port:   port,
		engine: engine,
		hub:    hub,
		pinger: pinger,
	}
}

// Setup builds the router. Identity verification happens upstream in the
// dashboard backend; this service trusts the user ID in the path.
func (s *HTTPServer) Setup() error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/users/{userID}", func(r chi.Router) {
		r.Post("/award", s.handleAward)
		r.Get("/progression", s.handleProgression)
		r.Get("/notifications", s.handleNotifications)
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

// Start begins serving the API on the configured port.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("http server listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("http server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the API server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down http server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("http server stopped")
	return nil
}

type awardRequest struct {
	ActionKind progression.ActionKind `json:"actionKind"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

func (s *HTTPServer) handleAward(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ActionKind == "" {
		writeError(w, http.StatusBadRequest, "actionKind is required")
		return
	}

	result, err := s.engine.Award(r.Context(), userID, req.ActionKind, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, progression.ErrUnknownAction):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, progression.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, progression.ErrConflictExhausted):
			writeError(w, http.StatusConflict, err.Error())
		default:
			logrus.Errorf("award failed for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "award failed")
		}
		return
	}

	s.hub.Submit(result)
	writeJSON(w, http.StatusOK, result)
}

type progressionResponse struct {
	*progression.Snapshot
	ScoreToNextTier int `json:"scoreToNextTier"`
}

func (s *HTTPServer) handleProgression(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	snap, err := s.engine.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, progression.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no progression state for user")
			return
		}
		logrus.Errorf("failed to load progression for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load progression")
		return
	}

	writeJSON(w, http.StatusOK, progressionResponse{
		Snapshot:        snap,
		ScoreToNextTier: progression.ScoreToNextTier(snap.Score),
	})
}

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	payloads := s.hub.Drain(userID)
	if payloads == nil {
		payloads = []notify.Payload{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": payloads})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		logrus.Warnf("health check failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
