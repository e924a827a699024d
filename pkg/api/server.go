// Package api exposes the session workflow over HTTP
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hrmigrate/hrmigrate/pkg/pipeline"
	"github.com/hrmigrate/hrmigrate/pkg/session"
)

// Server provides HTTP API endpoints
type Server struct {
	sessions   *session.Manager
	pipeline   *pipeline.Service
	router     *mux.Router
	httpServer *http.Server
	log        *logrus.Entry
}

// NewServer creates a new API server
func NewServer(sessions *session.Manager, svc *pipeline.Service, port string) *Server {
	s := &Server{
		sessions: sessions,
		pipeline: svc,
		router:   mux.NewRouter(),
		log:      logrus.WithField("component", "api"),
	}

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// setupRoutes sets up the HTTP routes. Routes live on the root router so
// that a method mismatch answers 405 rather than 404.
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.errorRecoveryMiddleware)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "Not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	sessions := NewSessionHandler(s.sessions, s.pipeline)
	s.router.HandleFunc("/api/sessions", sessions.HandleCreate).Methods(http.MethodPost)
	s.router.HandleFunc("/api/sessions", sessions.HandleList).Methods(http.MethodGet)
	s.router.HandleFunc("/api/sessions/{id}", sessions.HandleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/api/sessions/{id}", sessions.HandleDelete).Methods(http.MethodDelete)
	s.router.HandleFunc("/api/sessions/{id}/files/{fileType}", sessions.HandleUpload).Methods(http.MethodPut)
	s.router.HandleFunc("/api/sessions/{id}/outputs", sessions.HandleOutputs).Methods(http.MethodGet)
	s.router.HandleFunc("/api/sessions/{id}/outputs/{name}", sessions.HandleDownload).Methods(http.MethodGet)
	s.router.HandleFunc("/api/sessions/{id}/{app}/generate", sessions.HandleGenerate).Methods(http.MethodPost)
	s.router.HandleFunc("/api/sessions/{id}/{app}/validate", sessions.HandleValidate).Methods(http.MethodGet)

	configs := NewConfigHandler(s.pipeline)
	s.router.HandleFunc("/api/config/{app}", configs.HandleDocuments).Methods(http.MethodGet)
	s.router.HandleFunc("/api/config/{app}/{document}", configs.HandleDocument).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	s.router.HandleFunc("/api/runs/{app}", configs.HandleRuns).Methods(http.MethodGet)
}

// Handler returns the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"sessions": s.sessions.Len(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
