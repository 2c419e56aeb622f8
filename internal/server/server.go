// Package server provides the HTTP server of the coaching application.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcheck/internal/app"
	"github.com/ayusman/formcheck/internal/metrics"
	"github.com/ayusman/formcheck/internal/server/api"
	"github.com/ayusman/formcheck/internal/store"
)

// Coach is the live session behind the feed, the stream and the coach API.
type Coach interface {
	api.Coach
	Subscribe(fn func(app.Update)) func()
	LatestFrame() []byte
}

// Config holds the server configuration. Every dependency is optional; the
// routes that need a missing one are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Coach     Coach
	Metrics   *metrics.Manager
	Gatherer  prometheus.Gatherer
}

// Server represents the HTTP server of the application.
type Server struct {
	config Config
	router *mux.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET").Name("health")

	apiRouter := s.router.PathPrefix("/api").Subrouter()
	api.NewExerciseHandler(apiRouter)

	var coach api.Coach
	if s.config.Coach != nil {
		coach = s.config.Coach
	}

	if s.config.Store != nil {
		api.NewSessionHandler(apiRouter, s.config.Store, coach)
		api.NewGoalHandler(apiRouter, s.config.Store.Goals(), coach)
	}

	if s.config.Coach != nil {
		var settings *store.SettingsRepository
		if s.config.Store != nil {
			settings = s.config.Store.Settings()
		}
		api.NewCoachHandler(apiRouter, s.config.Coach, settings)

		apiRouter.Handle("/feed", NewFeedHandler(s.config.Coach, s.config.Metrics)).Methods("GET").Name("feed")
		apiRouter.Handle("/stream", NewStreamHandler(s.config.Coach)).Methods("GET").Name("stream")
	}

	if s.config.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})).Methods("GET").Name("metrics")
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the routes, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Coach != nil {
		response["coaching"] = s.config.Coach.Running()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		// long-lived streams end with ctx
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
