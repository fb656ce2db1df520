// Package httpapi exposes the authentication service over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/dmitrijs2005/zkauth/internal/logging"
	"github.com/dmitrijs2005/zkauth/internal/server/auth"
	"github.com/dmitrijs2005/zkauth/internal/server/metrics"
)

// HealthCheck reports whether the service's backends are reachable.
type HealthCheck func(ctx context.Context) error

type Server struct {
	address string
	logger  logging.Logger
	auth    *auth.Service
	metrics *metrics.Metrics
	health  HealthCheck
}

func NewServer(address string, logger logging.Logger, authService *auth.Service, m *metrics.Metrics, health HealthCheck) *Server {
	return &Server{
		address: address,
		logger:  logger.With("module", "http_server"),
		auth:    authService,
		metrics: m,
		health:  health,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(s.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/challenge", s.handleChallenge)
			r.Post("/verify", s.handleVerify)
		})
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
