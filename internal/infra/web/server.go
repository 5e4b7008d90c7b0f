package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/infra/api"
	"telegram-giveaway-bot/internal/usecase"
)

// Server is the read-only admin HTTP API plus health and metrics endpoints.
type Server struct {
	statsUC usecase.StatsUseCase
	auth    *AuthManager
	log     *zerolog.Logger
	server  *http.Server
}

func NewServer(statsUC usecase.StatsUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{statsUC: statsUC, auth: auth, log: logger}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(func(next http.Handler) http.Handler {
		return api.Chain(next,
			api.TraceID(),
			api.RequestLog(s.log),
			api.Recover(s.log),
			api.Timeout(10*time.Second),
		)
	})

	r.Get("/healthz", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", s.sessionHandler)
		r.Group(func(r chi.Router) {
			r.Use(s.auth.Require)
			r.Get("/stats", s.statsHandler)
			r.Get("/leaderboard", s.leaderboardHandler)
			r.Get("/codes", s.codesHandler)
		})
	})
	return r
}

// Start blocks serving on port until Shutdown.
func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("admin http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
