package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/devdish/devdish/backend/config"
	"github.com/devdish/devdish/backend/internal/api"
	"github.com/devdish/devdish/backend/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// NewServer builds the router with the global middleware chain and every
// API route.
func NewServer(cfg *config.Config, svc api.Services, limiters api.Limiters, checks map[string]api.Check) *Server {
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.CORS(cfg.Origins()),
		middleware.Timeout(cfg.RequestTimeout),
	)
	router.NoRoute(middleware.NotFound())

	if cfg.EnableProfiling {
		pprof.Register(router)
		log.Warn().Msg("Profiling routes enabled at /debug/pprof")
	}

	api.SetupAPI(router, svc, limiters, checks, !cfg.Env.IsProduction())

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until the server is shut down. A clean shutdown returns nil.
func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Msg("Starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
