// Package server provides the HTTP server and routing.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/adurand/portanalyzer/internal/modules/concentration"
	"github.com/adurand/portanalyzer/internal/modules/optimization"
	"github.com/adurand/portanalyzer/internal/modules/portfolio"
	"github.com/adurand/portanalyzer/internal/modules/risk"
	"github.com/adurand/portanalyzer/internal/modules/universe"
)

// Config bundles everything the server needs to route requests.
type Config struct {
	Log     zerolog.Logger
	Port    int
	DevMode bool

	PortfolioHandler     *portfolio.Handler
	ConcentrationHandler *concentration.Handler
	RiskHandler          *risk.Handler
	OptimizationHandler  *optimization.Handler
	UniverseHandler      *universe.Handler
}

// Server is the HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

// New creates the HTTP server with middleware and all module routes mounted.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if cfg.DevMode {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/system/stats", s.handleSystemStats)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/portfolio", cfg.PortfolioHandler.Routes)
		r.Route("/concentration", cfg.ConcentrationHandler.Routes)
		r.Route("/risk", cfg.RiskHandler.Routes)
		r.Route("/optimization", cfg.OptimizationHandler.Routes)
		r.Route("/universe", cfg.UniverseHandler.Routes)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start begins serving. Blocks until the listener closes.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
