// Package server provides the HTTP server and routing for CapScope.
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

	"github.com/quantrove/capscope/internal/config"
	"github.com/quantrove/capscope/internal/database"
	"github.com/quantrove/capscope/internal/modules/charts"
	chartshandlers "github.com/quantrove/capscope/internal/modules/charts/handlers"
	"github.com/quantrove/capscope/internal/modules/historical"
	metricshandlers "github.com/quantrove/capscope/internal/modules/metrics/handlers"
	universehandlers "github.com/quantrove/capscope/internal/modules/universe/handlers"
	"github.com/quantrove/capscope/internal/scheduler"
	"github.com/quantrove/capscope/internal/services"
)

// Config holds server configuration.
type Config struct {
	Log        zerolog.Logger
	Config     *config.Config
	DataDB     *database.DB
	CacheDB    *database.DB
	Historical *historical.Service
	Analysis   *services.AnalysisService
	Charts     *charts.Service
	RefreshJob scheduler.Job
}

// Server represents the HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server with all module routes mounted.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg.Config,
	}

	s.systemHandlers = NewSystemHandlers(
		cfg.Log,
		cfg.Config.DataDir,
		cfg.DataDB,
		cfg.CacheDB,
		cfg.Historical,
		cfg.RefreshJob,
	)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware.
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes(cfg Config) {
	// Health check (before API routing)
	s.router.Get("/health", s.handleHealth)

	defaults := services.Defaults{
		Window:       cfg.Config.DefaultWindow,
		RiskFreeRate: cfg.Config.DefaultRiskFreeRate,
	}

	// System monitoring and operations
	s.router.Route("/api/system", func(r chi.Router) {
		r.Get("/status", s.systemHandlers.HandleSystemStatus)
		r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		r.Post("/refresh", s.systemHandlers.HandleTriggerRefresh)
	})

	// Universe module
	universeHandler := universehandlers.NewHandler(s.log)
	universeHandler.RegisterRoutes(s.router)

	// Metrics module
	metricsHandler := metricshandlers.NewHandler(cfg.Analysis, defaults, s.log)
	metricsHandler.RegisterRoutes(s.router)

	// Charts module
	chartsHandler := chartshandlers.NewHandler(cfg.Analysis, cfg.Charts, defaults, s.log)
	chartsHandler.RegisterRoutes(s.router)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.systemHandlers.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "capscope",
	})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
