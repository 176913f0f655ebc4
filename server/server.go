// Package server provides HTTP server management and lifecycle handling for the Cogitto API.
// It wires the middleware stack and routes and shuts down gracefully.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"sync"
	"time"

	"github.com/cogitto/cogitto-api/config"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const rateLimiterCleanupInterval = 30 * time.Minute

// Server represents the HTTP server
type Server struct {
	server       *http.Server
	router       chi.Router
	handler      interfaces.HTTPHandler
	config       *config.Config
	limiter      *RateLimiter
	mu           sync.Mutex // guards stopCleanup and profilingSrv
	stopCleanup  func()
	profilingSrv *http.Server
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:     router,
			Addr:        cfg.Address + ":" + cfg.Port,
			ReadTimeout: 15 * time.Second,
			// Generation may take up to GENERATION_TIMEOUT
			WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		handler: handler,
		config:  cfg,
		limiter: NewRateLimiter(bucketRate, bucketCapacity),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.handler

	s.router.NotFound(h.ServeHTTP)
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
	})

	s.router.Get("/", h.ServiceInfo)
	s.router.Get("/health", h.HealthCheck)
	s.router.Get("/stats", h.Stats)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/medications", func(r chi.Router) {
		r.Get("/", h.ListMedications)
		r.Get("/search", h.SearchMedications)
		r.Get("/filter/prescription", h.FilterPrescription)
		r.Get("/filter/otc", h.FilterOTC)
		r.Get("/{id}", h.GetMedication)
		r.Get("/{id}/insights", h.MedicationInsights)
	})

	s.router.Route("/interactions", func(r chi.Router) {
		r.Get("/check", h.CheckInteraction)
		r.Post("/analyze", h.AnalyzeInteractions)
	})

	s.router.Route("/chat", func(r chi.Router) {
		r.Post("/sessions", h.StartSession)
		r.Post("/message", h.SendMessage)
		r.Get("/conversations/{id}", h.GetConversation)
		r.Get("/demo", h.ChatDemo)
	})
}

// Router exposes the configured router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.mu.Lock()
	// Start profiling server if in development mode
	if s.config.Env == config.EnvDevelopment {
		s.startProfilingServer()
	}
	s.stopCleanup = s.limiter.StartCleanup(rateLimiterCleanupInterval)
	s.mu.Unlock()

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.mu.Lock()
	if s.stopCleanup != nil {
		s.stopCleanup()
	}
	if s.profilingSrv != nil {
		s.profilingSrv.Close()
	}
	s.mu.Unlock()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode.
// Called with s.mu held.
func (s *Server) startProfilingServer() {
	srv := &http.Server{Addr: "localhost:6060", Handler: http.DefaultServeMux}
	s.profilingSrv = srv
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
