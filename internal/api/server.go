package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/nantutech/ntcore/internal/api/handler"
	mw "github.com/nantutech/ntcore/internal/api/middleware"
	"github.com/nantutech/ntcore/internal/config"
	"github.com/nantutech/ntcore/internal/core"
)

type Server struct {
	router         chi.Router
	logger         zerolog.Logger
	services       *core.Services
	corePool       *pgxpool.Pool
	temporalClient temporalclient.Client
	cfg            *config.Config
}

func NewServer(logger zerolog.Logger, coreDB *pgxpool.Pool, temporalClient temporalclient.Client, cfg *config.Config) *Server {
	services := core.NewServices(coreDB, temporalClient, cfg.LockTTL)

	s := &Server{
		router:         chi.NewRouter(),
		logger:         logger,
		services:       services,
		corePool:       coreDB,
		temporalClient: temporalClient,
		cfg:            cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.corePool))

		// Workspaces
		workspace := handler.NewWorkspace(s.services)
		r.Get("/workspaces", workspace.List)
		r.Post("/workspaces", workspace.Create)
		r.Get("/workspaces/{workspaceID}", workspace.Get)
		r.Delete("/workspaces/{workspaceID}", workspace.Delete)

		// Deployments
		deployment := handler.NewDeployment(s.services)
		r.Get("/workspaces/{workspaceID}/deployments", deployment.ListByWorkspace)
		r.Post("/workspaces/{workspaceID}/deployments", deployment.Create)
		r.Get("/workspaces/{workspaceID}/deployments/active", deployment.GetActive)
		r.Get("/workspaces/{workspaceID}/deployments/latest", deployment.GetLatest)
		r.Get("/workspaces/{workspaceID}/deployments/{deploymentID}", deployment.Get)
		r.Post("/workspaces/{workspaceID}/deployments/{deploymentID}/stop", deployment.Stop)
		r.Get("/deployments/active", deployment.ListActive)

		// Experiment registry
		experiment := handler.NewExperiment(s.services)
		r.Post("/workspaces/{workspaceID}/registry", experiment.Register)
		r.Get("/workspaces/{workspaceID}/registry", experiment.Get)
		r.Delete("/workspaces/{workspaceID}/registry", experiment.Unregister)

		// Deployment locks
		lock := handler.NewDeploymentLock(s.services)
		r.Get("/workspaces/{workspaceID}/lock", lock.Get)
		r.Delete("/workspaces/{workspaceID}/lock", lock.Delete)

		// API keys
		apiKey := handler.NewAPIKey(s.services)
		r.Post("/api-keys", apiKey.Create)
		r.Delete("/api-keys/{id}", apiKey.Revoke)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReadyz reports ready only when the core database answers.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.corePool.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("core database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
