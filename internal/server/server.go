package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/sendloop/sendloop/internal/auth"
	"github.com/sendloop/sendloop/internal/billing"
	"github.com/sendloop/sendloop/internal/config"
	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/metrics"
	"github.com/sendloop/sendloop/internal/secrets"
	"github.com/sendloop/sendloop/internal/server/middleware"
	"github.com/sendloop/sendloop/internal/store/postgres"
	"github.com/sendloop/sendloop/internal/whatsapp"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *postgres.Store
	auth       *auth.Service
	limits     *billing.Service
	cfg        *config.Config
}

// New creates a Server with all routes wired. ctx bounds the background
// goroutines started by middleware (rate-limiter cleanup).
func New(
	ctx context.Context,
	cfg *config.Config,
	store *postgres.Store,
	authSvc *auth.Service,
	limits *billing.Service,
	gateway *whatsapp.Client,
	vault *secrets.Vault,
	m *metrics.APIMetrics,
) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Engine-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		store:  store,
		auth:   authSvc,
		limits: limits,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for session endpoints.
	// 2. Authenticated group for everything else.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			authConfig := huma.DefaultConfig("Sendloop Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			authAPI := humachi.New(r, authConfig)
			registerAuthRoutes(authAPI, authSvc, cfg)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Session.Secret))
			r.Use(middleware.RequireCompany())
			r.Use(middleware.RateLimit(ctx, 100, 200))
			r.Use(middleware.Metrics(m))

			apiConfig := huma.DefaultConfig("Sendloop API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, store, authSvc, limits, gateway, vault, m)

			// Media uploads feed the template wizard, an owner/admin surface.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleOwner, domain.RoleAdmin))
				registerUploadRoutes(r, store, gateway, vault)
			})
		})
	})

	// Execution write-back for the external engine, keyed separately from
	// the session surface.
	router.Route("/engine/v1", func(r chi.Router) {
		r.Use(middleware.EngineKey(cfg.Engine.APIKey))
		registerEngineRoutes(r, store)
	})

	// Prometheus scrape endpoint (unauthenticated).
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
