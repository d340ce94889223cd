package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/sendloop/sendloop/internal/api/v1"
	"github.com/sendloop/sendloop/internal/auth"
	"github.com/sendloop/sendloop/internal/billing"
	"github.com/sendloop/sendloop/internal/config"
	"github.com/sendloop/sendloop/internal/metrics"
	"github.com/sendloop/sendloop/internal/secrets"
	"github.com/sendloop/sendloop/internal/store/postgres"
	"github.com/sendloop/sendloop/internal/whatsapp"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service, cfg *config.Config) {
	v1.RegisterAuthRoutes(api, authSvc, cfg.Session.TTL)
}

func registerAPIRoutes(
	api huma.API,
	store *postgres.Store,
	authSvc *auth.Service,
	limits *billing.Service,
	gateway *whatsapp.Client,
	vault *secrets.Vault,
	m *metrics.APIMetrics,
) {
	v1.RegisterContactRoutes(api, store, m)
	v1.RegisterGroupRoutes(api, store)
	v1.RegisterWorkflowRoutes(api, store, limits, m)
	v1.RegisterTeamRoutes(api, store, limits, m)
	v1.RegisterRoleRoutes(api, store)
	v1.RegisterAccountRoutes(api, store, authSvc)
	v1.RegisterWabaRoutes(api, store)
	v1.RegisterTemplateRoutes(api, store, gateway, vault, m)
}

func registerUploadRoutes(r chi.Router, store *postgres.Store, gateway *whatsapp.Client, vault *secrets.Vault) {
	r.Post("/media-handle", v1.MediaUploadHandler(store, gateway, vault))
}

func registerEngineRoutes(r chi.Router, store *postgres.Store) {
	r.Post("/workflows/{id}/executions", v1.ExecutionReportHandler(store))
}
