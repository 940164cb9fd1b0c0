// Package leads module wiring and route registration.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"mailmind_backend/internal/events"
	apphttp "mailmind_backend/internal/http"
	"mailmind_backend/platform/logger"
	"mailmind_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	repo    *Repository
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, eventBus, log)
	handler := NewHandler(service, repo, val)
	return &Module{handler: handler, service: service, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes lead intake to the webhook module.
func (m *Module) Service() *Service {
	return m.service
}

// Repository exposes lead lookups to other modules.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/leads")
	group.POST("", m.handler.HandleCreate)
	group.GET("/:leadId", m.handler.HandleGet)

	ctx.Protected.GET("/campaigns/:campaignId/leads", m.handler.HandleListByCampaign)
}
