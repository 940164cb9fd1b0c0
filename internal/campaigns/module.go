// Package campaigns module wiring and route registration.
package campaigns

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "mailmind_backend/internal/http"
	"mailmind_backend/platform/validator"
)

// Module is the campaigns bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the campaigns module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	handler := NewHandler(repo, val)
	return &Module{handler: handler, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaigns"
}

// Repository exposes campaign lookups to other modules (webhook routing,
// handover evaluation).
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts campaign routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/campaigns")
	group.POST("", m.handler.HandleCreate)
	group.GET("", m.handler.HandleList)
	group.GET("/:campaignId", m.handler.HandleGet)
	group.PUT("/:campaignId", m.handler.HandleUpdate)
	group.DELETE("/:campaignId", m.handler.HandleDelete)
}
