// Package conversations module wiring and route registration.
package conversations

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "mailmind_backend/internal/http"
)

// Module is the conversations bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the conversations module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	return &Module{handler: NewHandler(repo), repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversations"
}

// Repository exposes conversation storage to the webhook and handover modules.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts conversation routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/conversations")
	group.GET("/:conversationId", m.handler.HandleGet)
	group.GET("/:conversationId/messages", m.handler.HandleListMessages)

	ctx.Protected.GET("/leads/:leadId/conversations", m.handler.HandleListByLead)
}
