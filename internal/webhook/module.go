// Package webhook is the inbound email bounded context: it verifies provider
// webhook signatures, records messages, and hands them to the pipeline.
package webhook

import (
	"mailmind_backend/internal/campaigns"
	"mailmind_backend/internal/conversations"
	"mailmind_backend/internal/events"
	apphttp "mailmind_backend/internal/http"
	"mailmind_backend/internal/leads"
	"mailmind_backend/platform/config"
	"mailmind_backend/platform/logger"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	cfg     config.WebhookConfig
}

// NewModule creates and initializes the webhook module.
func NewModule(
	campaignRepo *campaigns.Repository,
	leadsSvc *leads.Service,
	convRepo *conversations.Repository,
	pipeline HandoverPipeline,
	cfg config.WebhookConfig,
	eventBus events.Bus,
	log *logger.Logger,
) *Module {
	service := NewService(campaignRepo, leadsSvc, convRepo, pipeline, eventBus, log)

	return &Module{
		handler: NewHandler(service, log),
		cfg:     cfg,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the public webhook endpoint. Signature verification
// replaces JWT auth here; the caller is the email provider, not a user.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhook")
	if ctx.WebhookRateLimiter != nil {
		group.Use(ctx.WebhookRateLimiter.RateLimit())
	}
	group.Use(SignatureMiddleware(m.cfg))
	group.POST("/mailgun", m.handler.HandleMailgunInbound)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
