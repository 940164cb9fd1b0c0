// Package handover decides when an email conversation should move from the
// automated assistant to a human sales rep, and produces the sales brief the
// rep receives.
package handover

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"mailmind_backend/internal/agent"
	"mailmind_backend/internal/campaigns"
	"mailmind_backend/internal/conversations"
	"mailmind_backend/internal/email"
	"mailmind_backend/internal/events"
	"mailmind_backend/internal/handover/brief"
	"mailmind_backend/internal/handover/notifier"
	"mailmind_backend/internal/handover/repository"
	"mailmind_backend/internal/leads"
	apphttp "mailmind_backend/internal/http"
	"mailmind_backend/platform/config"
	"mailmind_backend/platform/logger"
)

// ModuleConfig combines the config interfaces the handover module needs.
type ModuleConfig interface {
	config.AIConfig
	config.HandoverConfig
}

// Module bundles the handover pipeline and its HTTP surface.
type Module struct {
	service *Service
	handler *Handler
	repo    *repository.Repository
}

// NewModule wires the handover pipeline. When AI is disabled the pipeline
// runs keyword-only with deterministic fallback briefs and no auto-replies.
func NewModule(
	pool *pgxpool.Pool,
	convRepo *conversations.Repository,
	campaignRepo *campaigns.Repository,
	leadsSvc *leads.Service,
	sender email.Sender,
	cfg ModuleConfig,
	eventBus events.Bus,
	log *logger.Logger,
) (*Module, error) {
	repo := repository.NewRepository(pool)

	var (
		recommender Recommender
		generator   BriefGenerator
		responder   Responder
	)
	if cfg.IsAIEnabled() {
		rec, err := agent.NewRecommender(cfg, log)
		if err != nil {
			return nil, err
		}
		gen, err := brief.NewGenerator(cfg, log)
		if err != nil {
			return nil, err
		}
		resp, err := agent.NewResponder(cfg, log)
		if err != nil {
			return nil, err
		}
		recommender = rec
		generator = gen
		responder = resp
	}

	svc := NewService(
		convRepo,
		campaignRepo,
		leadsSvc,
		repo,
		notifier.New(sender, cfg, log),
		recommender,
		generator,
		responder,
		sender,
		eventBus,
		log,
	)

	return &Module{
		service: svc,
		handler: NewHandler(repo, svc),
		repo:    repo,
	}, nil
}

// Name returns the module identifier for logging.
func (m *Module) Name() string {
	return "handover"
}

// Service exposes the pipeline for the inbound webhook module.
func (m *Module) Service() *Service {
	return m.service
}

// Repository exposes stored briefs for the CRM relay.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the brief read endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/handover/briefs/:briefId", m.handler.HandleGetBrief)
	ctx.Protected.GET("/conversations/:conversationId/handover-brief", m.handler.HandleGetLatestForConversation)
	ctx.Protected.GET("/campaigns/:campaignId/handover-briefs", m.handler.HandleListByCampaign)
	ctx.Protected.POST("/conversations/:conversationId/handover/evaluate", m.handler.HandleEvaluate)
}

// SetNotificationRetrier injects queued redelivery for failed notifications.
func (m *Module) SetNotificationRetrier(r NotificationRetrier) {
	m.service.SetNotificationRetrier(r)
}
