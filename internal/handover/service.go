// Package handover orchestrates the pipeline run once per inbound message:
// analyze, decide, compose and generate the brief, persist, notify, relay.
package handover

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mailmind_backend/internal/campaigns"
	"mailmind_backend/internal/conversations"
	"mailmind_backend/internal/events"
	"mailmind_backend/internal/handover/analyzer"
	"mailmind_backend/internal/handover/brief"
	"mailmind_backend/internal/handover/decision"
	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/internal/handover/notifier"
	"mailmind_backend/internal/handover/repository"
	"mailmind_backend/internal/leads"
	"mailmind_backend/platform/apperr"
	"mailmind_backend/platform/logger"
	"mailmind_backend/platform/sanitize"
)

// Recommender is the model's handover opinion, nil-able when AI is disabled.
type Recommender interface {
	Recommend(ctx context.Context, conversationID uuid.UUID, history []string, lastMessage string) *domain.ModelRecommendation
}

// BriefGenerator produces the schema-valid sales brief.
type BriefGenerator interface {
	Generate(ctx context.Context, gctx domain.GenerationContext) (domain.SalesBrief, bool)
}

// Responder drafts the auto-reply when the conversation stays with the AI.
type Responder interface {
	Reply(ctx context.Context, conversationID uuid.UUID, leadName string, history []string, lastMessage string) (string, error)
}

// AutoReplySender delivers auto-replies to leads.
type AutoReplySender interface {
	SendAutoReply(ctx context.Context, toEmail, subject, textBody string, headers map[string]string) error
}

// NotificationRetrier queues a redelivery for a brief whose notification
// failed. Satisfied by the scheduler client.
type NotificationRetrier interface {
	RetryNotification(ctx context.Context, briefID uuid.UUID) error
}

// Outcome reports what one pipeline run did.
type Outcome struct {
	Decision  domain.DecisionResult
	BriefID   uuid.UUID
	AutoReply bool
	Delivery  domain.DeliveryStatus
	Degraded  bool
}

// Service runs the handover pipeline.
type Service struct {
	convRepo    *conversations.Repository
	campaigns   *campaigns.Repository
	leadsSvc    *leads.Service
	briefRepo   *repository.Repository
	notifier    *notifier.Notifier
	recommender Recommender
	generator   BriefGenerator
	responder   Responder
	replySender AutoReplySender
	retrier     NotificationRetrier
	eventBus    events.Bus
	log         *logger.Logger
}

// NewService wires the handover pipeline. recommender, generator and responder
// may be nil; the pipeline degrades instead of failing.
func NewService(
	convRepo *conversations.Repository,
	campaignRepo *campaigns.Repository,
	leadsSvc *leads.Service,
	briefRepo *repository.Repository,
	n *notifier.Notifier,
	recommender Recommender,
	generator BriefGenerator,
	responder Responder,
	replySender AutoReplySender,
	eventBus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		convRepo:    convRepo,
		campaigns:   campaignRepo,
		leadsSvc:    leadsSvc,
		briefRepo:   briefRepo,
		notifier:    n,
		recommender: recommender,
		generator:   generator,
		responder:   responder,
		replySender: replySender,
		eventBus:    eventBus,
		log:         log,
	}
}

// SetNotificationRetrier injects queued redelivery for failed notifications.
func (s *Service) SetNotificationRetrier(r NotificationRetrier) {
	s.retrier = r
}

// ProcessInboundMessage evaluates one verified inbound message. The decision
// and brief survive any downstream delivery failure; only storage errors
// propagate.
func (s *Service) ProcessInboundMessage(
	ctx context.Context,
	campaign campaigns.Campaign,
	lead leads.Lead,
	conv conversations.Conversation,
	msg conversations.Message,
) (Outcome, error) {
	body := sanitize.Text(msg.Body)

	history, err := s.convRepo.InboundBodies(ctx, conv.ID)
	if err != nil {
		return Outcome{}, err
	}
	// The new message is already stored; analysis wants it separated out.
	if n := len(history); n > 0 && history[n-1] == msg.Body {
		history = history[:n-1]
	}

	analysis := analyzer.Analyze(historySanitized(history), body)
	s.leadsSvc.RememberName(ctx, lead.ID, analysis.LeadName)

	result := s.decide(ctx, campaign.Triggers, conv.ID, historySanitized(history), body)
	s.log.HandoverDecision(conv.ID.String(), result.ShouldHandover, string(result.TriggeredBy), result.Reason)

	gctx := domain.GenerationContext{
		ConversationID: conv.ID,
		LeadName:       leadDisplayName(lead, analysis),
		LeadEmail:      lead.Email,
		LastMessage:    body,
		History:        historySanitized(history),
		CampaignSource: campaign.Source,
		Analysis:       analysis,
		DecisionReason: result.Reason,
	}

	if !result.ShouldHandover {
		replied := s.autoReply(ctx, campaign, lead, conv, gctx)
		return Outcome{Decision: result, AutoReply: replied}, nil
	}

	return s.handOver(ctx, campaign, lead, conv, gctx, result)
}

// Evaluation is a dry-run decision over a stored conversation.
type Evaluation struct {
	Decision domain.DecisionResult
	Analysis domain.Analysis
}

// EvaluateConversation re-runs the keyword decision and analysis over a
// conversation's inbound history without persisting anything or contacting
// the model. Dashboard tooling uses this to preview trigger configuration.
func (s *Service) EvaluateConversation(ctx context.Context, conversationID uuid.UUID) (Evaluation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return Evaluation{}, err
	}
	campaign, err := s.campaigns.GetByID(ctx, conv.CampaignID)
	if err != nil {
		return Evaluation{}, err
	}

	history, err := s.convRepo.InboundBodies(ctx, conv.ID)
	if err != nil {
		return Evaluation{}, err
	}
	if len(history) == 0 {
		return Evaluation{}, apperr.Validation("conversation has no inbound messages")
	}

	last := sanitize.Text(history[len(history)-1])
	prior := historySanitized(history[:len(history)-1])

	return Evaluation{
		Decision: decision.Decide(campaign.Triggers, last, nil),
		Analysis: analyzer.Analyze(prior, last),
	}, nil
}

// decide evaluates triggers first and consults the model only when the
// keyword pass is inconclusive.
func (s *Service) decide(ctx context.Context, triggers domain.Triggers, conversationID uuid.UUID, history []string, body string) domain.DecisionResult {
	result := decision.Decide(triggers, body, nil)
	if result.TriggeredBy == domain.TriggeredByKeyword || s.recommender == nil {
		return result
	}

	rec := s.recommender.Recommend(ctx, conversationID, history, body)
	if rec == nil {
		return result
	}
	return decision.Decide(triggers, body, rec)
}

func (s *Service) handOver(
	ctx context.Context,
	campaign campaigns.Campaign,
	lead leads.Lead,
	conv conversations.Conversation,
	gctx domain.GenerationContext,
	result domain.DecisionResult,
) (Outcome, error) {
	b := brief.Compose(gctx, result, time.Now())

	var salesBrief domain.SalesBrief
	degraded := true
	if s.generator != nil {
		salesBrief, degraded = s.generator.Generate(ctx, gctx)
	} else {
		salesBrief = brief.FallbackSalesBrief(gctx)
	}

	stored, err := s.briefRepo.Create(ctx, repository.StoredBrief{
		ConversationID: conv.ID,
		LeadID:         lead.ID,
		CampaignID:     campaign.ID,
		Brief:          b,
		SalesBrief:     salesBrief,
		TriggeredBy:    result.TriggeredBy,
		Reason:         result.Reason,
		Degraded:       degraded,
	})
	if err != nil {
		return Outcome{}, err
	}

	if err := s.convRepo.MarkHandedOver(ctx, conv.ID, time.Now()); err != nil {
		s.log.DatabaseError("mark conversation handed over", err)
	}

	s.eventBus.Publish(ctx, events.HandoverTriggered{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conv.ID,
		LeadID:         lead.ID,
		BriefID:        stored.ID,
		TriggeredBy:    string(result.TriggeredBy),
		Reason:         result.Reason,
	})

	routing := notifier.CampaignRouting{
		Recipient:     campaign.Recipient,
		RecipientName: campaign.RecipientName,
	}
	status := s.notifier.Deliver(ctx, routing, b, salesBrief)
	recipient, _ := s.notifier.SelectRecipient(routing, b.KeyIntents)
	if err := s.briefRepo.SetDeliveryOutcome(ctx, stored.ID, status, recipient); err != nil {
		s.log.DatabaseError("record delivery outcome", err)
	}
	if status == domain.DeliveryFailed && s.retrier != nil {
		if err := s.retrier.RetryNotification(ctx, stored.ID); err != nil {
			s.log.DeliveryError("notification retry queue", recipient, err)
		}
	}

	s.eventBus.Publish(ctx, events.HandoverNotified{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conv.ID,
		BriefID:        stored.ID,
		Recipient:      recipient,
		Status:         string(status),
	})

	return Outcome{
		Decision: result,
		BriefID:  stored.ID,
		Delivery: status,
		Degraded: degraded,
	}, nil
}

// autoReply answers the lead when the conversation stays automated. Failures
// are logged and swallowed; a missed auto-reply must not fail the webhook.
func (s *Service) autoReply(
	ctx context.Context,
	campaign campaigns.Campaign,
	lead leads.Lead,
	conv conversations.Conversation,
	gctx domain.GenerationContext,
) bool {
	if !campaign.AutoReplyEnabled || s.responder == nil || s.replySender == nil {
		return false
	}

	reply, err := s.responder.Reply(ctx, conv.ID, gctx.LeadName, gctx.History, gctx.LastMessage)
	if err != nil {
		s.log.Warn("auto-reply generation failed",
			"conversation_id", conv.ID.String(),
			"error", err.Error())
		return false
	}

	subject := "Re: your inquiry"
	if err := s.replySender.SendAutoReply(ctx, lead.Email, subject, reply, nil); err != nil {
		s.log.DeliveryError("email", lead.Email, err)
		return false
	}

	if _, err := s.convRepo.AppendMessage(ctx, conversations.Message{
		ConversationID: conv.ID,
		Direction:      conversations.DirectionOutbound,
		Sender:         "assistant",
		Body:           reply,
	}); err != nil {
		s.log.DatabaseError("record auto-reply", err)
	}

	s.eventBus.Publish(ctx, events.AutoReplySent{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conv.ID,
		LeadID:         lead.ID,
	})
	return true
}

func historySanitized(history []string) []string {
	out := make([]string, 0, len(history))
	for _, msg := range history {
		out = append(out, sanitize.Text(msg))
	}
	return out
}

func leadDisplayName(lead leads.Lead, analysis domain.Analysis) string {
	if lead.Name != "" {
		return lead.Name
	}
	return analysis.LeadName
}
