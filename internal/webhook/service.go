package webhook

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"mailmind_backend/internal/campaigns"
	"mailmind_backend/internal/conversations"
	"mailmind_backend/internal/events"
	"mailmind_backend/internal/handover"
	"mailmind_backend/internal/leads"
	"mailmind_backend/platform/logger"
)

// ErrUnknownCampaign means the recipient mailbox maps to no active campaign.
var ErrUnknownCampaign = errors.New("no campaign for recipient")

// pipelineTimeout bounds one background pipeline run, including model calls.
const pipelineTimeout = 2 * time.Minute

// InboundEmail is one parsed Mailgun inbound message.
type InboundEmail struct {
	Sender            string // bare sender address
	From              string // full From header, may carry a display name
	Recipient         string // campaign mailbox the mail was sent to
	Subject           string
	BodyPlain         string
	BodyStripped      string // quoted history removed by the provider
	ProviderMessageID string
}

// InboundResult reports what happened to one inbound email.
type InboundResult struct {
	ConversationID uuid.UUID
	MessageID      uuid.UUID
	LeadID         uuid.UUID
	Duplicate      bool
}

// HandoverPipeline runs the decision pipeline for one stored message.
// Satisfied by handover.Service.
type HandoverPipeline interface {
	ProcessInboundMessage(ctx context.Context, campaign campaigns.Campaign, lead leads.Lead, conv conversations.Conversation, msg conversations.Message) (handover.Outcome, error)
}

// Service turns verified inbound emails into stored conversation messages and
// kicks off the handover pipeline.
type Service struct {
	campaigns *campaigns.Repository
	leads     *leads.Service
	conv      *conversations.Repository
	pipeline  HandoverPipeline
	eventBus  events.Bus
	log       *logger.Logger
}

// NewService creates a new inbound email service.
func NewService(
	campaignRepo *campaigns.Repository,
	leadsSvc *leads.Service,
	convRepo *conversations.Repository,
	pipeline HandoverPipeline,
	eventBus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		campaigns: campaignRepo,
		leads:     leadsSvc,
		conv:      convRepo,
		pipeline:  pipeline,
		eventBus:  eventBus,
		log:       log,
	}
}

// ProcessInbound stores the email and schedules the pipeline run. The webhook
// response only depends on storage: provider redeliveries of an already-seen
// message return Duplicate without re-running the pipeline.
func (s *Service) ProcessInbound(ctx context.Context, in InboundEmail) (InboundResult, error) {
	source := campaignSource(in.Recipient)
	campaign, err := s.campaigns.GetBySource(ctx, source)
	if err != nil {
		if errors.Is(err, campaigns.ErrCampaignNotFound) {
			return InboundResult{}, ErrUnknownCampaign
		}
		return InboundResult{}, err
	}

	lead, err := s.leads.GetOrCreateByEmail(ctx, campaign.ID, in.Sender, displayName(in.From))
	if err != nil {
		return InboundResult{}, err
	}

	conv, err := s.conv.GetOrCreateActive(ctx, lead.ID, campaign.ID)
	if err != nil {
		return InboundResult{}, err
	}

	msg, err := s.conv.AppendMessage(ctx, conversations.Message{
		ConversationID:    conv.ID,
		Direction:         conversations.DirectionInbound,
		Sender:            lead.Email,
		Body:              messageBody(in),
		ProviderMessageID: strings.Trim(in.ProviderMessageID, "<>"),
	})
	if err != nil {
		if errors.Is(err, conversations.ErrDuplicateMessage) {
			s.log.Info("duplicate inbound message skipped",
				"conversationId", conv.ID,
				"providerMessageId", in.ProviderMessageID,
			)
			return InboundResult{ConversationID: conv.ID, LeadID: lead.ID, Duplicate: true}, nil
		}
		return InboundResult{}, err
	}

	s.eventBus.Publish(ctx, events.InboundMessageReceived{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conv.ID,
		LeadID:         lead.ID,
		CampaignID:     campaign.ID,
		MessageID:      msg.ID,
		Body:           msg.Body,
	})

	// The provider expects a fast 200; the pipeline (which may call the
	// model twice) runs detached from the request.
	go s.runPipeline(context.WithoutCancel(ctx), campaign, lead, conv, msg)

	return InboundResult{ConversationID: conv.ID, MessageID: msg.ID, LeadID: lead.ID}, nil
}

func (s *Service) runPipeline(ctx context.Context, campaign campaigns.Campaign, lead leads.Lead, conv conversations.Conversation, msg conversations.Message) {
	ctx, cancel := context.WithTimeout(ctx, pipelineTimeout)
	defer cancel()

	outcome, err := s.pipeline.ProcessInboundMessage(ctx, campaign, lead, conv, msg)
	if err != nil {
		s.log.Error("handover pipeline failed",
			"conversationId", conv.ID,
			"messageId", msg.ID,
			"error", err,
		)
		return
	}

	s.log.Info("handover pipeline finished",
		"conversationId", conv.ID,
		"shouldHandover", outcome.Decision.ShouldHandover,
		"autoReply", outcome.AutoReply,
		"degraded", outcome.Degraded,
	)
}

// campaignSource maps a recipient mailbox to a campaign source key: the
// lowercased local part, with any +tag suffix removed.
func campaignSource(recipient string) string {
	addr := strings.ToLower(strings.TrimSpace(recipient))
	if at := strings.IndexByte(addr, '@'); at >= 0 {
		addr = addr[:at]
	}
	if plus := strings.IndexByte(addr, '+'); plus >= 0 {
		addr = addr[:plus]
	}
	return addr
}

// displayName extracts the human name from a From header, if present.
func displayName(from string) string {
	if from == "" {
		return ""
	}
	parsed, err := mail.ParseAddress(from)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(parsed.Name)
}

// messageBody prefers the provider's quote-stripped text, which keeps earlier
// turns of the thread from being re-analyzed as part of the new message.
func messageBody(in InboundEmail) string {
	if strings.TrimSpace(in.BodyStripped) != "" {
		return in.BodyStripped
	}
	return in.BodyPlain
}
