package leads

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"mailmind_backend/internal/events"
	"mailmind_backend/platform/logger"
	"mailmind_backend/platform/phone"
)

// Service owns lead intake: phone normalization, dedupe by email within a
// campaign, and the LeadCreated event.
type Service struct {
	repo     *Repository
	eventBus events.Bus
	log      *logger.Logger
}

// NewService creates a new leads service.
func NewService(repo *Repository, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log}
}

// CreateLead registers a new lead. The phone number is normalized to E.164
// when possible; an unparseable number is stored as given.
func (s *Service) CreateLead(ctx context.Context, l Lead) (Lead, error) {
	l.Phone = phone.NormalizeE164(l.Phone)

	created, err := s.repo.Create(ctx, l)
	if err != nil {
		return Lead{}, err
	}

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     created.ID,
		CampaignID: created.CampaignID,
		Email:      created.Email,
		Source:     created.Source,
	})

	return created, nil
}

// GetOrCreateByEmail finds the campaign's lead for an email address, creating
// one when the sender is new. Inbound email intake goes through here.
func (s *Service) GetOrCreateByEmail(ctx context.Context, campaignID uuid.UUID, email, name string) (Lead, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.repo.GetByEmail(ctx, campaignID, email)
	if err == nil {
		return existing, nil
	}
	if err != ErrLeadNotFound {
		return Lead{}, err
	}

	return s.CreateLead(ctx, Lead{
		CampaignID: campaignID,
		Name:       name,
		Email:      email,
		Source:     "inbound_email",
	})
}

// RememberName records a name learned from conversation analysis.
func (s *Service) RememberName(ctx context.Context, leadID uuid.UUID, name string) {
	if err := s.repo.UpdateName(ctx, leadID, name); err != nil {
		s.log.DatabaseError("update lead name", err)
	}
}
