package crm

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"mailmind_backend/internal/events"
	"mailmind_backend/platform/logger"
)

type stubEnqueuer struct {
	handoverBriefs []uuid.UUID
	syncedLeads    []uuid.UUID
}

func (s *stubEnqueuer) PushHandover(ctx context.Context, briefID uuid.UUID) error {
	s.handoverBriefs = append(s.handoverBriefs, briefID)
	return nil
}

func (s *stubEnqueuer) SyncLead(ctx context.Context, leadID uuid.UUID) error {
	s.syncedLeads = append(s.syncedLeads, leadID)
	return nil
}

func TestRelayQueuesHandoverPush(t *testing.T) {
	tasks := &stubEnqueuer{}
	bus := events.NewInMemoryBus(logger.New("test"))
	NewRelay(tasks, logger.New("test")).RegisterHandlers(bus)

	briefID := uuid.New()
	err := bus.PublishSync(context.Background(), events.HandoverTriggered{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: uuid.New(),
		LeadID:         uuid.New(),
		BriefID:        briefID,
		TriggeredBy:    "keyword",
		Reason:         `Trigger pricingQuestions matched keyword "price"`,
	})
	if err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(tasks.handoverBriefs) != 1 || tasks.handoverBriefs[0] != briefID {
		t.Fatalf("handover pushes = %v, want [%s]", tasks.handoverBriefs, briefID)
	}
	if len(tasks.syncedLeads) != 0 {
		t.Fatalf("unexpected lead syncs: %v", tasks.syncedLeads)
	}
}

func TestRelayQueuesLeadSync(t *testing.T) {
	tasks := &stubEnqueuer{}
	bus := events.NewInMemoryBus(logger.New("test"))
	NewRelay(tasks, logger.New("test")).RegisterHandlers(bus)

	leadID := uuid.New()
	err := bus.PublishSync(context.Background(), events.LeadCreated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     leadID,
		CampaignID: uuid.New(),
		Email:      "josh@example.com",
		Source:     "inbound_email",
	})
	if err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(tasks.syncedLeads) != 1 || tasks.syncedLeads[0] != leadID {
		t.Fatalf("lead syncs = %v, want [%s]", tasks.syncedLeads, leadID)
	}
	if len(tasks.handoverBriefs) != 0 {
		t.Fatalf("unexpected handover pushes: %v", tasks.handoverBriefs)
	}
}

func TestRelayIgnoresUnrelatedEvents(t *testing.T) {
	tasks := &stubEnqueuer{}
	relay := NewRelay(tasks, logger.New("test"))

	err := relay.Handle(context.Background(), events.AutoReplySent{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: uuid.New(),
		LeadID:         uuid.New(),
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(tasks.handoverBriefs) != 0 || len(tasks.syncedLeads) != 0 {
		t.Fatalf("unrelated event enqueued tasks: %+v", tasks)
	}
}
