package crm

import (
	"context"

	"github.com/google/uuid"

	"mailmind_backend/internal/events"
	"mailmind_backend/platform/logger"
)

// Enqueuer queues CRM relay tasks; the scheduler client satisfies it.
type Enqueuer interface {
	PushHandover(ctx context.Context, briefID uuid.UUID) error
	SyncLead(ctx context.Context, leadID uuid.UUID) error
}

// Relay bridges domain events onto the task queue so CRM pushes retry with
// backoff in the worker instead of blocking the publishing request.
type Relay struct {
	tasks Enqueuer
	log   *logger.Logger
}

// NewRelay creates the event-to-task bridge.
func NewRelay(tasks Enqueuer, log *logger.Logger) *Relay {
	return &Relay{tasks: tasks, log: log}
}

// RegisterHandlers subscribes to the domain events the CRM consumes.
func (r *Relay) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), r)
	bus.Subscribe(events.HandoverTriggered{}.EventName(), r)

	r.log.Info("crm relay registered event handlers")
}

// Handle routes events to the appropriate task.
func (r *Relay) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return r.tasks.SyncLead(ctx, e.LeadID)
	case events.HandoverTriggered:
		return r.tasks.PushHandover(ctx, e.BriefID)
	default:
		r.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}
