// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/google/uuid"

	"mailmind_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters the system, whether via the
// API or an inbound email from an unknown sender.
type LeadCreated struct {
	BaseEvent
	LeadID     uuid.UUID
	CampaignID uuid.UUID
	Email      string
	Source     string
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// =============================================================================
// Conversation Domain Events
// =============================================================================

// InboundMessageReceived is published after an inbound email has been verified
// and stored. The handover pipeline subscribes to this.
type InboundMessageReceived struct {
	BaseEvent
	ConversationID uuid.UUID
	LeadID         uuid.UUID
	CampaignID     uuid.UUID
	MessageID      uuid.UUID
	Body           string
}

func (e InboundMessageReceived) EventName() string { return "conversations.message.received" }

// AutoReplySent is published after the AI agent answers a lead directly.
type AutoReplySent struct {
	BaseEvent
	ConversationID uuid.UUID
	LeadID         uuid.UUID
}

func (e AutoReplySent) EventName() string { return "conversations.reply.sent" }

// =============================================================================
// Handover Domain Events
// =============================================================================

// HandoverTriggered is published when a decision evaluation says a human
// should take over. CRM relay and audit subscribers consume this.
type HandoverTriggered struct {
	BaseEvent
	ConversationID uuid.UUID
	LeadID         uuid.UUID
	BriefID        uuid.UUID
	TriggeredBy    string
	Reason         string
}

func (e HandoverTriggered) EventName() string { return "handover.triggered" }

// HandoverNotified is published after the notification attempt, whatever its
// outcome; Status carries sent or failed.
type HandoverNotified struct {
	BaseEvent
	ConversationID uuid.UUID
	BriefID        uuid.UUID
	Recipient      string
	Status         string
}

func (e HandoverNotified) EventName() string { return "handover.notified" }
