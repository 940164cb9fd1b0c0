// Package domain holds the core handover types shared across the pipeline:
// trigger configuration, decision results, conversation analysis, and the
// two brief formats delivered to sales reps.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TriggeredBy identifies what produced a handover decision.
type TriggeredBy string

const (
	// TriggeredByKeyword means a configured keyword category or custom trigger matched.
	TriggeredByKeyword TriggeredBy = "keyword"
	// TriggeredByModel means no triggers were configured and the model decided alone.
	TriggeredByModel TriggeredBy = "model"
	// TriggeredByRuleFallback means triggers were configured, none matched, and the
	// model's recommendation was consulted as a fallback.
	TriggeredByRuleFallback TriggeredBy = "rule_fallback"

	// TriggeredByAlways and TriggeredByNever are reserved for future static
	// campaign modes. No code path produces them today.
	TriggeredByAlways TriggeredBy = "always"
	TriggeredByNever  TriggeredBy = "never"
)

// Urgency levels for conversation analysis.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Sales readiness levels for the LLM-generated brief.
const (
	ReadinessLow    = "low"
	ReadinessMedium = "medium"
	ReadinessHigh   = "high"
)

// Brief priority values.
const (
	PriorityStandard  = "standard"
	PriorityImmediate = "immediate"
)

// Triggers is the per-campaign handover configuration: one boolean flag per
// business category plus free-text custom triggers. Immutable during a single
// decision evaluation.
type Triggers struct {
	PricingQuestions    bool     `json:"pricingQuestions"`
	TestDriveDemo       bool     `json:"testDriveDemo"`
	TradeInValue        bool     `json:"tradeInValue"`
	Financing           bool     `json:"financing"`
	VehicleAvailability bool     `json:"vehicleAvailability"`
	Urgency             bool     `json:"urgency"`
	CustomTriggers      []string `json:"customTriggers"`
}

// AnyConfigured reports whether at least one trigger category or custom
// trigger is enabled.
func (t Triggers) AnyConfigured() bool {
	return t.PricingQuestions || t.TestDriveDemo || t.TradeInValue ||
		t.Financing || t.VehicleAvailability || t.Urgency ||
		len(t.CustomTriggers) > 0
}

// ModelRecommendation is the AI agent's opinion on whether to hand over,
// consulted when keyword triggers are inconclusive or absent.
type ModelRecommendation struct {
	ShouldHandover bool
	Reason         string
}

// DecisionResult is the output of one handover evaluation. Produced fresh per
// inbound message; logged but not persisted as its own entity.
type DecisionResult struct {
	ShouldHandover bool        `json:"shouldHandover"`
	Reason         string      `json:"reason"`
	TriggeredBy    TriggeredBy `json:"triggeredBy"`
}

// Analysis is the deterministic text-analysis output computed per evaluation.
type Analysis struct {
	VehicleInfo        string   `json:"vehicleInfo,omitempty"`
	PurchaseWindow     string   `json:"purchaseWindow"`
	CommunicationStyle string   `json:"communicationStyle"`
	KeyIntents         []string `json:"keyIntents"`
	UrgencyLevel       string   `json:"urgencyLevel"`
	Priorities         []string `json:"priorities"`
	CompetitiveContext string   `json:"competitiveContext,omitempty"`
	LeadName           string   `json:"leadName,omitempty"`
}

// Brief is the deterministic rep-facing handover artifact assembled from the
// analysis plus conversation metadata. Created once per triggered handover and
// never mutated afterwards.
type Brief struct {
	LeadName            string      `json:"leadName,omitempty"`
	LeadEmail           string      `json:"leadEmail"`
	VehicleInfo         string      `json:"vehicleInfo,omitempty"`
	CampaignSource      string      `json:"campaignSource"`
	PurchaseWindow      string      `json:"purchaseWindow,omitempty"`
	ConversationSummary string      `json:"conversationSummary"`
	KeyIntents          []string    `json:"keyIntents"`
	CommunicationStyle  string      `json:"communicationStyle"`
	Priorities          []string    `json:"priorities"`
	CompetitiveContext  string      `json:"competitiveContext,omitempty"`
	SalesStrategy       []string    `json:"salesStrategy"`
	ClosingStrategies   []string    `json:"closingStrategies"`
	UrgencyLevel        string      `json:"urgencyLevel"`
	HandoverReason      string      `json:"handoverReason"`
	TriggeredBy         TriggeredBy `json:"triggeredBy"`
	GeneratedAt         time.Time   `json:"generatedAt"`
}

// MaxQuickInsights bounds the scannable bullet list in a SalesBrief.
const MaxQuickInsights = 6

// MaxActions bounds the rep checklist in a SalesBrief.
const MaxActions = 6

// SalesBrief is the LLM-generated, schema-constrained brief optimized for
// five-second rep scanning. A new generation event supersedes the old; the
// value is never updated in place.
type SalesBrief struct {
	Name            string   `json:"name"`
	ModifiedName    string   `json:"modified_name"`
	UserQuery       string   `json:"user_query"`
	QuickInsights   []string `json:"quick_insights"`
	Actions         []string `json:"actions"`
	RepMessage      string   `json:"rep_message"`
	SalesReadiness  string   `json:"sales_readiness"`
	Priority        string   `json:"priority"`
	ResearchQueries []string `json:"research_queries"`
	ReplyRequired   bool     `json:"reply_required"`
}

// GenerationContext bundles everything the sales-brief generator needs. The
// analysis is computed upstream and passed through verbatim; the generator
// never re-derives it.
type GenerationContext struct {
	ConversationID uuid.UUID
	LeadName       string
	LeadEmail      string
	LastMessage    string
	History        []string
	CampaignSource string
	Analysis       Analysis
	DecisionReason string
}

// DeliveryStatus tracks the best-effort notification outcome on a stored brief.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)
