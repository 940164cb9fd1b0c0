// Package decision implements the handover decision evaluated once per
// inbound message: configured keyword triggers first, custom triggers next,
// then the model recommendation as fallback. Pure and side-effect free.
package decision

import (
	"fmt"
	"strings"

	"mailmind_backend/internal/handover/domain"
)

type triggerCategory struct {
	name     string
	enabled  func(domain.Triggers) bool
	keywords []string
}

// triggerCategories is evaluated in order; the first enabled category with a
// matching keyword wins, so the slice order defines business priority:
// pricing, test drive, trade-in, financing, availability, urgency.
var triggerCategories = []triggerCategory{
	{
		name:    "pricingQuestions",
		enabled: func(t domain.Triggers) bool { return t.PricingQuestions },
		keywords: []string{
			"price", "cost", "how much", "payment", "monthly", "quote",
			"discount", "msrp", "out the door",
		},
	},
	{
		name:    "testDriveDemo",
		enabled: func(t domain.Triggers) bool { return t.TestDriveDemo },
		keywords: []string{
			"test drive", "test-drive", "demo", "try it out", "drive it",
			"behind the wheel", "sit in it",
		},
	},
	{
		name:    "tradeInValue",
		enabled: func(t domain.Triggers) bool { return t.TradeInValue },
		keywords: []string{
			"trade in", "trade-in", "tradein", "trade my", "my car worth",
			"appraisal", "value of my", "kbb",
		},
	},
	{
		name:    "financing",
		enabled: func(t domain.Triggers) bool { return t.Financing },
		keywords: []string{
			"financing", "finance", "loan", "lease", "apr",
			"interest rate", "credit", "down payment", "pre-approved",
		},
	},
	{
		name:    "vehicleAvailability",
		enabled: func(t domain.Triggers) bool { return t.VehicleAvailability },
		keywords: []string{
			"in stock", "availability", "available", "on the lot",
			"inventory", "still have", "delivery date",
		},
	},
	{
		name:    "urgency",
		enabled: func(t domain.Triggers) bool { return t.Urgency },
		keywords: []string{
			"asap", "urgent", "today", "immediately", "right away",
			"this week", "emergency",
		},
	},
}

// Decide evaluates one inbound message against the campaign's trigger
// configuration. The model recommendation is consulted only when keyword
// triggers are absent or inconclusive; a nil recommendation is treated as a
// declined handover, so the engine never fails.
func Decide(triggers domain.Triggers, lastUserMessage string, model *domain.ModelRecommendation) domain.DecisionResult {
	if model == nil {
		model = &domain.ModelRecommendation{}
	}

	if !triggers.AnyConfigured() {
		return domain.DecisionResult{
			ShouldHandover: model.ShouldHandover,
			Reason:         modelReason(model),
			TriggeredBy:    domain.TriggeredByModel,
		}
	}

	lower := strings.ToLower(lastUserMessage)

	for _, cat := range triggerCategories {
		if !cat.enabled(triggers) {
			continue
		}
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return domain.DecisionResult{
					ShouldHandover: true,
					Reason:         fmt.Sprintf("Trigger %s matched keyword %q", cat.name, kw),
					TriggeredBy:    domain.TriggeredByKeyword,
				}
			}
		}
	}

	for _, custom := range triggers.CustomTriggers {
		trimmed := strings.ToLower(strings.TrimSpace(custom))
		if trimmed == "" {
			continue
		}
		if strings.Contains(lower, trimmed) {
			return domain.DecisionResult{
				ShouldHandover: true,
				Reason:         fmt.Sprintf("Custom trigger %q matched", custom),
				TriggeredBy:    domain.TriggeredByKeyword,
			}
		}
	}

	return domain.DecisionResult{
		ShouldHandover: model.ShouldHandover,
		Reason:         modelReason(model),
		TriggeredBy:    domain.TriggeredByRuleFallback,
	}
}

func modelReason(model *domain.ModelRecommendation) string {
	if model.Reason != "" {
		return model.Reason
	}
	if model.ShouldHandover {
		return "Model recommended handover"
	}
	return "No handover signals detected"
}
