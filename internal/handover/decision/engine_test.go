package decision

import (
	"strings"
	"testing"

	"mailmind_backend/internal/handover/domain"
)

func TestDecideKeywordTrigger(t *testing.T) {
	triggers := domain.Triggers{PricingQuestions: true}

	got := Decide(triggers, "What is the price of this car?", nil)

	if !got.ShouldHandover {
		t.Fatal("expected handover for pricing keyword")
	}
	if got.TriggeredBy != domain.TriggeredByKeyword {
		t.Fatalf("expected triggeredBy keyword, got %q", got.TriggeredBy)
	}
	if !strings.Contains(got.Reason, "pricingQuestions") || !strings.Contains(got.Reason, "price") {
		t.Fatalf("expected reason to name category and keyword, got %q", got.Reason)
	}
}

func TestDecideCategoryPriority(t *testing.T) {
	// Message matches both financing and urgency; pricing order places
	// financing earlier, so it must win.
	triggers := domain.Triggers{Financing: true, Urgency: true}

	got := Decide(triggers, "I need financing sorted out today", nil)

	if !got.ShouldHandover {
		t.Fatal("expected handover")
	}
	if !strings.Contains(got.Reason, "financing") {
		t.Fatalf("expected earlier category financing to win, got reason %q", got.Reason)
	}
}

func TestDecidePricingBeatsTestDrive(t *testing.T) {
	triggers := domain.Triggers{PricingQuestions: true, TestDriveDemo: true}

	got := Decide(triggers, "can I test drive it and what's the cost?", nil)

	if !strings.Contains(got.Reason, "pricingQuestions") {
		t.Fatalf("expected pricing to win over test drive, got reason %q", got.Reason)
	}
}

func TestDecideModelOnlyMode(t *testing.T) {
	triggers := domain.Triggers{}

	got := Decide(triggers, "What colors are available?", &domain.ModelRecommendation{ShouldHandover: false})

	if got.ShouldHandover {
		t.Fatal("expected no handover when model declines")
	}
	if got.TriggeredBy != domain.TriggeredByModel {
		t.Fatalf("expected triggeredBy model, got %q", got.TriggeredBy)
	}
}

func TestDecideRuleFallback(t *testing.T) {
	triggers := domain.Triggers{TestDriveDemo: true}
	model := &domain.ModelRecommendation{ShouldHandover: true, Reason: "Complex request detected"}

	got := Decide(triggers, "I need help with something complex", model)

	if !got.ShouldHandover {
		t.Fatal("expected handover via model fallback")
	}
	if got.TriggeredBy != domain.TriggeredByRuleFallback {
		t.Fatalf("expected triggeredBy rule_fallback, got %q", got.TriggeredBy)
	}
	if got.Reason != "Complex request detected" {
		t.Fatalf("expected model reason verbatim, got %q", got.Reason)
	}
}

func TestDecideRuleFallbackDeclined(t *testing.T) {
	triggers := domain.Triggers{Urgency: true}

	got := Decide(triggers, "just browsing your site", &domain.ModelRecommendation{ShouldHandover: false})

	if got.ShouldHandover {
		t.Fatal("expected no handover when fallback model declines")
	}
	if got.TriggeredBy != domain.TriggeredByRuleFallback {
		t.Fatalf("expected triggeredBy rule_fallback, got %q", got.TriggeredBy)
	}
}

func TestDecideCustomTrigger(t *testing.T) {
	triggers := domain.Triggers{CustomTriggers: []string{"Fleet Order", "manager"}}

	got := Decide(triggers, "I'd like to talk to a manager please", nil)

	if !got.ShouldHandover {
		t.Fatal("expected handover for custom trigger")
	}
	if got.TriggeredBy != domain.TriggeredByKeyword {
		t.Fatalf("expected triggeredBy keyword, got %q", got.TriggeredBy)
	}
	if !strings.Contains(got.Reason, "manager") {
		t.Fatalf("expected reason to name matched trigger, got %q", got.Reason)
	}
}

func TestDecideNilModel(t *testing.T) {
	got := Decide(domain.Triggers{}, "hello", nil)

	if got.ShouldHandover {
		t.Fatal("expected no handover with nil model recommendation")
	}
	if got.TriggeredBy != domain.TriggeredByModel {
		t.Fatalf("expected triggeredBy model, got %q", got.TriggeredBy)
	}
}

func TestDecideDisabledCategoryIgnored(t *testing.T) {
	// Pricing keyword present but only urgency is enabled; urgency keyword
	// absent, so fallback applies.
	triggers := domain.Triggers{Urgency: true}

	got := Decide(triggers, "what's the price?", &domain.ModelRecommendation{ShouldHandover: false})

	if got.ShouldHandover {
		t.Fatal("expected disabled pricing category to be ignored")
	}
	if got.TriggeredBy != domain.TriggeredByRuleFallback {
		t.Fatalf("expected triggeredBy rule_fallback, got %q", got.TriggeredBy)
	}
}
