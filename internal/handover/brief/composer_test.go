package brief

import (
	"strings"
	"testing"
	"time"

	"mailmind_backend/internal/handover/domain"
)

func TestCompose(t *testing.T) {
	gctx := testGenerationContext()
	decision := domain.DecisionResult{
		ShouldHandover: true,
		Reason:         `Trigger pricingQuestions matched keyword "price"`,
		TriggeredBy:    domain.TriggeredByKeyword,
	}
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("CET", 3600))

	b := Compose(gctx, decision, now)

	if b.LeadName != "Josh Miller" {
		t.Fatalf("expected lead name from context, got %q", b.LeadName)
	}
	if b.VehicleInfo != "2019 Toyota Prius" {
		t.Fatalf("unexpected vehicle info %q", b.VehicleInfo)
	}
	if b.HandoverReason != decision.Reason || b.TriggeredBy != domain.TriggeredByKeyword {
		t.Fatalf("expected decision meta carried over, got %+v", b)
	}
	if b.ConversationSummary == "" {
		t.Fatal("expected a conversation summary")
	}
	if len(b.SalesStrategy) == 0 || len(b.ClosingStrategies) == 0 {
		t.Fatal("expected non-empty strategy lists")
	}
	if b.GeneratedAt.Location() != time.UTC {
		t.Fatal("expected GeneratedAt normalized to UTC")
	}
}

func TestComposeSummaryCountsLatestMessage(t *testing.T) {
	gctx := testGenerationContext()
	gctx.History = []string{"Hi, I'm Josh", "Is it still available?", "Any other colors?"}
	gctx.LastMessage = "And what about the interior?"
	gctx.Analysis.KeyIntents = []string{"general_inquiry"}

	b := Compose(gctx, domain.DecisionResult{}, time.Now())

	// Three prior messages plus the one that triggered the run crosses the
	// engagement threshold.
	if !strings.Contains(b.ConversationSummary, "Highly engaged") {
		t.Fatalf("expected engagement note in summary, got %q", b.ConversationSummary)
	}
}

func TestComposeFallsBackToAnalyzedName(t *testing.T) {
	gctx := testGenerationContext()
	gctx.LeadName = ""
	gctx.Analysis.LeadName = "Josh"

	b := Compose(gctx, domain.DecisionResult{}, time.Now())

	if b.LeadName != "Josh" {
		t.Fatalf("expected analyzed name fallback, got %q", b.LeadName)
	}
}
