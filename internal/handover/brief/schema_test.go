package brief

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"mailmind_backend/internal/handover/domain"
)

func testGenerationContext() domain.GenerationContext {
	return domain.GenerationContext{
		ConversationID: uuid.New(),
		LeadName:       "Josh Miller",
		LeadEmail:      "josh@example.com",
		LastMessage:    "What's the price on the 2019 Toyota Prius?",
		History:        []string{"Hi, I'm Josh", "What's the price on the 2019 Toyota Prius?"},
		CampaignSource: "spring-sale",
		Analysis: domain.Analysis{
			VehicleInfo:        "2019 Toyota Prius",
			PurchaseWindow:     "Immediate (within days)",
			CommunicationStyle: "Direct, efficiency-focused",
			KeyIntents:         []string{"pricing"},
			UrgencyLevel:       domain.UrgencyHigh,
			Priorities:         []string{"Price and payment terms"},
		},
		DecisionReason: `Trigger pricingQuestions matched keyword "price"`,
	}
}

func TestParseSalesBriefPlain(t *testing.T) {
	raw := `{"name":"Josh Miller","modified_name":"Josh","user_query":"price?","quick_insights":["a","b"],"actions":["call"],"rep_message":"Hi Josh","sales_readiness":"high","priority":"immediate","research_queries":[],"reply_required":true}`

	sb, err := ParseSalesBrief(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sb.Name != "Josh Miller" || sb.Priority != "immediate" || !sb.ReplyRequired {
		t.Fatalf("unexpected parse result: %+v", sb)
	}
}

func TestParseSalesBriefFenced(t *testing.T) {
	raw := "Here is the brief:\n```json\n{\"name\":\"Josh\",\"user_query\":\"q\",\"quick_insights\":[\"a\"],\"rep_message\":\"hi\",\"sales_readiness\":\"low\",\"priority\":\"standard\"}\n```\nLet me know if you need anything else."

	sb, err := ParseSalesBrief(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sb.Name != "Josh" {
		t.Fatalf("expected fenced JSON to parse, got %+v", sb)
	}
}

func TestParseSalesBriefCommaJoinedLists(t *testing.T) {
	raw := `{"name":"Josh","user_query":"q","quick_insights":"wants pricing, high urgency, has trade-in","rep_message":"hi","sales_readiness":"low","priority":"standard"}`

	sb, err := ParseSalesBrief(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sb.QuickInsights) != 3 {
		t.Fatalf("expected comma-joined string to split into 3 insights, got %v", sb.QuickInsights)
	}
	if sb.QuickInsights[1] != "high urgency" {
		t.Fatalf("expected trimmed items, got %v", sb.QuickInsights)
	}
}

func TestParseSalesBriefGarbage(t *testing.T) {
	if _, err := ParseSalesBrief("I could not generate a brief, sorry."); err == nil {
		t.Fatal("expected error for output without JSON")
	}
	if _, err := ParseSalesBrief(`{"name": broken`); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestValidateSalesBrief(t *testing.T) {
	valid := domain.SalesBrief{
		Name:           "Josh",
		UserQuery:      "q",
		QuickInsights:  []string{"a"},
		RepMessage:     "hi",
		SalesReadiness: domain.ReadinessMedium,
		Priority:       domain.PriorityStandard,
	}
	if err := ValidateSalesBrief(valid); err != nil {
		t.Fatalf("expected valid brief, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*domain.SalesBrief)
	}{
		{"missing name", func(sb *domain.SalesBrief) { sb.Name = "" }},
		{"missing user_query", func(sb *domain.SalesBrief) { sb.UserQuery = "" }},
		{"missing rep_message", func(sb *domain.SalesBrief) { sb.RepMessage = "" }},
		{"multiline rep_message", func(sb *domain.SalesBrief) { sb.RepMessage = "hi\nthere" }},
		{"empty insights", func(sb *domain.SalesBrief) { sb.QuickInsights = nil }},
		{"too many insights", func(sb *domain.SalesBrief) { sb.QuickInsights = make([]string, 7) }},
		{"too many actions", func(sb *domain.SalesBrief) { sb.Actions = make([]string, 7) }},
		{"bad readiness", func(sb *domain.SalesBrief) { sb.SalesReadiness = "urgent" }},
		{"bad priority", func(sb *domain.SalesBrief) { sb.Priority = "high" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := valid
			tt.mutate(&sb)
			if err := ValidateSalesBrief(sb); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRepairTruncatesOversizedLists(t *testing.T) {
	gctx := testGenerationContext()

	insights := make([]string, 10)
	for i := range insights {
		insights[i] = fmt.Sprintf("insight %d", i)
	}
	sb := domain.SalesBrief{
		Name:          "Josh",
		UserQuery:     "q",
		QuickInsights: insights,
		Actions:       make([]string, 9),
		RepMessage:    "hi",
	}

	RepairSalesBrief(&sb, gctx)

	if len(sb.QuickInsights) != domain.MaxQuickInsights {
		t.Fatalf("expected %d insights after repair, got %d", domain.MaxQuickInsights, len(sb.QuickInsights))
	}
	if sb.QuickInsights[0] != "insight 0" {
		t.Fatalf("expected truncation to keep leading items, got %v", sb.QuickInsights)
	}
	if len(sb.Actions) != domain.MaxActions {
		t.Fatalf("expected %d actions after repair, got %d", domain.MaxActions, len(sb.Actions))
	}
	if err := ValidateSalesBrief(sb); err != nil {
		t.Fatalf("expected repaired brief to validate, got %v", err)
	}
}

func TestRepairFillsMissingFields(t *testing.T) {
	gctx := testGenerationContext()
	sb := domain.SalesBrief{}

	RepairSalesBrief(&sb, gctx)

	if sb.Name != "Josh Miller" {
		t.Fatalf("expected name from context, got %q", sb.Name)
	}
	if sb.ModifiedName != "Josh" {
		t.Fatalf("expected first name, got %q", sb.ModifiedName)
	}
	if sb.UserQuery != gctx.LastMessage {
		t.Fatalf("expected user_query from context, got %q", sb.UserQuery)
	}
	if sb.SalesReadiness != domain.ReadinessMedium {
		t.Fatalf("expected default readiness medium, got %q", sb.SalesReadiness)
	}
	if sb.Priority != domain.PriorityImmediate {
		t.Fatalf("expected immediate priority for high urgency context, got %q", sb.Priority)
	}
	if err := ValidateSalesBrief(sb); err != nil {
		t.Fatalf("expected repaired brief to validate, got %v", err)
	}
}

func TestRepairCollapsesRepMessage(t *testing.T) {
	gctx := testGenerationContext()
	sb := domain.SalesBrief{
		Name:          "Josh",
		UserQuery:     "q",
		QuickInsights: []string{"a"},
		RepMessage:    "Hi Josh,\nthanks for reaching out.\r\nTalk soon.",
	}

	RepairSalesBrief(&sb, gctx)

	if strings.ContainsAny(sb.RepMessage, "\n\r") {
		t.Fatalf("expected single-line rep_message, got %q", sb.RepMessage)
	}
	if sb.RepMessage != "Hi Josh, thanks for reaching out. Talk soon." {
		t.Fatalf("unexpected collapsed message %q", sb.RepMessage)
	}
}

func TestFallbackSalesBriefAlwaysValid(t *testing.T) {
	gctx := testGenerationContext()

	sb := FallbackSalesBrief(gctx)
	if err := ValidateSalesBrief(sb); err != nil {
		t.Fatalf("expected fallback brief to validate, got %v", err)
	}
	if sb.SalesReadiness != domain.ReadinessHigh {
		t.Fatalf("expected readiness to track high urgency, got %q", sb.SalesReadiness)
	}
	if !sb.ReplyRequired {
		t.Fatal("expected fallback brief to require a reply")
	}

	// Even with an empty context the fallback must produce a valid brief.
	empty := FallbackSalesBrief(domain.GenerationContext{})
	if err := ValidateSalesBrief(empty); err != nil {
		t.Fatalf("expected empty-context fallback to validate, got %v", err)
	}
}
