package email

import (
	"strings"
	"testing"
)

func sampleBriefData() HandoverBriefData {
	return HandoverBriefData{
		RecipientName:   "Dana",
		LeadName:        "Josh Miller",
		LeadEmail:       "josh@example.com",
		VehicleInfo:     "2019 Toyota Prius",
		UrgencyLevel:    "high",
		HandoverReason:  `Trigger pricingQuestions matched keyword "price"`,
		Summary:         "Asked specifically about pricing and costs.",
		QuickInsights:   []string{"Wants pricing", "High urgency"},
		Actions:         []string{"Call today"},
		RepMessage:      "Hi Josh, happy to walk you through Prius pricing today.",
		ResearchQueries: []string{"2019 Toyota Prius current inventory"},
	}
}

func TestRenderHandoverBriefTemplate(t *testing.T) {
	html, err := renderEmailTemplate("handover_brief.html", handoverBriefEmailData{
		baseEmailData: baseEmailData{
			Title:   "Sales handover",
			Heading: "New sales handover",
		},
		HandoverBriefData: sampleBriefData(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Josh Miller", "2019 Toyota Prius", "Wants pricing", "Call today", "current inventory"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected rendered email to contain %q", want)
		}
	}
}

func TestRenderHandoverBriefText(t *testing.T) {
	text := renderHandoverBriefText(sampleBriefData())

	for _, want := range []string{"Lead: Josh Miller <josh@example.com>", "Quick insights:", "- Wants pricing", "Suggested reply"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected text body to contain %q, got:\n%s", want, text)
		}
	}
}

func TestBriefSubjectLeadFallsBackToEmail(t *testing.T) {
	data := sampleBriefData()
	data.LeadName = ""
	if got := briefSubjectLead(data); got != "josh@example.com" {
		t.Fatalf("expected email fallback, got %q", got)
	}
}
