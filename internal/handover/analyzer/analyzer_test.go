package analyzer

import (
	"strings"
	"testing"

	"mailmind_backend/internal/handover/domain"
)

func TestExtractVehicleInfo(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"year make model", "I'm looking at a 2019 toyota prius hybrid", "2019 Toyota Prius"},
		{"make model with trailing year", "do you have the honda civic 2022 in stock", "Honda Civic 2022"},
		{"make model no year", "interested in a ford f-150", "Ford F-150"},
		{"bare model", "is the camry available this week", "Camry"},
		{"no vehicle", "I need help with something", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVehicleInfo(tt.text)
			if got != tt.want {
				t.Fatalf("ExtractVehicleInfo(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractVehicleInfoOrdering(t *testing.T) {
	got := ExtractVehicleInfo("thinking about a 2019 toyota prius for my commute")
	for _, part := range []string{"2019", "Toyota", "Prius"} {
		if !strings.Contains(got, part) {
			t.Fatalf("expected %q to contain %q", got, part)
		}
	}
	if strings.Index(got, "2019") > strings.Index(got, "Toyota") ||
		strings.Index(got, "Toyota") > strings.Index(got, "Prius") {
		t.Fatalf("expected year, make, model order in %q", got)
	}
}

func TestDeterminePurchaseWindow(t *testing.T) {
	tests := []struct {
		name string
		all  string
		last string
		want string
	}{
		{"urgent beats near-term", "I was thinking next month but now I need it today", "", WindowImmediate},
		{"near-term", "probably buying next week", "", WindowNearTerm},
		{"specific timeframe", "we plan to decide in 3 months", "", WindowSpecific},
		{"unclear", "just browsing options", "", WindowUnclear},
		{"last message counts", "just browsing", "actually I need one asap", WindowImmediate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeterminePurchaseWindow(tt.all, tt.last)
			if got != tt.want {
				t.Fatalf("DeterminePurchaseWindow(%q, %q) = %q, want %q", tt.all, tt.last, got, tt.want)
			}
		})
	}
}

func TestAnalyzeCommunicationStyle(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		want     string
	}{
		{"short with questions", []string{"price?", "when can I come?"}, "Direct, efficiency-focused"},
		{"long messages", []string{strings.Repeat("I have been researching midsize sedans for a while now. ", 4)}, "Detailed communicator"},
		{"enthusiastic", []string{"this car looks amazing! I love the color options here"}, "Enthusiastic"},
		{"balanced", []string{"I am interested in learning more about your inventory"}, "Balanced communicator"},
		{"empty", nil, "Balanced communicator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeCommunicationStyle(tt.messages)
			if got != tt.want {
				t.Fatalf("AnalyzeCommunicationStyle(%v) = %q, want %q", tt.messages, got, tt.want)
			}
		})
	}
}

func TestExtractIntentsNeverEmpty(t *testing.T) {
	got := ExtractIntents("hello there")
	if len(got) != 1 || got[0] != IntentGeneral {
		t.Fatalf("expected [%s] for unmatched text, got %v", IntentGeneral, got)
	}
}

func TestExtractIntentsMultiple(t *testing.T) {
	got := ExtractIntents("what's the price and can I schedule a test drive?")
	if !hasIntent(got, IntentPricing) {
		t.Fatalf("expected pricing intent in %v", got)
	}
	if !hasIntent(got, IntentScheduling) {
		t.Fatalf("expected scheduling intent in %v", got)
	}
}

func TestDetermineUrgencyLevel(t *testing.T) {
	tests := []struct {
		name string
		text string
		last string
		want string
	}{
		{"high", "my lease ends and I need a car asap", "", domain.UrgencyHigh},
		{"high beats medium", "I'm shopping around soon but honestly need it today", "", domain.UrgencyHigh},
		{"medium", "planning to buy soon", "", domain.UrgencyMedium},
		{"low", "just gathering information", "", domain.UrgencyLow},
		{"last message raises urgency", "just looking", "need it today", domain.UrgencyHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineUrgencyLevel(tt.text, tt.last)
			if got != tt.want {
				t.Fatalf("DetermineUrgencyLevel(%q, %q) = %q, want %q", tt.text, tt.last, got, tt.want)
			}
		})
	}
}

func TestGenerateConversationSummary(t *testing.T) {
	got := GenerateConversationSummary([]string{"a", "b", "c", "d"}, []string{IntentPricing, IntentScheduling})
	for _, want := range []string{"pricing and costs", "scheduling a visit", "Highly engaged"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected summary %q to contain %q", got, want)
		}
	}

	fallback := GenerateConversationSummary([]string{"hi"}, []string{IntentGeneral})
	if fallback != "General inquiry about products/services." {
		t.Fatalf("unexpected fallback summary %q", fallback)
	}
}

func TestExtractPrioritiesNeverEmpty(t *testing.T) {
	got := ExtractPriorities("hello", []string{IntentGeneral})
	if len(got) == 0 {
		t.Fatal("expected at least one priority")
	}
	if got[0] != "Overall value" {
		t.Fatalf("expected fallback priority, got %v", got)
	}

	got = ExtractPriorities("need something safe for the family, good on gas, and within budget", []string{IntentPricing})
	if len(got) < 3 {
		t.Fatalf("expected multiple priorities, got %v", got)
	}
}

func TestExtractCompetitiveContext(t *testing.T) {
	if got := ExtractCompetitiveContext("carmax quoted me less"); got == "" {
		t.Fatal("expected competitive context for competitor mention")
	}
	if got := ExtractCompetitiveContext("no comparisons here"); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
}

func TestExtractLeadName(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		want     string
	}{
		{"introduction", []string{"Hi, I'm Josh and I need help with my car"}, "Josh"},
		{"my name is", []string{"hello", "my name is sarah"}, "Sarah"},
		{"stopword filtered", []string{"I'm interested in the camry"}, ""},
		{"no introduction", []string{"what's the price?"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLeadName(tt.messages)
			if got != tt.want {
				t.Fatalf("ExtractLeadName(%v) = %q, want %q", tt.messages, got, tt.want)
			}
		})
	}
}

func TestGenerateSalesStrategyNeverEmpty(t *testing.T) {
	got := GenerateSalesStrategy([]string{IntentGeneral}, domain.UrgencyLow, "")
	if len(got) != 1 {
		t.Fatalf("expected single fallback strategy, got %v", got)
	}
}

func TestGenerateClosingStrategiesHighUrgency(t *testing.T) {
	got := GenerateClosingStrategies(domain.UrgencyHigh, []string{IntentPricing})
	found := false
	for _, s := range got {
		if strings.Contains(s, "same-day") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a same-day recommendation for high urgency, got %v", got)
	}
}

func TestAnalyzeStyleCountsLatestMessage(t *testing.T) {
	a := Analyze(nil, "this car looks amazing! I love the color options here")
	if a.CommunicationStyle != "Enthusiastic" {
		t.Fatalf("expected the latest message to shape the style, got %q", a.CommunicationStyle)
	}
}

func TestAnalyzeAggregate(t *testing.T) {
	messages := []string{"Hi, I'm Josh", "what's the price on the 2019 toyota prius?"}
	a := Analyze(messages, "I need it today")

	if a.LeadName != "Josh" {
		t.Fatalf("expected lead name Josh, got %q", a.LeadName)
	}
	if a.UrgencyLevel != domain.UrgencyHigh {
		t.Fatalf("expected high urgency, got %q", a.UrgencyLevel)
	}
	if !strings.Contains(a.VehicleInfo, "Prius") {
		t.Fatalf("expected vehicle info to mention Prius, got %q", a.VehicleInfo)
	}
	if len(a.KeyIntents) == 0 || len(a.Priorities) == 0 {
		t.Fatal("expected non-empty intents and priorities")
	}
	if a.PurchaseWindow != WindowImmediate {
		t.Fatalf("expected immediate window, got %q", a.PurchaseWindow)
	}
}
