package agent

import (
	"strings"
	"testing"
)

func TestParseRecommendation(t *testing.T) {
	rec, err := parseRecommendation(`{"should_handover": true, "reason": "Complex request detected"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.ShouldHandover || rec.Reason != "Complex request detected" {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
}

func TestParseRecommendationProseWrapped(t *testing.T) {
	raw := "Sure, here is my judgement:\n{\"should_handover\": false, \"reason\": \"Simple FAQ\"}\nHope that helps."
	rec, err := parseRecommendation(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ShouldHandover {
		t.Fatal("expected should_handover false")
	}
}

func TestParseRecommendationGarbage(t *testing.T) {
	if _, err := parseRecommendation("I cannot decide."); err == nil {
		t.Fatal("expected error for output without JSON")
	}
}

func TestBuildRecommenderPrompt(t *testing.T) {
	prompt := buildRecommenderPrompt([]string{"hello"}, "what's the price?")
	if !strings.Contains(prompt, "what's the price?") || !strings.Contains(prompt, "- hello") {
		t.Fatalf("prompt missing conversation content:\n%s", prompt)
	}
}
