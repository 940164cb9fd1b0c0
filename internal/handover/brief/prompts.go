package brief

import (
	"fmt"
	"strings"

	"mailmind_backend/internal/handover/domain"
)

func salesBriefSystemPrompt() string {
	return "You are a sales-enablement assistant for automotive dealerships. " +
		"You turn lead conversations into structured handover briefs a sales rep can scan in five seconds. " +
		"You always respond with a single JSON object and nothing else."
}

// strictJSONInstruction is appended on the retry after a malformed response.
const strictJSONInstruction = "\n\nIMPORTANT: Respond with JSON only. No prose, no markdown fences, no commentary. " +
	"Every list field must be a JSON array of strings. quick_insights and actions must each contain at most 6 items."

func buildSalesBriefPrompt(gctx domain.GenerationContext) string {
	history := condenseHistory(gctx.History, 10)

	var b strings.Builder
	fmt.Fprintf(&b, "Lead: %s <%s>\n", orDash(gctx.LeadName), orDash(gctx.LeadEmail))
	fmt.Fprintf(&b, "Campaign: %s\n", orDash(gctx.CampaignSource))
	fmt.Fprintf(&b, "Handover reason: %s\n\n", gctx.DecisionReason)

	fmt.Fprintf(&b, "Latest message (verbatim):\n%s\n\n", gctx.LastMessage)
	fmt.Fprintf(&b, "Conversation so far:\n%s\n\n", history)

	b.WriteString("Pre-computed analysis (trust these values, do not re-derive them):\n")
	fmt.Fprintf(&b, "- Vehicle interest: %s\n", orDash(gctx.Analysis.VehicleInfo))
	fmt.Fprintf(&b, "- Purchase window: %s\n", gctx.Analysis.PurchaseWindow)
	fmt.Fprintf(&b, "- Communication style: %s\n", gctx.Analysis.CommunicationStyle)
	fmt.Fprintf(&b, "- Detected intents: %s\n", strings.Join(gctx.Analysis.KeyIntents, ", "))
	fmt.Fprintf(&b, "- Urgency level: %s\n", gctx.Analysis.UrgencyLevel)
	fmt.Fprintf(&b, "- Priorities: %s\n", strings.Join(gctx.Analysis.Priorities, ", "))
	if gctx.Analysis.CompetitiveContext != "" {
		fmt.Fprintf(&b, "- Competitive context: %s\n", gctx.Analysis.CompetitiveContext)
	}

	b.WriteString(`
Produce a JSON object with exactly these fields:
{
  "name": "lead's full name",
  "modified_name": "lead's first name only",
  "user_query": "the latest message, verbatim",
  "quick_insights": ["up to 6 short bullets a rep can scan in five seconds"],
  "actions": ["up to 6 concrete next steps for the rep"],
  "rep_message": "one copy-paste-ready reply line, no newlines",
  "sales_readiness": "low | medium | high",
  "priority": "standard | immediate",
  "research_queries": ["inventory lookups the rep should run, e.g. model + trim"],
  "reply_required": true or false
}`)

	return b.String()
}

func condenseHistory(history []string, limit int) string {
	if len(history) == 0 {
		return "(no prior messages)"
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	var b strings.Builder
	for i, msg := range history {
		line := strings.Join(strings.Fields(msg), " ")
		if r := []rune(line); len(r) > 200 {
			line = string(r[:200]) + "..."
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	return strings.TrimRight(b.String(), "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
