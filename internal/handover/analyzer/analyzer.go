// Package analyzer provides the deterministic conversation-analysis functions
// feeding the handover pipeline: vehicle extraction, urgency and intent
// detection, communication-style classification, and strategy derivation.
// Everything here is pure string matching; no model calls, no state.
package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/platform/sanitize"
)

var (
	yearMakeModelRe *regexp.Regexp
	makeModelRe     *regexp.Regexp
	timeframeRe     = regexp.MustCompile(`\d+\s*(day|week|month)s?`)
	leadNameRe      = regexp.MustCompile(`(?i)\b(?:i am|i'm|my name is|this is|call me)\s+([a-z]+)`)
)

func init() {
	alt := strings.Join(vehicleMakes, "|")
	yearMakeModelRe = regexp.MustCompile(`\b((?:19|20)\d{2})\s+(` + alt + `)\s+([a-z][a-z0-9-]*)`)
	makeModelRe = regexp.MustCompile(`\b(` + alt + `)\s+([a-z][a-z0-9-]*)(?:\s+((?:19|20)\d{2}))?`)
}

// nameStopwords are words a lead-name pattern can capture that are never names.
var nameStopwords = map[string]bool{
	"interested": true, "looking": true, "calling": true, "writing": true,
	"just": true, "not": true, "here": true, "ready": true, "going": true,
	"trying": true, "hoping": true, "sure": true, "wondering": true,
	"still": true, "also": true, "very": true, "really": true, "a": true,
	"an": true, "the": true, "in": true, "so": true,
}

// ExtractVehicleInfo pattern-matches vehicle mentions against the known make
// and model tables, trying composite patterns before bare model names:
// year+make+model, then make+model(+year), then a curated bare-model list.
// Returns "" when nothing matches.
func ExtractVehicleInfo(text string) string {
	lower := strings.ToLower(text)

	if m := yearMakeModelRe.FindStringSubmatch(lower); m != nil {
		return capitalizeWords(sanitize.CollapseWhitespace(m[1] + " " + m[2] + " " + m[3]))
	}

	if m := makeModelRe.FindStringSubmatch(lower); m != nil {
		parts := m[1] + " " + m[2]
		if m[3] != "" {
			parts += " " + m[3]
		}
		return capitalizeWords(sanitize.CollapseWhitespace(parts))
	}

	for _, model := range vehicleModels {
		if containsWord(lower, model) {
			return capitalizeWords(model)
		}
	}

	return ""
}

// DeterminePurchaseWindow classifies the customer's buying timeline from the
// full user text plus the latest message. Urgent indicators win over near-term
// ones; an explicit numeric timeframe is reported when neither list matches.
func DeterminePurchaseWindow(allText, lastMessage string) string {
	combined := strings.ToLower(allText + " " + lastMessage)

	if containsAny(combined, urgentWindowWords) {
		return WindowImmediate
	}
	if containsAny(combined, nearTermWindowWords) {
		return WindowNearTerm
	}
	if timeframeRe.MatchString(combined) {
		return WindowSpecific
	}
	return WindowUnclear
}

// AnalyzeCommunicationStyle labels the customer's writing style from average
// message length and punctuation. The checks form an explicit priority chain;
// the short+question and long branches cannot both hold given the thresholds.
func AnalyzeCommunicationStyle(userMessages []string) string {
	if len(userMessages) == 0 {
		return "Balanced communicator"
	}

	total := 0
	hasQuestion := false
	hasExclamation := false
	for _, msg := range userMessages {
		total += len(msg)
		if strings.Contains(msg, "?") {
			hasQuestion = true
		}
		if strings.Contains(msg, "!") {
			hasExclamation = true
		}
	}
	avg := float64(total) / float64(len(userMessages))

	switch {
	case avg < 50 && hasQuestion:
		return "Direct, efficiency-focused"
	case avg > 150:
		return "Detailed communicator"
	case hasExclamation:
		return "Enthusiastic"
	default:
		return "Balanced communicator"
	}
}

// ExtractIntents returns every intent category whose keyword list matches the
// text, in the table's fixed order. When nothing matches, the single
// general_inquiry intent is returned so the result is never empty.
func ExtractIntents(text string) []string {
	lower := strings.ToLower(text)

	var intents []string
	for _, cat := range intentCategories {
		if containsAny(lower, cat.keywords) {
			intents = append(intents, cat.name)
		}
	}

	if len(intents) == 0 {
		return []string{IntentGeneral}
	}
	return intents
}

// DetermineUrgencyLevel classifies urgency from the full text plus the latest
// message. High-urgency keywords are checked before medium ones.
func DetermineUrgencyLevel(text, lastMessage string) string {
	combined := strings.ToLower(text) + " " + strings.ToLower(lastMessage)

	if containsAny(combined, highUrgencyWords) {
		return domain.UrgencyHigh
	}
	if containsAny(combined, mediumUrgencyWords) {
		return domain.UrgencyMedium
	}
	return domain.UrgencyLow
}

// GenerateConversationSummary assembles the rep-facing summary from fixed
// sentences gated by intent membership, plus an engagement note for longer
// conversations.
func GenerateConversationSummary(userMessages []string, intents []string) string {
	var parts []string

	if hasIntent(intents, IntentPricing) {
		parts = append(parts, "Asked specifically about pricing and costs.")
	}
	if hasIntent(intents, IntentScheduling) {
		parts = append(parts, "Interested in scheduling a visit or test drive.")
	}
	if hasIntent(intents, IntentTechnical) {
		parts = append(parts, "Asked detailed technical questions.")
	}
	if hasIntent(intents, IntentComparison) {
		parts = append(parts, "Comparing options against other vehicles or dealers.")
	}
	if len(userMessages) > 3 {
		parts = append(parts, "Highly engaged with multiple messages exchanged.")
	}

	if len(parts) == 0 {
		return "General inquiry about products/services."
	}
	return strings.Join(parts, " ")
}

// ExtractPriorities derives labeled customer priorities from keyword signals.
// Always returns at least one entry.
func ExtractPriorities(text string, intents []string) []string {
	lower := strings.ToLower(text)

	var priorities []string
	if hasIntent(intents, IntentPricing) || containsAny(lower, []string{"budget", "afford", "cheap"}) {
		priorities = append(priorities, "Price and payment terms")
	}
	if strings.Contains(lower, "safety") || strings.Contains(lower, "safe") {
		priorities = append(priorities, "Safety features")
	}
	if containsAny(lower, []string{"fuel", "mpg", "gas", "economy", "hybrid", "electric"}) {
		priorities = append(priorities, "Fuel economy")
	}
	if containsAny(lower, []string{"family", "kids", "space", "room", "seats"}) {
		priorities = append(priorities, "Space and comfort for passengers")
	}
	if containsAny(lower, []string{"reliable", "reliability", "warranty", "last"}) {
		priorities = append(priorities, "Long-term reliability")
	}
	if strings.Contains(lower, "trade") {
		priorities = append(priorities, "Maximizing trade-in value")
	}

	if len(priorities) == 0 {
		return []string{"Overall value"}
	}
	return priorities
}

// ExtractCompetitiveContext reports cross-shopping signals, or "" when the
// conversation shows none.
func ExtractCompetitiveContext(text string) string {
	lower := strings.ToLower(text)
	for _, signal := range competitorSignals {
		if strings.Contains(lower, signal) {
			return "Cross-shopping signal: mentioned \"" + signal + "\""
		}
	}
	return ""
}

// ExtractLeadName pulls a first name from self-introduction phrases in the
// conversation ("I'm Josh", "my name is ..."). Returns "" when no message
// introduces a name.
func ExtractLeadName(userMessages []string) string {
	for _, msg := range userMessages {
		m := leadNameRe.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		candidate := strings.ToLower(m[1])
		if nameStopwords[candidate] {
			continue
		}
		return capitalizeWords(candidate)
	}
	return ""
}

// GenerateSalesStrategy derives approach recommendations from the detected
// signals. Always returns at least one entry.
func GenerateSalesStrategy(intents []string, urgencyLevel, vehicleInfo string) []string {
	var strategies []string

	if hasIntent(intents, IntentPricing) {
		strategies = append(strategies, "Lead with transparent pricing and current incentives")
	}
	if hasIntent(intents, IntentScheduling) {
		strategies = append(strategies, "Offer concrete appointment slots rather than open-ended availability")
	}
	if hasIntent(intents, IntentComparison) {
		strategies = append(strategies, "Highlight differentiators against the models they are cross-shopping")
	}
	if hasIntent(intents, IntentPurchase) {
		strategies = append(strategies, "Move directly to purchase logistics; the customer is past browsing")
	}
	if vehicleInfo != "" {
		strategies = append(strategies, fmt.Sprintf("Anchor the conversation on the %s they already identified", vehicleInfo))
	}
	if urgencyLevel == domain.UrgencyHigh {
		strategies = append(strategies, "Respond within the hour; urgency signals a same-day decision window")
	}

	if len(strategies) == 0 {
		return []string{"Build rapport and identify the customer's primary motivation"}
	}
	return strategies
}

// GenerateClosingStrategies derives closing recommendations from urgency and
// intents. Always returns at least one entry; high urgency always includes a
// same-day recommendation.
func GenerateClosingStrategies(urgencyLevel string, intents []string) []string {
	var strategies []string

	if urgencyLevel == domain.UrgencyHigh {
		strategies = append(strategies, "Propose a same-day appointment while urgency is high")
	}
	if urgencyLevel == domain.UrgencyMedium {
		strategies = append(strategies, "Create gentle time pressure with expiring incentives")
	}
	if hasIntent(intents, IntentPricing) {
		strategies = append(strategies, "Close on monthly payment fit rather than sticker price")
	}
	if hasIntent(intents, IntentPurchase) {
		strategies = append(strategies, "Ask for the sale directly; buying signals are explicit")
	}

	if len(strategies) == 0 {
		return []string{"Summarize value and ask an open next-step question"}
	}
	return strategies
}

// Analyze runs the full deterministic analysis over a conversation's user
// messages plus the latest inbound message.
func Analyze(userMessages []string, lastMessage string) domain.Analysis {
	allMessages := append(append([]string{}, userMessages...), lastMessage)
	allText := strings.Join(userMessages, " ")
	intents := ExtractIntents(allText + " " + lastMessage)

	return domain.Analysis{
		VehicleInfo:        ExtractVehicleInfo(allText + " " + lastMessage),
		PurchaseWindow:     DeterminePurchaseWindow(allText, lastMessage),
		CommunicationStyle: AnalyzeCommunicationStyle(allMessages),
		KeyIntents:         intents,
		UrgencyLevel:       DetermineUrgencyLevel(allText, lastMessage),
		Priorities:         ExtractPriorities(allText+" "+lastMessage, intents),
		CompetitiveContext: ExtractCompetitiveContext(allText + " " + lastMessage),
		LeadName:           ExtractLeadName(allMessages),
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	for idx >= 0 {
		beforeOK := idx == 0 || !isWordChar(text[idx-1])
		end := idx + len(word)
		afterOK := end >= len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		next := strings.Index(text[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '-'
}

func hasIntent(intents []string, intent string) bool {
	for _, i := range intents {
		if i == intent {
			return true
		}
	}
	return false
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 && w[0] >= 'a' && w[0] <= 'z' {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
