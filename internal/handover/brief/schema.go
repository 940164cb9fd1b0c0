package brief

import (
	"encoding/json"
	"fmt"
	"strings"

	"mailmind_backend/internal/handover/domain"
)

// stringList tolerates the two shapes models actually return for list fields:
// a proper JSON array, or a single comma-joined string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected array or string, got %s", string(data))
	}
	if strings.TrimSpace(s) == "" {
		*l = nil
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*l = out
	return nil
}

type rawSalesBrief struct {
	Name            string     `json:"name"`
	ModifiedName    string     `json:"modified_name"`
	UserQuery       string     `json:"user_query"`
	QuickInsights   stringList `json:"quick_insights"`
	Actions         stringList `json:"actions"`
	RepMessage      string     `json:"rep_message"`
	SalesReadiness  string     `json:"sales_readiness"`
	Priority        string     `json:"priority"`
	ResearchQueries stringList `json:"research_queries"`
	ReplyRequired   bool       `json:"reply_required"`
}

// extractJSON strips markdown fences and surrounding prose, returning the
// outermost JSON object in the text. Returns "" when no object is present.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// ParseSalesBrief parses raw model output into a SalesBrief, tolerating fences
// and comma-joined list fields. The result is unvalidated.
func ParseSalesBrief(raw string) (domain.SalesBrief, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return domain.SalesBrief{}, fmt.Errorf("no JSON object in model output")
	}

	var rb rawSalesBrief
	if err := json.Unmarshal([]byte(payload), &rb); err != nil {
		return domain.SalesBrief{}, fmt.Errorf("decode sales brief: %w", err)
	}

	return domain.SalesBrief{
		Name:            strings.TrimSpace(rb.Name),
		ModifiedName:    strings.TrimSpace(rb.ModifiedName),
		UserQuery:       strings.TrimSpace(rb.UserQuery),
		QuickInsights:   rb.QuickInsights,
		Actions:         rb.Actions,
		RepMessage:      strings.TrimSpace(rb.RepMessage),
		SalesReadiness:  strings.ToLower(strings.TrimSpace(rb.SalesReadiness)),
		Priority:        strings.ToLower(strings.TrimSpace(rb.Priority)),
		ResearchQueries: rb.ResearchQueries,
		ReplyRequired:   rb.ReplyRequired,
	}, nil
}

// ValidateSalesBrief reports the first schema violation, or nil when the brief
// satisfies every invariant: required fields present, list bounds respected,
// enum membership, single-line rep message.
func ValidateSalesBrief(sb domain.SalesBrief) error {
	if sb.Name == "" {
		return fmt.Errorf("missing name")
	}
	if sb.UserQuery == "" {
		return fmt.Errorf("missing user_query")
	}
	if sb.RepMessage == "" {
		return fmt.Errorf("missing rep_message")
	}
	if strings.ContainsAny(sb.RepMessage, "\n\r") {
		return fmt.Errorf("rep_message is not a single line")
	}
	if len(sb.QuickInsights) == 0 {
		return fmt.Errorf("missing quick_insights")
	}
	if len(sb.QuickInsights) > domain.MaxQuickInsights {
		return fmt.Errorf("quick_insights has %d items, max %d", len(sb.QuickInsights), domain.MaxQuickInsights)
	}
	if len(sb.Actions) > domain.MaxActions {
		return fmt.Errorf("actions has %d items, max %d", len(sb.Actions), domain.MaxActions)
	}
	switch sb.SalesReadiness {
	case domain.ReadinessLow, domain.ReadinessMedium, domain.ReadinessHigh:
	default:
		return fmt.Errorf("invalid sales_readiness %q", sb.SalesReadiness)
	}
	switch sb.Priority {
	case domain.PriorityStandard, domain.PriorityImmediate:
	default:
		return fmt.Errorf("invalid priority %q", sb.Priority)
	}
	return nil
}

// RepairSalesBrief coerces a brief into schema validity in place: truncates
// oversized lists, fills missing fields from the generation context, collapses
// the rep message to one line, and snaps enums to defaults. After repair,
// ValidateSalesBrief always passes.
func RepairSalesBrief(sb *domain.SalesBrief, gctx domain.GenerationContext) {
	if sb.Name == "" {
		sb.Name = gctx.LeadName
	}
	if sb.Name == "" {
		sb.Name = "Unknown lead"
	}
	if sb.ModifiedName == "" {
		sb.ModifiedName = firstWord(sb.Name)
	}
	if sb.UserQuery == "" {
		sb.UserQuery = gctx.LastMessage
	}
	if sb.UserQuery == "" {
		sb.UserQuery = "(no message recorded)"
	}

	if len(sb.QuickInsights) > domain.MaxQuickInsights {
		sb.QuickInsights = sb.QuickInsights[:domain.MaxQuickInsights]
	}
	if len(sb.QuickInsights) == 0 {
		sb.QuickInsights = defaultInsights(gctx)
	}
	if sb.Actions == nil {
		sb.Actions = []string{}
	}
	if len(sb.Actions) > domain.MaxActions {
		sb.Actions = sb.Actions[:domain.MaxActions]
	}
	if sb.ResearchQueries == nil {
		sb.ResearchQueries = []string{}
	}

	sb.RepMessage = singleLine(sb.RepMessage)
	if sb.RepMessage == "" {
		sb.RepMessage = fmt.Sprintf("Hi %s, thanks for reaching out. I'd be happy to help with your question; when is a good time to connect?", sb.ModifiedName)
	}

	switch sb.SalesReadiness {
	case domain.ReadinessLow, domain.ReadinessMedium, domain.ReadinessHigh:
	default:
		sb.SalesReadiness = domain.ReadinessMedium
	}
	switch sb.Priority {
	case domain.PriorityStandard, domain.PriorityImmediate:
	default:
		if gctx.Analysis.UrgencyLevel == domain.UrgencyHigh {
			sb.Priority = domain.PriorityImmediate
		} else {
			sb.Priority = domain.PriorityStandard
		}
	}
}

func defaultInsights(gctx domain.GenerationContext) []string {
	insights := []string{"Handover reason: " + gctx.DecisionReason}
	if gctx.Analysis.VehicleInfo != "" {
		insights = append(insights, "Vehicle of interest: "+gctx.Analysis.VehicleInfo)
	}
	if gctx.Analysis.PurchaseWindow != "" {
		insights = append(insights, "Purchase window: "+gctx.Analysis.PurchaseWindow)
	}
	insights = append(insights, "Urgency: "+gctx.Analysis.UrgencyLevel)
	if len(insights) > domain.MaxQuickInsights {
		insights = insights[:domain.MaxQuickInsights]
	}
	return insights
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
