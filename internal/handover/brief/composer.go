// Package brief builds the two rep-facing handover artifacts: the
// deterministic Brief composed from conversation analysis, and the
// model-generated SalesBrief with its validate/retry/repair chain.
package brief

import (
	"time"

	"mailmind_backend/internal/handover/analyzer"
	"mailmind_backend/internal/handover/domain"
)

// Compose assembles the deterministic handover brief from the pre-computed
// analysis and the decision that triggered it. No model involvement; this is
// the artifact reps receive when generation is unavailable, and the audit
// record in all cases.
func Compose(gctx domain.GenerationContext, decision domain.DecisionResult, now time.Time) domain.Brief {
	leadName := gctx.LeadName
	if leadName == "" {
		leadName = gctx.Analysis.LeadName
	}

	allMessages := append(append([]string{}, gctx.History...), gctx.LastMessage)
	summary := analyzer.GenerateConversationSummary(allMessages, gctx.Analysis.KeyIntents)

	return domain.Brief{
		LeadName:            leadName,
		LeadEmail:           gctx.LeadEmail,
		VehicleInfo:         gctx.Analysis.VehicleInfo,
		CampaignSource:      gctx.CampaignSource,
		PurchaseWindow:      gctx.Analysis.PurchaseWindow,
		ConversationSummary: summary,
		KeyIntents:          gctx.Analysis.KeyIntents,
		CommunicationStyle:  gctx.Analysis.CommunicationStyle,
		Priorities:          gctx.Analysis.Priorities,
		CompetitiveContext:  gctx.Analysis.CompetitiveContext,
		SalesStrategy:       analyzer.GenerateSalesStrategy(gctx.Analysis.KeyIntents, gctx.Analysis.UrgencyLevel, gctx.Analysis.VehicleInfo),
		ClosingStrategies:   analyzer.GenerateClosingStrategies(gctx.Analysis.UrgencyLevel, gctx.Analysis.KeyIntents),
		UrgencyLevel:        gctx.Analysis.UrgencyLevel,
		HandoverReason:      decision.Reason,
		TriggeredBy:         decision.TriggeredBy,
		GeneratedAt:         now.UTC(),
	}
}
