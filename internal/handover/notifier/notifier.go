// Package notifier routes finalized handover briefs to the right human
// recipient and delivers them through the email gateway. Delivery is
// best-effort: a failed send never invalidates the decision or the brief.
package notifier

import (
	"context"
	"time"

	"mailmind_backend/internal/email"
	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/platform/config"
	"mailmind_backend/platform/logger"
	"mailmind_backend/platform/retry"
)

// financeIntents and serviceIntents drive recipient routing when the campaign
// carries no static recipient.
var (
	financeIntents = map[string]bool{"pricing": true, "purchase": true}
	serviceIntents = map[string]bool{"technical": true}
)

const (
	deliveryAttempts  = 3
	deliveryBaseDelay = 500 * time.Millisecond
)

// CampaignRouting is the per-campaign recipient configuration, read-only to
// the notifier.
type CampaignRouting struct {
	Recipient     string
	RecipientName string
}

// Notifier selects recipients and delivers briefs.
type Notifier struct {
	sender email.Sender
	cfg    config.HandoverConfig
	log    *logger.Logger
}

func New(sender email.Sender, cfg config.HandoverConfig, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, cfg: cfg, log: log}
}

// SelectRecipient resolves the notification target: the campaign's static
// recipient when set, else intent-based team routing, else the always-present
// default address. Never returns an empty recipient.
func (n *Notifier) SelectRecipient(routing CampaignRouting, intents []string) (address, name string) {
	if routing.Recipient != "" {
		return routing.Recipient, routing.RecipientName
	}

	for _, intent := range intents {
		if financeIntents[intent] && n.cfg.GetHandoverFinanceRecipient() != "" {
			return n.cfg.GetHandoverFinanceRecipient(), ""
		}
	}
	for _, intent := range intents {
		if serviceIntents[intent] && n.cfg.GetHandoverServiceRecipient() != "" {
			return n.cfg.GetHandoverServiceRecipient(), ""
		}
	}

	return n.cfg.GetHandoverDefaultRecipient(), ""
}

// Deliver formats the brief pair into the handover email and sends it with a
// small bounded retry. The returned status is recorded on the stored brief;
// failures are logged, never propagated.
func (n *Notifier) Deliver(ctx context.Context, routing CampaignRouting, b domain.Brief, sb domain.SalesBrief) domain.DeliveryStatus {
	recipient, recipientName := n.SelectRecipient(routing, b.KeyIntents)

	data := email.HandoverBriefData{
		RecipientName:   recipientName,
		LeadName:        b.LeadName,
		LeadEmail:       b.LeadEmail,
		VehicleInfo:     b.VehicleInfo,
		UrgencyLevel:    b.UrgencyLevel,
		HandoverReason:  b.HandoverReason,
		Summary:         b.ConversationSummary,
		QuickInsights:   sb.QuickInsights,
		Actions:         sb.Actions,
		RepMessage:      sb.RepMessage,
		ResearchQueries: sb.ResearchQueries,
	}

	err := retry.Do(ctx, "handover notification", deliveryAttempts, deliveryBaseDelay, func() error {
		return n.sender.SendHandoverBrief(ctx, recipient, data)
	})
	if err != nil {
		n.log.DeliveryError("email", recipient, err)
		return domain.DeliveryFailed
	}

	n.log.Info("handover notification sent", "recipient", recipient, "lead_email", b.LeadEmail)
	return domain.DeliverySent
}
