package notifier

import (
	"context"
	"errors"
	"testing"

	"mailmind_backend/internal/email"
	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/platform/logger"
)

type stubHandoverConfig struct {
	defaultRecipient string
	financeRecipient string
	serviceRecipient string
}

func (s stubHandoverConfig) GetHandoverDefaultRecipient() string { return s.defaultRecipient }
func (s stubHandoverConfig) GetHandoverFinanceRecipient() string { return s.financeRecipient }
func (s stubHandoverConfig) GetHandoverServiceRecipient() string { return s.serviceRecipient }

type stubSender struct {
	email.NoopSender
	calls int
	fail  bool
	last  email.HandoverBriefData
	to    string
}

func (s *stubSender) SendHandoverBrief(ctx context.Context, toEmail string, data email.HandoverBriefData) error {
	s.calls++
	s.to = toEmail
	s.last = data
	if s.fail {
		return errors.New("gateway down")
	}
	return nil
}

func newTestNotifier(sender email.Sender) *Notifier {
	cfg := stubHandoverConfig{
		defaultRecipient: "sales@dealer.example",
		financeRecipient: "finance@dealer.example",
		serviceRecipient: "service@dealer.example",
	}
	return New(sender, cfg, logger.New("development"))
}

func TestSelectRecipientStaticWins(t *testing.T) {
	n := newTestNotifier(&stubSender{})

	addr, name := n.SelectRecipient(CampaignRouting{Recipient: "dana@dealer.example", RecipientName: "Dana"}, []string{"pricing"})
	if addr != "dana@dealer.example" || name != "Dana" {
		t.Fatalf("expected static recipient to win, got %q %q", addr, name)
	}
}

func TestSelectRecipientIntentRouting(t *testing.T) {
	n := newTestNotifier(&stubSender{})

	tests := []struct {
		name    string
		intents []string
		want    string
	}{
		{"finance intent", []string{"pricing"}, "finance@dealer.example"},
		{"service intent", []string{"technical"}, "service@dealer.example"},
		{"finance beats service", []string{"technical", "pricing"}, "finance@dealer.example"},
		{"default", []string{"general_inquiry"}, "sales@dealer.example"},
		{"no intents", nil, "sales@dealer.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, _ := n.SelectRecipient(CampaignRouting{}, tt.intents)
			if addr != tt.want {
				t.Fatalf("SelectRecipient(%v) = %q, want %q", tt.intents, addr, tt.want)
			}
		})
	}
}

func TestSelectRecipientNeverEmpty(t *testing.T) {
	n := New(&stubSender{}, stubHandoverConfig{defaultRecipient: "sales@dealer.example"}, logger.New("development"))

	addr, _ := n.SelectRecipient(CampaignRouting{}, []string{"pricing"})
	if addr != "sales@dealer.example" {
		t.Fatalf("expected default fallback when team addresses are unset, got %q", addr)
	}
}

func TestDeliverSuccess(t *testing.T) {
	sender := &stubSender{}
	n := newTestNotifier(sender)

	b := domain.Brief{
		LeadName:            "Josh Miller",
		LeadEmail:           "josh@example.com",
		KeyIntents:          []string{"general_inquiry"},
		UrgencyLevel:        domain.UrgencyHigh,
		ConversationSummary: "summary",
	}
	sb := domain.SalesBrief{
		QuickInsights: []string{"insight"},
		RepMessage:    "Hi Josh",
	}

	status := n.Deliver(context.Background(), CampaignRouting{}, b, sb)

	if status != domain.DeliverySent {
		t.Fatalf("expected sent status, got %q", status)
	}
	if sender.to != "sales@dealer.example" {
		t.Fatalf("unexpected recipient %q", sender.to)
	}
	if sender.last.RepMessage != "Hi Josh" || sender.last.LeadName != "Josh Miller" {
		t.Fatalf("brief data not carried through: %+v", sender.last)
	}
}

func TestDeliverFailureIsNonFatal(t *testing.T) {
	sender := &stubSender{fail: true}
	n := newTestNotifier(sender)

	status := n.Deliver(context.Background(), CampaignRouting{}, domain.Brief{LeadEmail: "josh@example.com"}, domain.SalesBrief{})

	if status != domain.DeliveryFailed {
		t.Fatalf("expected failed status, got %q", status)
	}
	if sender.calls != deliveryAttempts {
		t.Fatalf("expected %d attempts, got %d", deliveryAttempts, sender.calls)
	}
}
