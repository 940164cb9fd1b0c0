// Package email delivers outbound mail through Mailgun's HTTP API or a plain
// SMTP server, behind a single Sender interface. Which transport is used is a
// deployment decision, not a caller decision.
package email

import (
	"context"
	"fmt"

	"mailmind_backend/platform/config"
)

// Message is the transport-agnostic outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	Headers  map[string]string
}

// SendResult carries the provider-assigned message id when the transport
// reports one; SMTP deliveries leave it empty.
type SendResult struct {
	ProviderMessageID string
}

// HandoverBriefData is everything the handover notification template needs.
type HandoverBriefData struct {
	RecipientName   string
	LeadName        string
	LeadEmail       string
	VehicleInfo     string
	UrgencyLevel    string
	HandoverReason  string
	Summary         string
	QuickInsights   []string
	Actions         []string
	RepMessage      string
	ResearchQueries []string
}

type Sender interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
	SendHandoverBrief(ctx context.Context, toEmail string, data HandoverBriefData) error
	SendAutoReply(ctx context.Context, toEmail, subject, textBody string, headers map[string]string) error
}

// NoopSender is used when outbound email is disabled; every send succeeds
// without doing anything.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	return SendResult{}, nil
}

func (NoopSender) SendHandoverBrief(ctx context.Context, toEmail string, data HandoverBriefData) error {
	return nil
}

func (NoopSender) SendAutoReply(ctx context.Context, toEmail, subject, textBody string, headers map[string]string) error {
	return nil
}

// NewSender picks the transport from configuration: mailgun or smtp, or the
// noop sender when email is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch cfg.GetEmailProvider() {
	case "mailgun":
		return NewMailgunSender(cfg), nil
	case "smtp":
		return NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}
