package email

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mailmind_backend/platform/config"
)

// MailgunSender delivers mail through Mailgun's HTTP messages endpoint.
type MailgunSender struct {
	apiKey    string
	domain    string
	baseURL   string
	fromName  string
	fromEmail string
	client    *http.Client
}

type mailgunResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func NewMailgunSender(cfg config.EmailConfig) *MailgunSender {
	baseURL := cfg.GetMailgunBaseURL()
	if baseURL == "" {
		baseURL = "https://api.mailgun.net/v3"
	}
	return &MailgunSender{
		apiKey:    cfg.GetMailgunAPIKey(),
		domain:    cfg.GetMailgunDomain(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *MailgunSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	form := url.Values{}
	form.Set("from", fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail))
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	if msg.HTMLBody != "" {
		form.Set("html", msg.HTMLBody)
	}
	if msg.TextBody != "" {
		form.Set("text", msg.TextBody)
	}
	for key, value := range msg.Headers {
		form.Set("h:"+key, value)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", m.baseURL, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return SendResult{}, err
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return SendResult{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SendResult{}, fmt.Errorf("mailgun send failed: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed mailgunResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Delivery succeeded; the message id is informational only.
		return SendResult{}, nil
	}
	return SendResult{ProviderMessageID: parsed.ID}, nil
}

func (m *MailgunSender) SendHandoverBrief(ctx context.Context, toEmail string, data HandoverBriefData) error {
	subject := fmt.Sprintf(subjectHandoverBriefFmt, briefSubjectLead(data))
	html, err := renderEmailTemplate("handover_brief.html", handoverBriefEmailData{
		baseEmailData: baseEmailData{
			Title:   "Sales handover",
			Heading: "New sales handover",
		},
		HandoverBriefData: data,
	})
	if err != nil {
		return err
	}

	_, err = m.Send(ctx, Message{
		To:       toEmail,
		Subject:  subject,
		HTMLBody: html,
		TextBody: renderHandoverBriefText(data),
	})
	return err
}

func (m *MailgunSender) SendAutoReply(ctx context.Context, toEmail, subject, textBody string, headers map[string]string) error {
	_, err := m.Send(ctx, Message{
		To:       toEmail,
		Subject:  subject,
		TextBody: textBody,
		Headers:  headers,
	})
	return err
}
