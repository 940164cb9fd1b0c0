package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface over a direct SMTP connection via
// go-mail. It renders the same templates as MailgunSender but delivers through
// the dealership's own mail server.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender with the given credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.fromEmail); err != nil {
		return SendResult{}, fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return SendResult{}, fmt.Errorf("smtp to: %w", err)
	}
	m.Subject(msg.Subject)
	for key, value := range msg.Headers {
		m.SetGenHeader(gomail.Header(key), value)
	}

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return SendResult{}, fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return SendResult{}, fmt.Errorf("smtp send: %w", err)
	}

	// SMTP has no provider message id to report.
	return SendResult{}, nil
}

func (s *SMTPSender) SendHandoverBrief(ctx context.Context, toEmail string, data HandoverBriefData) error {
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

	_, err = s.Send(ctx, Message{
		To:       toEmail,
		Subject:  subject,
		HTMLBody: html,
		TextBody: renderHandoverBriefText(data),
	})
	return err
}

func (s *SMTPSender) SendAutoReply(ctx context.Context, toEmail, subject, textBody string, headers map[string]string) error {
	_, err := s.Send(ctx, Message{
		To:       toEmail,
		Subject:  subject,
		TextBody: textBody,
		Headers:  headers,
	})
	return err
}
