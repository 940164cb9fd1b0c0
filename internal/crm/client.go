// Package crm relays new leads and finished handovers to the dealership's
// CRM over an outbound webhook.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/internal/handover/repository"
	"mailmind_backend/internal/leads"
	"mailmind_backend/platform/config"
	"mailmind_backend/platform/logger"
)

const pushTimeout = 15 * time.Second

// HandoverPayload is the JSON body posted to the CRM webhook.
type HandoverPayload struct {
	BriefID        uuid.UUID         `json:"briefId"`
	ConversationID uuid.UUID         `json:"conversationId"`
	LeadID         uuid.UUID         `json:"leadId"`
	CampaignID     uuid.UUID         `json:"campaignId"`
	TriggeredBy    string            `json:"triggeredBy"`
	Reason         string            `json:"reason"`
	Brief          domain.Brief      `json:"brief"`
	SalesBrief     domain.SalesBrief `json:"salesBrief"`
	Degraded       bool              `json:"degraded"`
	DeliveryStatus string            `json:"deliveryStatus"`
	Recipient      string            `json:"recipient,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// PayloadFromStored maps a stored brief to the CRM wire format.
func PayloadFromStored(sb repository.StoredBrief) HandoverPayload {
	return HandoverPayload{
		BriefID:        sb.ID,
		ConversationID: sb.ConversationID,
		LeadID:         sb.LeadID,
		CampaignID:     sb.CampaignID,
		TriggeredBy:    string(sb.TriggeredBy),
		Reason:         sb.Reason,
		Brief:          sb.Brief,
		SalesBrief:     sb.SalesBrief,
		Degraded:       sb.Degraded,
		DeliveryStatus: string(sb.DeliveryStatus),
		Recipient:      sb.Recipient,
		CreatedAt:      sb.CreatedAt.UTC(),
	}
}

// LeadPayload is the JSON body posted when a new lead enters the system.
type LeadPayload struct {
	LeadID     uuid.UUID `json:"leadId"`
	CampaignID uuid.UUID `json:"campaignId"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LeadPayloadFrom maps a lead to the CRM wire format.
func LeadPayloadFrom(l leads.Lead) LeadPayload {
	return LeadPayload{
		LeadID:     l.ID,
		CampaignID: l.CampaignID,
		Name:       l.Name,
		Email:      l.Email,
		Phone:      l.Phone,
		Source:     l.Source,
		CreatedAt:  l.CreatedAt.UTC(),
	}
}

// Client posts handover payloads to the configured CRM webhook.
type Client struct {
	httpClient *http.Client
	webhookURL string
	authToken  string
	log        *logger.Logger
}

// NewClient creates a CRM webhook client.
func NewClient(cfg config.CRMConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: pushTimeout},
		webhookURL: cfg.GetCRMWebhookURL(),
		authToken:  cfg.GetCRMAuthToken(),
		log:        log,
	}
}

// Push posts one handover to the CRM. Errors are returned to the caller so
// the task queue can retry with backoff.
func (c *Client) Push(ctx context.Context, payload HandoverPayload) error {
	status, err := c.post(ctx, payload)
	if err != nil {
		return err
	}
	c.log.Info("handover pushed to crm", "briefId", payload.BriefID, "status", status)
	return nil
}

// PushLead posts a new lead to the CRM. Same retry contract as Push.
func (c *Client) PushLead(ctx context.Context, payload LeadPayload) error {
	status, err := c.post(ctx, payload)
	if err != nil {
		return err
	}
	c.log.Info("lead synced to crm", "leadId", payload.LeadID, "status", status)
	return nil
}

func (c *Client) post(ctx context.Context, payload any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal crm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build crm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("crm webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("crm webhook returned %d: %s", resp.StatusCode, string(snippet))
	}

	return resp.StatusCode, nil
}
