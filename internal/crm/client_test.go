package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/internal/handover/repository"
	"mailmind_backend/platform/logger"
)

type stubCRMConfig struct {
	url   string
	token string
}

func (c stubCRMConfig) GetCRMWebhookURL() string { return c.url }
func (c stubCRMConfig) GetCRMAuthToken() string  { return c.token }
func (c stubCRMConfig) IsCRMEnabled() bool       { return c.url != "" }

func testStoredBrief() repository.StoredBrief {
	return repository.StoredBrief{
		ID:             uuid.New(),
		ConversationID: uuid.New(),
		LeadID:         uuid.New(),
		CampaignID:     uuid.New(),
		Brief: domain.Brief{
			LeadName:     "Josh Miller",
			VehicleInfo:  "2019 Toyota Prius",
			UrgencyLevel: domain.UrgencyHigh,
		},
		SalesBrief: domain.SalesBrief{
			Name:           "Josh",
			UserQuery:      "Price for the Prius?",
			QuickInsights:  []string{"Interested in a 2019 Toyota Prius"},
			SalesReadiness: domain.ReadinessHigh,
			Priority:       domain.PriorityImmediate,
			RepMessage:     "Hi Josh, happy to help with pricing.",
		},
		TriggeredBy:    domain.TriggeredByKeyword,
		Reason:         `Trigger pricingQuestions matched keyword "price"`,
		DeliveryStatus: domain.DeliverySent,
		Recipient:      "sales@dealership.com",
		CreatedAt:      time.Now(),
	}
}

func TestPushSendsAuthorizedJSON(t *testing.T) {
	stored := testStoredBrief()

	var gotAuth string
	var gotPayload HandoverPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(stubCRMConfig{url: srv.URL, token: "secret-token"}, logger.New("test"))
	if err := client.Push(context.Background(), PayloadFromStored(stored)); err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotPayload.BriefID != stored.ID {
		t.Fatalf("payload briefId = %s, want %s", gotPayload.BriefID, stored.ID)
	}
	if gotPayload.TriggeredBy != string(domain.TriggeredByKeyword) {
		t.Fatalf("payload triggeredBy = %q", gotPayload.TriggeredBy)
	}
	if gotPayload.SalesBrief.RepMessage != stored.SalesBrief.RepMessage {
		t.Fatalf("payload rep message = %q", gotPayload.SalesBrief.RepMessage)
	}
}

func TestPushReturnsErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(stubCRMConfig{url: srv.URL}, logger.New("test"))
	if err := client.Push(context.Background(), PayloadFromStored(testStoredBrief())); err == nil {
		t.Fatal("expected error on 502 response")
	}
}
