package campaigns

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/platform/apperr"
	"mailmind_backend/platform/httpkit"
	"mailmind_backend/platform/validator"
)

// Handler handles campaign HTTP requests.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

// NewHandler creates a new campaigns handler.
func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

// TriggersRequest mirrors domain.Triggers for request binding.
type TriggersRequest struct {
	PricingQuestions    bool     `json:"pricingQuestions"`
	TestDriveDemo       bool     `json:"testDriveDemo"`
	TradeInValue        bool     `json:"tradeInValue"`
	Financing           bool     `json:"financing"`
	VehicleAvailability bool     `json:"vehicleAvailability"`
	Urgency             bool     `json:"urgency"`
	CustomTriggers      []string `json:"customTriggers" validate:"max=20,dive,max=200"`
}

func (t TriggersRequest) toDomain() domain.Triggers {
	custom := t.CustomTriggers
	if custom == nil {
		custom = []string{}
	}
	return domain.Triggers{
		PricingQuestions:    t.PricingQuestions,
		TestDriveDemo:       t.TestDriveDemo,
		TradeInValue:        t.TradeInValue,
		Financing:           t.Financing,
		VehicleAvailability: t.VehicleAvailability,
		Urgency:             t.Urgency,
		CustomTriggers:      custom,
	}
}

// CampaignRequest is the request body for creating or updating a campaign.
type CampaignRequest struct {
	Name             string          `json:"name" validate:"required,min=1,max=200"`
	Source           string          `json:"source" validate:"required,min=1,max=100"`
	Triggers         TriggersRequest `json:"triggers"`
	Recipient        string          `json:"recipient" validate:"omitempty,email"`
	RecipientName    string          `json:"recipientName" validate:"max=200"`
	AutoReplyEnabled bool            `json:"autoReplyEnabled"`
	IsActive         *bool           `json:"isActive"`
}

// CampaignResponse is the API representation of a campaign.
type CampaignResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Source           string          `json:"source"`
	Triggers         domain.Triggers `json:"triggers"`
	Recipient        string          `json:"recipient,omitempty"`
	RecipientName    string          `json:"recipientName,omitempty"`
	AutoReplyEnabled bool            `json:"autoReplyEnabled"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

func toCampaignResponse(c Campaign) CampaignResponse {
	return CampaignResponse{
		ID:               c.ID,
		Name:             c.Name,
		Source:           c.Source,
		Triggers:         c.Triggers,
		Recipient:        c.Recipient,
		RecipientName:    c.RecipientName,
		AutoReplyEnabled: c.AutoReplyEnabled,
		IsActive:         c.IsActive,
		CreatedAt:        c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        c.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// HandleCreate creates a campaign.
// POST /api/v1/campaigns
func (h *Handler) HandleCreate(c *gin.Context) {
	var req CampaignRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	created, err := h.repo.Create(c.Request.Context(), Campaign{
		Name:             req.Name,
		Source:           req.Source,
		Triggers:         req.Triggers.toDomain(),
		Recipient:        req.Recipient,
		RecipientName:    req.RecipientName,
		AutoReplyEnabled: req.AutoReplyEnabled,
	})
	if httpkit.HandleError(c, wrapRepoError(err, "create campaign")) {
		return
	}

	httpkit.Created(c, toCampaignResponse(created))
}

// HandleList lists all campaigns.
// GET /api/v1/campaigns
func (h *Handler) HandleList(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if httpkit.HandleError(c, wrapRepoError(err, "list campaigns")) {
		return
	}

	out := make([]CampaignResponse, 0, len(list))
	for _, campaign := range list {
		out = append(out, toCampaignResponse(campaign))
	}
	httpkit.OK(c, out)
}

// HandleGet fetches one campaign.
// GET /api/v1/campaigns/:campaignId
func (h *Handler) HandleGet(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	campaign, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, wrapRepoError(err, "get campaign")) {
		return
	}

	httpkit.OK(c, toCampaignResponse(campaign))
}

// HandleUpdate replaces a campaign's mutable fields.
// PUT /api/v1/campaigns/:campaignId
func (h *Handler) HandleUpdate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req CampaignRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, wrapRepoError(err, "get campaign")) {
		return
	}

	existing.Name = req.Name
	existing.Source = req.Source
	existing.Triggers = req.Triggers.toDomain()
	existing.Recipient = req.Recipient
	existing.RecipientName = req.RecipientName
	existing.AutoReplyEnabled = req.AutoReplyEnabled
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	updated, err := h.repo.Update(c.Request.Context(), existing)
	if httpkit.HandleError(c, wrapRepoError(err, "update campaign")) {
		return
	}

	httpkit.OK(c, toCampaignResponse(updated))
}

// HandleDelete removes a campaign.
// DELETE /api/v1/campaigns/:campaignId
func (h *Handler) HandleDelete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	err := h.repo.Delete(c.Request.Context(), id)
	if httpkit.HandleError(c, wrapRepoError(err, "delete campaign")) {
		return
	}

	c.Status(204)
}

func (h *Handler) bindAndValidate(c *gin.Context, req *CampaignRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation error", err.Error())
		return false
	}
	return true
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("campaignId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid campaign ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func wrapRepoError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCampaignNotFound) {
		return apperr.NotFound("campaign not found")
	}
	return apperr.Wrap(apperr.KindInternal, op+" failed", err)
}
