package leads

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mailmind_backend/platform/apperr"
	"mailmind_backend/platform/httpkit"
	"mailmind_backend/platform/validator"
)

// Handler handles lead HTTP requests.
type Handler struct {
	service *Service
	repo    *Repository
	val     *validator.Validator
}

// NewHandler creates a new leads handler.
func NewHandler(service *Service, repo *Repository, val *validator.Validator) *Handler {
	return &Handler{service: service, repo: repo, val: val}
}

// CreateLeadRequest is the request body for registering a lead.
type CreateLeadRequest struct {
	CampaignID uuid.UUID `json:"campaignId" validate:"required"`
	Name       string    `json:"name" validate:"max=200"`
	Email      string    `json:"email" validate:"required,email"`
	Phone      string    `json:"phone" validate:"max=32"`
	Source     string    `json:"source" validate:"max=100"`
}

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaignId"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  string    `json:"createdAt"`
}

func toLeadResponse(l Lead) LeadResponse {
	return LeadResponse{
		ID:         l.ID,
		CampaignID: l.CampaignID,
		Name:       l.Name,
		Email:      l.Email,
		Phone:      l.Phone,
		Source:     l.Source,
		CreatedAt:  l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// HandleCreate registers a lead.
// POST /api/v1/leads
func (h *Handler) HandleCreate(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation error", err.Error())
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	created, err := h.service.CreateLead(c.Request.Context(), Lead{
		CampaignID: req.CampaignID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Source:     source,
	})
	if httpkit.HandleError(c, wrapRepoError(err)) {
		return
	}

	httpkit.Created(c, toLeadResponse(created))
}

// HandleGet fetches one lead.
// GET /api/v1/leads/:leadId
func (h *Handler) HandleGet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid lead ID", nil)
		return
	}

	lead, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, wrapRepoError(err)) {
		return
	}

	httpkit.OK(c, toLeadResponse(lead))
}

// HandleListByCampaign lists a campaign's leads.
// GET /api/v1/campaigns/:campaignId/leads
func (h *Handler) HandleListByCampaign(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("campaignId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid campaign ID", nil)
		return
	}

	list, err := h.repo.ListByCampaign(c.Request.Context(), campaignID)
	if httpkit.HandleError(c, wrapRepoError(err)) {
		return
	}

	out := make([]LeadResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLeadResponse(l))
	}
	httpkit.OK(c, out)
}

func wrapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrLeadNotFound) {
		return apperr.NotFound("lead not found")
	}
	return apperr.Wrap(apperr.KindInternal, "lead storage failed", err)
}
