package handover

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mailmind_backend/internal/campaigns"
	"mailmind_backend/internal/conversations"
	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/internal/handover/repository"
	"mailmind_backend/platform/apperr"
	"mailmind_backend/platform/httpkit"
)

// Handler exposes stored handover briefs and the dry-run evaluation to the
// rep-facing UI.
type Handler struct {
	repo    *repository.Repository
	service *Service
}

// NewHandler creates a new handover handler.
func NewHandler(repo *repository.Repository, service *Service) *Handler {
	return &Handler{repo: repo, service: service}
}

// BriefResponse is the API representation of a stored handover brief.
type BriefResponse struct {
	ID             uuid.UUID         `json:"id"`
	ConversationID uuid.UUID         `json:"conversationId"`
	LeadID         uuid.UUID         `json:"leadId"`
	CampaignID     uuid.UUID         `json:"campaignId"`
	Brief          domain.Brief      `json:"brief"`
	SalesBrief     domain.SalesBrief `json:"salesBrief"`
	TriggeredBy    string            `json:"triggeredBy"`
	Reason         string            `json:"reason"`
	Degraded       bool              `json:"degraded"`
	DeliveryStatus string            `json:"deliveryStatus"`
	Recipient      string            `json:"recipient,omitempty"`
	CreatedAt      string            `json:"createdAt"`
}

func toBriefResponse(sb repository.StoredBrief) BriefResponse {
	return BriefResponse{
		ID:             sb.ID,
		ConversationID: sb.ConversationID,
		LeadID:         sb.LeadID,
		CampaignID:     sb.CampaignID,
		Brief:          sb.Brief,
		SalesBrief:     sb.SalesBrief,
		TriggeredBy:    string(sb.TriggeredBy),
		Reason:         sb.Reason,
		Degraded:       sb.Degraded,
		DeliveryStatus: string(sb.DeliveryStatus),
		Recipient:      sb.Recipient,
		CreatedAt:      sb.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// HandleGetBrief fetches one stored brief.
// GET /api/v1/handover/briefs/:briefId
func (h *Handler) HandleGetBrief(c *gin.Context) {
	id, err := uuid.Parse(c.Param("briefId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid brief ID", nil)
		return
	}

	sb, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, wrapRepoError(err)) {
		return
	}

	httpkit.OK(c, toBriefResponse(sb))
}

// HandleGetLatestForConversation fetches a conversation's newest brief.
// GET /api/v1/conversations/:conversationId/handover-brief
func (h *Handler) HandleGetLatestForConversation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid conversation ID", nil)
		return
	}

	sb, err := h.repo.LatestByConversation(c.Request.Context(), id)
	if httpkit.HandleError(c, wrapRepoError(err)) {
		return
	}

	httpkit.OK(c, toBriefResponse(sb))
}

// HandleListByCampaign lists a campaign's handover briefs.
// GET /api/v1/campaigns/:campaignId/handover-briefs
func (h *Handler) HandleListByCampaign(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("campaignId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid campaign ID", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	list, err := h.repo.ListByCampaign(c.Request.Context(), campaignID, limit)
	if httpkit.HandleError(c, wrapRepoError(err)) {
		return
	}

	out := make([]BriefResponse, 0, len(list))
	for _, sb := range list {
		out = append(out, toBriefResponse(sb))
	}
	httpkit.OK(c, out)
}

// EvaluationResponse carries the dry-run decision preview.
type EvaluationResponse struct {
	ShouldHandover bool            `json:"shouldHandover"`
	Reason         string          `json:"reason"`
	TriggeredBy    string          `json:"triggeredBy"`
	Analysis       domain.Analysis `json:"analysis"`
}

// HandleEvaluate re-runs the keyword decision over a conversation without
// side effects, so trigger configuration can be previewed.
// POST /api/v1/conversations/:conversationId/handover/evaluate
func (h *Handler) HandleEvaluate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid conversation ID", nil)
		return
	}

	eval, err := h.service.EvaluateConversation(c.Request.Context(), id)
	if httpkit.HandleError(c, wrapEvaluateError(err)) {
		return
	}

	httpkit.OK(c, EvaluationResponse{
		ShouldHandover: eval.Decision.ShouldHandover,
		Reason:         eval.Decision.Reason,
		TriggeredBy:    string(eval.Decision.TriggeredBy),
		Analysis:       eval.Analysis,
	})
}

func wrapEvaluateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, conversations.ErrConversationNotFound) {
		return apperr.NotFound("conversation not found")
	}
	if errors.Is(err, campaigns.ErrCampaignNotFound) {
		return apperr.NotFound("campaign not found")
	}
	var typed *apperr.Error
	if errors.As(err, &typed) {
		return err
	}
	return apperr.Wrap(apperr.KindInternal, "evaluation failed", err)
}

func wrapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrBriefNotFound) {
		return apperr.NotFound("handover brief not found")
	}
	return apperr.Wrap(apperr.KindInternal, "handover brief storage failed", err)
}
