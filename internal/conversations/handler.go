package conversations

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mailmind_backend/platform/apperr"
	"mailmind_backend/platform/httpkit"
)

// Handler handles conversation HTTP requests.
type Handler struct {
	repo *Repository
}

// NewHandler creates a new conversations handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ConversationResponse is the API representation of a conversation.
type ConversationResponse struct {
	ID           uuid.UUID `json:"id"`
	LeadID       uuid.UUID `json:"leadId"`
	CampaignID   uuid.UUID `json:"campaignId"`
	Status       string    `json:"status"`
	HandedOverAt *string   `json:"handedOverAt,omitempty"`
	CreatedAt    string    `json:"createdAt"`
}

// MessageResponse is the API representation of a message.
type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Direction string    `json:"direction"`
	Sender    string    `json:"sender,omitempty"`
	Body      string    `json:"body"`
	CreatedAt string    `json:"createdAt"`
}

func toConversationResponse(c Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:         c.ID,
		LeadID:     c.LeadID,
		CampaignID: c.CampaignID,
		Status:     c.Status,
		CreatedAt:  formatTime(c.CreatedAt),
	}
	if c.HandedOverAt != nil {
		s := formatTime(*c.HandedOverAt)
		resp.HandedOverAt = &s
	}
	return resp
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// HandleGet fetches one conversation.
// GET /api/v1/conversations/:conversationId
func (h *Handler) HandleGet(c *gin.Context) {
	id, ok := parseConversationID(c)
	if !ok {
		return
	}

	conv, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, wrapRepoError(err)) {
		return
	}

	httpkit.OK(c, toConversationResponse(conv))
}

// HandleListByLead lists a lead's conversations.
// GET /api/v1/leads/:leadId/conversations
func (h *Handler) HandleListByLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid lead ID", nil)
		return
	}

	list, err := h.repo.ListByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, wrapRepoError(err)) {
		return
	}

	out := make([]ConversationResponse, 0, len(list))
	for _, conv := range list {
		out = append(out, toConversationResponse(conv))
	}
	httpkit.OK(c, out)
}

// HandleListMessages lists a conversation's messages in order.
// GET /api/v1/conversations/:conversationId/messages
func (h *Handler) HandleListMessages(c *gin.Context) {
	id, ok := parseConversationID(c)
	if !ok {
		return
	}

	messages, err := h.repo.ListMessages(c.Request.Context(), id)
	if httpkit.HandleError(c, wrapRepoError(err)) {
		return
	}

	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, MessageResponse{
			ID:        m.ID,
			Direction: m.Direction,
			Sender:    m.Sender,
			Body:      m.Body,
			CreatedAt: formatTime(m.CreatedAt),
		})
	}
	httpkit.OK(c, out)
}

func parseConversationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid conversation ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func wrapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConversationNotFound) {
		return apperr.NotFound("conversation not found")
	}
	return apperr.Wrap(apperr.KindInternal, "conversation storage failed", err)
}
