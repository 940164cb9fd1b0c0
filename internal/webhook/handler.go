package webhook

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mailmind_backend/platform/httpkit"
	"mailmind_backend/platform/logger"
)

// Handler receives provider webhook calls.
type Handler struct {
	service *Service
	log     *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// HandleMailgunInbound processes one inbound email delivery.
// POST /api/v1/webhook/mailgun
//
// Status codes follow the provider's retry contract: 200 means accepted (or
// an already-seen redelivery), 406 tells the provider to stop retrying, and
// 5xx asks it to try again later.
func (h *Handler) HandleMailgunInbound(c *gin.Context) {
	in := InboundEmail{
		Sender:            strings.ToLower(strings.TrimSpace(c.PostForm("sender"))),
		From:              c.PostForm("from"),
		Recipient:         c.PostForm("recipient"),
		Subject:           c.PostForm("subject"),
		BodyPlain:         c.PostForm("body-plain"),
		BodyStripped:      c.PostForm("stripped-text"),
		ProviderMessageID: c.PostForm("Message-Id"),
	}

	if in.Sender == "" || in.Recipient == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing sender or recipient", nil)
		return
	}

	result, err := h.service.ProcessInbound(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, ErrUnknownCampaign) {
			// Not a campaign mailbox; a retry would not change that.
			c.JSON(http.StatusNotAcceptable, gin.H{"status": "rejected", "reason": "unknown recipient"})
			return
		}
		h.log.Error("inbound webhook processing failed", "recipient", in.Recipient, "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "processing failed", nil)
		return
	}

	if result.Duplicate {
		httpkit.OK(c, gin.H{"status": "duplicate", "conversationId": result.ConversationID})
		return
	}

	httpkit.OK(c, gin.H{
		"status":         "accepted",
		"conversationId": result.ConversationID,
		"messageId":      result.MessageID,
	})
}
