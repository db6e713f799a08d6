package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/paygate/internal/server/http/dto"
)

// MaxWebhookBody bounds the raw notification body.
const MaxWebhookBody = 1 << 20

// WebhookHandler receives signed processor notifications.
type WebhookHandler struct {
	facade          WebhookFacade
	signatureHeader string
}

// NewWebhookHandler constructs WebhookHandler reading the signature from header.
func NewWebhookHandler(facade WebhookFacade, header string) *WebhookHandler {
	return &WebhookHandler{facade: facade, signatureHeader: header}
}

// Receive handles POST /api/webhooks/stripe. The body is passed on byte for
// byte because the signature covers the exact payload.
func (h *WebhookHandler) Receive(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBody)
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unreadable body"})
		return
	}

	result, err := h.facade.ReceiveWebhook(c.Request.Context(), c.GetHeader(h.signatureHeader), body)
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, result)
}
