package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/paygate/internal/server/http/dto"
)

// CheckoutHandler starts hosted checkout sessions.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Create handles POST /api/checkout/session.
func (h *CheckoutHandler) Create(c *gin.Context) {
	if err := h.facade.CheckoutConfigured(); err != nil {
		respondError(c, err, "")
		return
	}

	var body dto.CheckoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msgInvalidJSON})
		return
	}
	req, err := body.ToModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	intent, err := h.facade.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, msgProductNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{CheckoutURL: intent.CheckoutURL})
}

// Preflight answers CORS OPTIONS requests; headers come from middleware.
func (h *CheckoutHandler) Preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
