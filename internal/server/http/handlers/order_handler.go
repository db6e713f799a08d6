package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/paygate/internal/server/http/dto"
)

// OrderHandler exposes order status lookups.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Status handles GET /api/orders/status/:token.
func (h *OrderHandler) Status(c *gin.Context) {
	details, err := h.facade.OrderStatus(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err, msgOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderStatusResponse(details))
}
