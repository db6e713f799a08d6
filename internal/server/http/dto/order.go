package dto

import (
	"time"

	"github.com/polkiloo/paygate/internal/domain/model"
)

// OrderStatusResponse describes an order found by its status token.
type OrderStatusResponse struct {
	OrderID       string                `json:"orderId"`
	ProductID     string                `json:"productId"`
	Quantity      int                   `json:"quantity"`
	CustomerEmail string                `json:"customerEmail"`
	Status        string                `json:"status"`
	PaidAt        time.Time             `json:"paidAt"`
	History       []StatusEventResponse `json:"history"`
}

// StatusEventResponse is one audit entry.
type StatusEventResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewOrderStatusResponse(details *model.OrderDetails) OrderStatusResponse {
	history := make([]StatusEventResponse, 0, len(details.History))
	for _, e := range details.History {
		history = append(history, StatusEventResponse{
			Status:    string(e.Status),
			Note:      e.Note,
			CreatedBy: e.Actor,
			CreatedAt: e.CreatedAt,
		})
	}
	o := details.Order
	return OrderStatusResponse{
		OrderID:       o.ID,
		ProductID:     o.ProductID,
		Quantity:      o.Quantity,
		CustomerEmail: o.CustomerEmail,
		Status:        string(o.Status),
		PaidAt:        o.PaidAt,
		History:       history,
	}
}
