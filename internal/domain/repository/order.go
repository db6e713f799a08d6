package repository

import (
	"context"

	"github.com/polkiloo/paygate/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// CreatePaid stores the order, its first audit entry and the processed event id atomically.
	// An order already present for the same checkout session is reported as created=false
	// and still records the event id.
	CreatePaid(ctx context.Context, order model.Order, entry model.OrderStatusEvent, eventID string) (bool, error)
	GetByStatusToken(ctx context.Context, token string) (*model.Order, error)
	ListStatusEvents(ctx context.Context, orderID string) ([]model.OrderStatusEvent, error)
	SelectBatchForNotification(ctx context.Context, limit int) ([]model.Order, error)
	MarkNotified(ctx context.Context, orderID string) error
}
