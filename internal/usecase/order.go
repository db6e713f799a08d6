package usecase

import (
	"context"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/paygate/internal/domain/errors"
	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/domain/repository"
)

// OrderUseCase exposes order status lookups and notification bookkeeping.
type OrderUseCase struct {
	orders repository.OrderRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders}
}

// Status resolves an order and its audit trail by correlation token.
func (u *OrderUseCase) Status(ctx context.Context, token string) (*model.OrderDetails, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: status token is required", domainErrors.ErrInvalidRequest)
	}

	order, err := u.orders.GetByStatusToken(ctx, token)
	if err != nil {
		return nil, err
	}

	history, err := u.orders.ListStatusEvents(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &model.OrderDetails{Order: *order, History: history}, nil
}

// SelectBatchForNotification returns paid orders not yet announced downstream.
func (u *OrderUseCase) SelectBatchForNotification(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.SelectBatchForNotification(ctx, limit)
}

// MarkNotified records that the paid order has been announced.
func (u *OrderUseCase) MarkNotified(ctx context.Context, orderID string) error {
	return u.orders.MarkNotified(ctx, orderID)
}
