package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/paygate/internal/domain/model"
)

// PaymentFacadeStub provides controllable behaviour for HTTP handlers.
type PaymentFacadeStub struct {
	ConfiguredErr error
	CheckoutFn    func(context.Context, model.CheckoutRequest) (*model.CheckoutIntent, error)
	WebhookFn     func(context.Context, string, []byte) (model.WebhookResult, error)
	ProductsFn    func(context.Context) ([]model.Product, error)
	StatusFn      func(context.Context, string) (*model.OrderDetails, error)
	HealthErr     error
}

// CheckoutConfigured returns the configured error.
func (s PaymentFacadeStub) CheckoutConfigured() error {
	return s.ConfiguredErr
}

// CreateCheckout delegates to CheckoutFn or returns a fixed redirect.
func (s PaymentFacadeStub) CreateCheckout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutIntent, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, req)
	}
	return &model.CheckoutIntent{SessionID: "cs_test", CheckoutURL: "https://checkout.example/cs_test"}, nil
}

// ReceiveWebhook delegates to WebhookFn or acknowledges the delivery.
func (s PaymentFacadeStub) ReceiveWebhook(ctx context.Context, header string, body []byte) (model.WebhookResult, error) {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, header, body)
	}
	return model.WebhookResult{Received: true}, nil
}

// Products delegates to ProductsFn or returns one product.
func (s PaymentFacadeStub) Products(ctx context.Context) ([]model.Product, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx)
	}
	return []model.Product{{ID: "p1", Name: "Poster", PriceCents: 500, Currency: "usd", Active: true}}, nil
}

// OrderStatus delegates to StatusFn or returns a paid order for token.
func (s PaymentFacadeStub) OrderStatus(ctx context.Context, token string) (*model.OrderDetails, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, token)
	}
	paidAt := time.Unix(0, 0).UTC()
	return &model.OrderDetails{
		Order: model.Order{ID: "ord_1", ProductID: "p1", Quantity: 1, Status: model.OrderStatusPaid, StatusToken: token, PaidAt: paidAt},
		History: []model.OrderStatusEvent{
			{ID: "ose_1", OrderID: "ord_1", Status: model.OrderStatusPaid, Note: "Payment received", Actor: "system", CreatedAt: paidAt},
		},
	}, nil
}

// Health returns the configured error.
func (s PaymentFacadeStub) Health(context.Context) error {
	return s.HealthErr
}

// RelayFacadeStub mimics relay interactions with the payment facade.
type RelayFacadeStub struct {
	Batches   [][]model.Order
	OrdersFn  func(context.Context, int) ([]model.Order, error)
	PublishFn func(context.Context, model.Order) error
	MarkFn    func(context.Context, string) error

	mu         sync.Mutex
	Published  []model.Order
	Notified   []string
	batchCalls int32
}

// Lock exposes internal mutex for external synchronization.
func (s *RelayFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *RelayFacadeStub) Unlock() { s.mu.Unlock() }

// OrdersForNotification returns batches from the configured queue.
func (s *RelayFacadeStub) OrdersForNotification(ctx context.Context, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.batchCalls, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// PublishPaid records the order unless PublishFn fails.
func (s *RelayFacadeStub) PublishPaid(ctx context.Context, order model.Order) error {
	if s.PublishFn != nil {
		if err := s.PublishFn(ctx, order); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Published = append(s.Published, order)
	return nil
}

// MarkNotified records the order id unless MarkFn fails.
func (s *RelayFacadeStub) MarkNotified(ctx context.Context, orderID string) error {
	if s.MarkFn != nil {
		if err := s.MarkFn(ctx, orderID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notified = append(s.Notified, orderID)
	return nil
}
