package app

import (
	"context"
	"errors"

	"github.com/polkiloo/paygate/internal/adapter/kafka"
	domainErrors "github.com/polkiloo/paygate/internal/domain/errors"
	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/metrics"
	"github.com/polkiloo/paygate/internal/usecase"
)

// HealthChecker reports storage availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type PaymentFacade struct {
	checkout  *usecase.CheckoutUseCase
	webhook   *usecase.WebhookUseCase
	orders    *usecase.OrderUseCase
	catalog   *usecase.CatalogUseCase
	publisher kafka.Publisher
	health    HealthChecker
	metrics   *metrics.Metrics
}

func NewPaymentFacade(checkout *usecase.CheckoutUseCase, webhook *usecase.WebhookUseCase, orders *usecase.OrderUseCase, catalog *usecase.CatalogUseCase, publisher kafka.Publisher, health HealthChecker, m *metrics.Metrics) *PaymentFacade {
	return &PaymentFacade{
		checkout:  checkout,
		webhook:   webhook,
		orders:    orders,
		catalog:   catalog,
		publisher: publisher,
		health:    health,
		metrics:   m,
	}
}

func (f *PaymentFacade) CheckoutConfigured() error {
	return f.checkout.Configured()
}

func (f *PaymentFacade) CreateCheckout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutIntent, error) {
	intent, err := f.checkout.CreateIntent(ctx, req)
	f.countCheckout(err)
	return intent, err
}

func (f *PaymentFacade) ReceiveWebhook(ctx context.Context, header string, body []byte) (model.WebhookResult, error) {
	return f.webhook.Receive(ctx, header, body)
}

func (f *PaymentFacade) Products(ctx context.Context) ([]model.Product, error) {
	return f.catalog.ListActive(ctx)
}

func (f *PaymentFacade) OrderStatus(ctx context.Context, token string) (*model.OrderDetails, error) {
	return f.orders.Status(ctx, token)
}

func (f *PaymentFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func (f *PaymentFacade) OrdersForNotification(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.SelectBatchForNotification(ctx, limit)
}

func (f *PaymentFacade) PublishPaid(ctx context.Context, order model.Order) error {
	return f.publisher.PublishPaid(ctx, order)
}

func (f *PaymentFacade) MarkNotified(ctx context.Context, orderID string) error {
	return f.orders.MarkNotified(ctx, orderID)
}

func (f *PaymentFacade) countCheckout(err error) {
	if f.metrics == nil {
		return
	}
	outcome := metrics.OutcomeOK
	var upstream *domainErrors.UpstreamError
	switch {
	case err == nil:
	case errors.As(err, &upstream):
		outcome = metrics.OutcomeError
	case errors.Is(err, domainErrors.ErrInvalidRequest), errors.Is(err, domainErrors.ErrNotFound):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	f.metrics.CheckoutRequests.WithLabelValues(outcome).Inc()
}
