package handlers

import (
	"context"

	"github.com/polkiloo/paygate/internal/domain/model"
)

// CheckoutFacade opens processor checkout sessions.
type CheckoutFacade interface {
	CheckoutConfigured() error
	CreateCheckout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutIntent, error)
}

// WebhookFacade ingests signed processor notifications.
type WebhookFacade interface {
	ReceiveWebhook(ctx context.Context, header string, body []byte) (model.WebhookResult, error)
}

// CatalogFacade lists products offered for checkout.
type CatalogFacade interface {
	Products(ctx context.Context) ([]model.Product, error)
}

// OrderFacade resolves orders by correlation token.
type OrderFacade interface {
	OrderStatus(ctx context.Context, token string) (*model.OrderDetails, error)
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// PaymentFacade aggregates the full set of operations used across handlers.
type PaymentFacade interface {
	CheckoutFacade
	WebhookFacade
	CatalogFacade
	OrderFacade
	HealthFacade
}
