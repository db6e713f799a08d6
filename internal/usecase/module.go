package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/paygate/internal/adapter/stripe"
	"github.com/polkiloo/paygate/internal/config"
	"github.com/polkiloo/paygate/internal/domain/repository"
	"github.com/polkiloo/paygate/internal/metrics"
	"github.com/polkiloo/paygate/internal/pkg/ids"
	"github.com/polkiloo/paygate/internal/pkg/signature"
	"github.com/polkiloo/paygate/internal/pkg/token"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newCheckoutUseCase,
	newWebhookUseCase,
	NewOrderUseCase,
	NewCatalogUseCase,
)

type checkoutParams struct {
	fx.In

	Config   *config.Config
	Products repository.ProductRepository
	Gateway  stripe.Client
	Tokens   *token.Generator
	Logger   *slog.Logger
}

func newCheckoutUseCase(p checkoutParams) *CheckoutUseCase {
	settings := CheckoutSettings{SecretKey: p.Config.StripeSecretKey, AppURL: p.Config.AppURL}
	return NewCheckoutUseCase(p.Products, p.Gateway, p.Tokens, settings, p.Logger)
}

type webhookParams struct {
	fx.In

	Verifier *signature.Verifier
	Events   repository.EventRepository
	Orders   repository.OrderRepository
	IDs      *ids.Generator
	Metrics  *metrics.Metrics `optional:"true"`
	Logger   *slog.Logger
}

func newWebhookUseCase(p webhookParams) *WebhookUseCase {
	return NewWebhookUseCase(p.Verifier, p.Events, p.Orders, p.IDs, p.Metrics, p.Logger)
}
