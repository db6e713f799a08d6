package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/paygate/internal/adapter/kafka"
	"github.com/polkiloo/paygate/internal/adapter/stripe"
	"github.com/polkiloo/paygate/internal/app"
	"github.com/polkiloo/paygate/internal/config"
	"github.com/polkiloo/paygate/internal/logger"
	"github.com/polkiloo/paygate/internal/metrics"
	"github.com/polkiloo/paygate/internal/pkg/ids"
	"github.com/polkiloo/paygate/internal/pkg/signature"
	"github.com/polkiloo/paygate/internal/pkg/token"
	"github.com/polkiloo/paygate/internal/server/http/handlers"
	"github.com/polkiloo/paygate/internal/server/http/router"
	"github.com/polkiloo/paygate/internal/storage"
	"github.com/polkiloo/paygate/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		token.Module,
		signature.Module,
		ids.Module,
		storage.Module,
		stripe.Module,
		kafka.Module,
		usecase.Module,
		fx.Provide(func(f *app.PaymentFacade) handlers.PaymentFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
