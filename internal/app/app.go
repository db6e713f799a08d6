package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/paygate/internal/adapter/kafka"
	"github.com/polkiloo/paygate/internal/config"
	"github.com/polkiloo/paygate/internal/domain/repository"
	"github.com/polkiloo/paygate/internal/metrics"
	"github.com/polkiloo/paygate/internal/usecase"
	"github.com/polkiloo/paygate/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newPaymentFacade,
		newHTTPServer,
		newNotificationRelay,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Checkout  *usecase.CheckoutUseCase
	Webhook   *usecase.WebhookUseCase
	Orders    *usecase.OrderUseCase
	Catalog   *usecase.CatalogUseCase
	Publisher kafka.Publisher
	Storage   repository.Factory
	Metrics   *metrics.Metrics `optional:"true"`
}

func newPaymentFacade(p facadeParams) *PaymentFacade {
	return NewPaymentFacade(p.Checkout, p.Webhook, p.Orders, p.Catalog, p.Publisher, p.Storage, p.Metrics)
}

const readHeaderTimeout = 10 * time.Second

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

type workerParams struct {
	fx.In

	Facade  *PaymentFacade
	Config  *config.Config
	Metrics *metrics.Metrics `optional:"true"`
	Logger  *slog.Logger
}

// newNotificationRelay returns nil when no Kafka brokers are configured.
func newNotificationRelay(p workerParams) *worker.NotificationRelay {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("paid order relay disabled: no kafka brokers configured")
		return nil
	}
	return worker.NewNotificationRelay(
		p.Facade,
		p.Config.NotifyPollInterval,
		p.Config.NotifyBatchSize,
		p.Config.WorkerPoolSize,
		p.Metrics,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Relay      *worker.NotificationRelay
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting paygate", slog.String("addr", p.Server.Addr))
			if p.Relay != nil {
				// the start context ends once startup completes
				p.Relay.Start(context.WithoutCancel(ctx))
			}
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			if p.Relay != nil {
				p.Relay.Stop()
			}
			p.Logger.Info("paygate stopped")
			return nil
		},
	})
}
