// Package storage selects the configured order store and exposes its repositories.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/paygate/internal/config"
	"github.com/polkiloo/paygate/internal/domain/repository"
	"github.com/polkiloo/paygate/internal/storage/postgres"
	"github.com/polkiloo/paygate/internal/storage/sqlite"
)

// Module wires the selected storage backend and repository adapters.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.ProductRepository { return f.Products() },
		func(f repository.Factory) repository.EventRepository { return f.Events() },
		func(f repository.Factory) repository.OrderRepository { return f.Orders() },
	),
	fx.Invoke(registerLifecycle),
)

type factoryParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

var (
	openPostgres = func(ctx context.Context, dsn string, logger *slog.Logger) (repository.Factory, error) {
		s, err := postgres.New(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	openSQLite = func(ctx context.Context, path string, logger *slog.Logger) (repository.Factory, error) {
		s, err := sqlite.Open(ctx, path, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
)

func newFactory(p factoryParams) (repository.Factory, error) {
	switch p.Config.StorageDriver {
	case config.StorageDriverPostgres, "":
		return openPostgres(p.Ctx, p.Config.DatabaseURI, p.Logger)
	case config.StorageDriverSQLite:
		return openSQLite(p.Ctx, p.Config.DatabaseURI, p.Logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", p.Config.StorageDriver)
	}
}

func registerLifecycle(lc fx.Lifecycle, factory repository.Factory, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			factory.Close()
			logger.Info("storage closed")
			return nil
		},
	})
}
