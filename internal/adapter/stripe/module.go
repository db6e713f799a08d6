package stripe

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/paygate/internal/config"
	"github.com/polkiloo/paygate/internal/metrics"
)

// Module exposes the processor client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.StripeAPIBase, p.Config.StripeSecretKey, p.Config.StripeTimeout, p.Logger, p.Metrics)
}
