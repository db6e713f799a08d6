package signature

import (
	"go.uber.org/fx"

	"github.com/polkiloo/paygate/internal/config"
)

// Module provides the webhook Verifier built from configuration.
var Module = fx.Provide(newVerifier)

type verifierParams struct {
	fx.In

	Config *config.Config
}

func newVerifier(p verifierParams) *Verifier {
	return NewVerifier(p.Config.WebhookSecrets, p.Config.SignatureTolerance)
}
