package ids

import "go.uber.org/fx"

// Module provides the shared id Generator.
var Module = fx.Provide(NewGenerator)
