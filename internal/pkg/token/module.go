package token

import "go.uber.org/fx"

// Module provides a crypto/rand backed Generator.
var Module = fx.Provide(newDefaultGenerator)

func newDefaultGenerator() *Generator {
	return NewGenerator(nil, MinBytes)
}
