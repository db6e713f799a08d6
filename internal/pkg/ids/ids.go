package ids

import (
	"fmt"

	nanoid "github.com/jaevor/go-nanoid"
)

// Prefixes for identifiers minted by the service.
const (
	PrefixOrder       = "ord_"
	PrefixStatusEvent = "ose_"
)

const idLength = 21

// Generator mints prefixed, URL-safe identifiers.
type Generator struct {
	next func() string
}

// NewGenerator builds a nanoid backed Generator.
func NewGenerator() (*Generator, error) {
	next, err := nanoid.Standard(idLength)
	if err != nil {
		return nil, fmt.Errorf("init nanoid: %w", err)
	}
	return &Generator{next: next}, nil
}

// New returns prefix followed by a fresh random id.
func (g *Generator) New(prefix string) string {
	return prefix + g.next()
}
