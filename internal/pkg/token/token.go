package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// MinBytes is the smallest amount of entropy a correlation token carries.
const MinBytes = 24

// Generator produces unguessable correlation tokens that link a checkout
// session to the order materialized from its webhook.
type Generator struct {
	rand  io.Reader
	bytes int
}

// NewGenerator builds a Generator reading size bytes from r. A nil reader
// falls back to crypto/rand and sizes below MinBytes are raised to it.
func NewGenerator(r io.Reader, size int) *Generator {
	if r == nil {
		r = rand.Reader
	}
	if size < MinBytes {
		size = MinBytes
	}
	return &Generator{rand: r, bytes: size}
}

// Generate returns a fresh lowercase hex token.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, g.bytes)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("read token entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
