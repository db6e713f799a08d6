package usecase

import (
	"math"
	"strconv"
	"strings"
)

// Checkout quantity bounds.
const (
	MinQuantity     = 1
	MaxQuantity     = 10
	DefaultQuantity = 1
)

// ParseQuantity validates a raw checkout quantity. A nil value defaults to
// DefaultQuantity. Numeric text with an integral value inside
// [MinQuantity, MaxQuantity] is accepted, so "2", "2.0" and "1e1" pass
// while "2.5", "abc" and "" do not.
func ParseQuantity(raw *string) (int, bool) {
	if raw == nil {
		return DefaultQuantity, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || f < MinQuantity || f > MaxQuantity {
		return 0, false
	}
	return int(f), true
}

// ParseMetadataQuantity reads the quantity echoed back in session metadata.
// Missing values default to DefaultQuantity; anything other than a positive
// integer is rejected.
func ParseMetadataQuantity(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultQuantity, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
