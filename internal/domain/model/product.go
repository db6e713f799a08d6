package model

import "time"

// Product is a catalog entry offered for checkout. Prices are in minor currency units.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	ImageURL    string
	Active      bool
	CreatedAt   time.Time
}
