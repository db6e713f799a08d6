package dto

import "github.com/polkiloo/paygate/internal/domain/model"

// ProductResponse describes a catalog entry.
type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	ImageURL    string `json:"image_url,omitempty"`
}

// ProductsResponse wraps the listing.
type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func NewProductsResponse(products []model.Product) ProductsResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			PriceCents:  p.PriceCents,
			Currency:    p.Currency,
			ImageURL:    p.ImageURL,
		})
	}
	return ProductsResponse{Products: out}
}
