package usecase

import (
	"context"

	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/domain/repository"
)

// CatalogUseCase serves the read-only product listing.
type CatalogUseCase struct {
	products repository.ProductRepository
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products}
}

// ListActive returns active products, newest first.
func (u *CatalogUseCase) ListActive(ctx context.Context) ([]model.Product, error) {
	products, err := u.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}
