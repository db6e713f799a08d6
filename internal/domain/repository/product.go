package repository

import (
	"context"

	"github.com/polkiloo/paygate/internal/domain/model"
)

// ProductRepository provides read-only catalog access.
type ProductRepository interface {
	GetActive(ctx context.Context, id string) (*model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)
}
