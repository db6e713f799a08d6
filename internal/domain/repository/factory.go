package repository

import "context"

// Factory describes access to different domain repositories backed by one store.
type Factory interface {
	Products() ProductRepository
	Events() EventRepository
	Orders() OrderRepository
	HealthCheck(ctx context.Context) error
	Close()
}
