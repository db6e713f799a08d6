package repository

import "context"

// EventRepository records processor event ids that have been fully handled.
type EventRepository interface {
	IsProcessed(ctx context.Context, id string) (bool, error)
	// MarkProcessed is a no-op for ids that are already recorded.
	MarkProcessed(ctx context.Context, id string) error
}
