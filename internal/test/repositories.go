package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/paygate/internal/domain/errors"
	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/domain/repository"
)

// MemoryStore is an in-memory repository.Factory that enforces the same
// uniqueness rules as the SQL stores. Err fields inject failures.
type MemoryStore struct {
	mu sync.Mutex

	products  map[string]model.Product
	processed map[string]struct{}
	orders    map[string]model.Order
	bySession map[string]string
	history   []model.OrderStatusEvent

	IsProcessedErr   error
	MarkProcessedErr error
	CreatePaidErr    error
	HealthErr        error
	Closed           bool
}

// NewMemoryStore returns an empty store seeded with products.
func NewMemoryStore(products ...model.Product) *MemoryStore {
	s := &MemoryStore{
		products:  make(map[string]model.Product),
		processed: make(map[string]struct{}),
		orders:    make(map[string]model.Order),
		bySession: make(map[string]string),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *MemoryStore) Products() repository.ProductRepository { return s }

func (s *MemoryStore) Events() repository.EventRepository { return (*memoryEvents)(s) }

func (s *MemoryStore) Orders() repository.OrderRepository { return s }

// HealthCheck returns HealthErr.
func (s *MemoryStore) HealthCheck(context.Context) error { return s.HealthErr }

// Close marks the store closed.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	s.Closed = true
	s.mu.Unlock()
}

// GetActive returns an active product by id.
func (s *MemoryStore) GetActive(_ context.Context, id string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || !p.Active {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

// ListActive returns active products newest first.
func (s *MemoryStore) ListActive(context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Product
	for _, p := range s.products {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memoryEvents MemoryStore

func (e *memoryEvents) IsProcessed(_ context.Context, id string) (bool, error) {
	s := (*MemoryStore)(e)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IsProcessedErr != nil {
		return false, s.IsProcessedErr
	}
	_, ok := s.processed[id]
	return ok, nil
}

func (e *memoryEvents) MarkProcessed(_ context.Context, id string) error {
	s := (*MemoryStore)(e)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkProcessedErr != nil {
		return s.MarkProcessedErr
	}
	s.processed[id] = struct{}{}
	return nil
}

// CreatePaid applies the order, audit entry and processed mark atomically.
func (s *MemoryStore) CreatePaid(_ context.Context, order model.Order, entry model.OrderStatusEvent, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreatePaidErr != nil {
		return false, s.CreatePaidErr
	}

	created := false
	if _, exists := s.bySession[order.CheckoutSessionID]; !exists {
		s.orders[order.ID] = order
		s.bySession[order.CheckoutSessionID] = order.ID
		entry.OrderID = order.ID
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now()
		}
		s.history = append(s.history, entry)
		created = true
	}
	s.processed[eventID] = struct{}{}
	return created, nil
}

// GetByStatusToken finds an order by its correlation token.
func (s *MemoryStore) GetByStatusToken(_ context.Context, token string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.StatusToken == token {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListStatusEvents returns the audit trail for an order in insertion order.
func (s *MemoryStore) ListStatusEvents(_ context.Context, orderID string) ([]model.OrderStatusEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.OrderStatusEvent
	for _, h := range s.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

// SelectBatchForNotification returns orders not yet announced.
func (s *MemoryStore) SelectBatchForNotification(_ context.Context, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if o.NotifiedAt == nil {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkNotified stamps an order as announced.
func (s *MemoryStore) MarkNotified(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	now := time.Now()
	o.NotifiedAt = &now
	s.orders[orderID] = o
	return nil
}

// OrderCount returns the number of stored orders.
func (s *MemoryStore) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// HistoryCount returns the number of stored audit entries.
func (s *MemoryStore) HistoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// AllOrders returns a snapshot of stored orders.
func (s *MemoryStore) AllOrders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out
}

// IsMarked reports whether id was recorded as processed.
func (s *MemoryStore) IsMarked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[id]
	return ok
}

var _ repository.Factory = (*MemoryStore)(nil)
