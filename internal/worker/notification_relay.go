package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/metrics"
)

// RelayFacade exposes the subset of application functionality required by the relay.
type RelayFacade interface {
	OrdersForNotification(ctx context.Context, limit int) ([]model.Order, error)
	PublishPaid(ctx context.Context, order model.Order) error
	MarkNotified(ctx context.Context, orderID string) error
}

// NotificationRelay polls paid orders that were not announced yet and
// publishes them with a pool of workers. Delivery is at least once: an order
// is marked only after its message is accepted.
type NotificationRelay struct {
	facade       RelayFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	metrics      *metrics.Metrics
	logger       *slog.Logger

	inflight map[string]struct{}
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
}

// NewNotificationRelay constructs the relay worker pool. m may be nil.
func NewNotificationRelay(facade RelayFacade, pollInterval time.Duration, batchSize, workers int, m *metrics.Metrics, logger *slog.Logger) *NotificationRelay {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &NotificationRelay{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		metrics:      m,
		logger:       logger,
		inflight:     make(map[string]struct{}),
	}
}

// Start launches background processing. It is a no-op while the relay is
// already running; a stopped relay can be started again.
func (r *NotificationRelay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	jobs := make(chan model.Order, r.batchSize*r.workers)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx, jobs)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx, jobs)
}

// Stop waits for all workers to finish.
func (r *NotificationRelay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *NotificationRelay) dispatch(ctx context.Context, jobs chan<- model.Order) {
	defer r.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx, jobs)
		}
	}
}

func (r *NotificationRelay) fetchAndDispatch(ctx context.Context, jobs chan<- model.Order) {
	orders, err := r.facade.OrdersForNotification(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("fetch orders for notification failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		// still being published from a previous poll
		if !r.claim(order.ID) {
			continue
		}
		select {
		case <-ctx.Done():
			r.release(order.ID)
			return
		case jobs <- order:
		}
	}
}

func (r *NotificationRelay) claim(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[id]; busy {
		return false
	}
	r.inflight[id] = struct{}{}
	return true
}

func (r *NotificationRelay) release(id string) {
	r.mu.Lock()
	delete(r.inflight, id)
	r.mu.Unlock()
}

func (r *NotificationRelay) worker(ctx context.Context, jobs <-chan model.Order) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-jobs:
			if !ok {
				return
			}
			r.handleOrder(ctx, order)
		}
	}
}

func (r *NotificationRelay) handleOrder(ctx context.Context, order model.Order) {
	defer r.release(order.ID)

	if err := r.facade.PublishPaid(ctx, order); err != nil {
		r.count(metrics.OutcomeError)
		r.logger.Error("publish paid order failed", slog.String("order", order.ID), slog.String("error", err.Error()))
		return
	}

	if err := r.facade.MarkNotified(ctx, order.ID); err != nil {
		r.count(metrics.OutcomeError)
		r.logger.Error("mark order notified failed", slog.String("order", order.ID), slog.String("error", err.Error()))
		return
	}

	r.count(metrics.OutcomeOK)
	r.logger.Debug("paid order announced", slog.String("order", order.ID))
}

func (r *NotificationRelay) count(outcome string) {
	if r.metrics == nil {
		return
	}
	r.metrics.RelayPublished.WithLabelValues(outcome).Inc()
}
