package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/paygate/internal/domain/errors"
	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/domain/repository"
)

const uniqueViolation = "23505"

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type productRepository struct {
	storage *Storage
}

type eventRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) Events() repository.EventRepository {
	return &eventRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
            currency TEXT NOT NULL DEFAULT 'usd',
            image_url TEXT,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS stripe_events_processed (
            id TEXT PRIMARY KEY,
            processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            product_id TEXT NOT NULL,
            customer_email TEXT NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            status_current TEXT NOT NULL,
            status_token TEXT NOT NULL,
            stripe_checkout_session_id TEXT NOT NULL UNIQUE,
            stripe_payment_intent_id TEXT,
            paid_at TIMESTAMPTZ NOT NULL,
            notified_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_status_events (
            id TEXT PRIMARY KEY,
            order_id TEXT NOT NULL REFERENCES orders(id),
            status TEXT NOT NULL,
            note TEXT NOT NULL,
            created_by TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_token ON orders(status_token)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_pending_notify ON orders(paid_at) WHERE notified_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_order_status_events_order ON order_status_events(order_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- ProductRepository implementation ---

const productColumns = `id, name, description, price_cents, currency, COALESCE(image_url, ''), active, created_at`

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.ImageURL, &p.Active, &p.CreatedAt)
}

func (r *productRepository) GetActive(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1 AND active`
	var p model.Product
	if err := scanProduct(r.storage.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE active ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- EventRepository implementation ---

func (r *eventRepository) IsProcessed(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM stripe_events_processed WHERE id=$1)`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *eventRepository) MarkProcessed(ctx context.Context, id string) error {
	_, err := r.storage.pool.Exec(ctx, insertProcessedQuery, id)
	return err
}

// --- OrderRepository implementation ---

const (
	insertOrderQuery = `INSERT INTO orders
            (id, product_id, customer_email, quantity, status_current, status_token,
             stripe_checkout_session_id, stripe_payment_intent_id, paid_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (stripe_checkout_session_id) DO NOTHING
        RETURNING id`
	insertStatusEventQuery = `INSERT INTO order_status_events (id, order_id, status, note, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	insertProcessedQuery = `INSERT INTO stripe_events_processed (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`
	orderColumns         = `id, product_id, customer_email, quantity, status_current, status_token,
        stripe_checkout_session_id, stripe_payment_intent_id, paid_at, notified_at`
)

func (r *orderRepository) CreatePaid(ctx context.Context, order model.Order, entry model.OrderStatusEvent, eventID string) (bool, error) {
	created := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, insertOrderQuery,
			order.ID, order.ProductID, order.CustomerEmail, order.Quantity, order.Status,
			order.StatusToken, order.CheckoutSessionID, nullable(order.PaymentIntentID), order.PaidAt,
		).Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// session already materialized
		case err != nil:
			return classify(err)
		default:
			created = true
			if _, err := tx.Exec(ctx, insertStatusEventQuery,
				entry.ID, id, entry.Status, entry.Note, entry.Actor, entry.CreatedAt,
			); err != nil {
				return classify(err)
			}
		}

		if _, err := tx.Exec(ctx, insertProcessedQuery, eventID); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func scanOrder(row pgx.Row, o *model.Order) error {
	var intent *string
	if err := row.Scan(&o.ID, &o.ProductID, &o.CustomerEmail, &o.Quantity, &o.Status, &o.StatusToken,
		&o.CheckoutSessionID, &intent, &o.PaidAt, &o.NotifiedAt); err != nil {
		return err
	}
	if intent != nil {
		o.PaymentIntentID = *intent
	}
	return nil
}

func (r *orderRepository) GetByStatusToken(ctx context.Context, token string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status_token=$1 ORDER BY paid_at LIMIT 1`
	var o model.Order
	if err := scanOrder(r.storage.pool.QueryRow(ctx, query, token), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) ListStatusEvents(ctx context.Context, orderID string) ([]model.OrderStatusEvent, error) {
	const query = `SELECT id, order_id, status, note, created_by, created_at
                   FROM order_status_events WHERE order_id=$1 ORDER BY created_at, id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderStatusEvent
	for rows.Next() {
		var e model.OrderStatusEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) SelectBatchForNotification(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
                   WHERE notified_at IS NULL
                   ORDER BY paid_at
                   LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) MarkNotified(ctx context.Context, orderID string) error {
	const query = `UPDATE orders SET notified_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domainErrors.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ repository.Factory = (*Storage)(nil)
