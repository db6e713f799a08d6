// Package sqlite provides a single-file order store on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	domainErrors "github.com/polkiloo/paygate/internal/domain/errors"
	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/domain/repository"
)

// Store persists catalog, events and orders in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

type productRepository struct {
	store *Store
}

type eventRepository struct {
	store *Store
}

type orderRepository struct {
	store *Store
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database file at path and creates the schema when missing.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{db: db, logger: logger, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil && s.logger != nil {
		s.logger.Warn("close sqlite db", slog.Any("error", err))
	}
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepository{store: s}
}

func (s *Store) Events() repository.EventRepository {
	return &eventRepository{store: s}
}

func (s *Store) Orders() repository.OrderRepository {
	return &orderRepository{store: s}
}

// HealthCheck verifies the database handle is usable.
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
		   id TEXT PRIMARY KEY,
		   name TEXT NOT NULL,
		   description TEXT NOT NULL DEFAULT '',
		   price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
		   currency TEXT NOT NULL DEFAULT 'usd',
		   image_url TEXT,
		   active INTEGER NOT NULL DEFAULT 1,
		   created_at INTEGER NOT NULL
		 )`,
		`CREATE TABLE IF NOT EXISTS stripe_events_processed (
		   id TEXT PRIMARY KEY,
		   processed_at INTEGER NOT NULL
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
		   paid_at INTEGER NOT NULL,
		   notified_at INTEGER,
		   created_at INTEGER NOT NULL
		 )`,
		`CREATE TABLE IF NOT EXISTS order_status_events (
		   id TEXT PRIMARY KEY,
		   order_id TEXT NOT NULL REFERENCES orders(id),
		   status TEXT NOT NULL,
		   note TEXT NOT NULL,
		   created_by TEXT NOT NULL,
		   created_at INTEGER NOT NULL
		 )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_token ON orders(status_token)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_pending_notify ON orders(paid_at) WHERE notified_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_order_status_events_order ON order_status_events(order_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// WithinTransaction executes fn inside a transaction, committing when it returns nil.
func (s *Store) WithinTransaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, name, description, price_cents, currency, COALESCE(image_url, ''), active, created_at`

func scanProduct(row scanner, p *model.Product) error {
	var createdAt int64
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.ImageURL, &p.Active, &createdAt); err != nil {
		return err
	}
	p.CreatedAt = fromMillis(createdAt)
	return nil
}

func (r *productRepository) GetActive(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ? AND active`
	var p model.Product
	if err := scanProduct(r.store.db.QueryRowContext(ctx, query, id), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE active ORDER BY created_at DESC, id`
	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return result, nil
}

const insertProcessedQuery = `INSERT INTO stripe_events_processed (id, processed_at) VALUES (?, ?)
	ON CONFLICT (id) DO NOTHING`

func (r *eventRepository) IsProcessed(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.store.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM stripe_events_processed WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check processed event: %w", err)
	}
	return exists, nil
}

func (r *eventRepository) MarkProcessed(ctx context.Context, id string) error {
	if _, err := r.store.db.ExecContext(ctx, insertProcessedQuery, id, toMillis(r.store.now())); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

const orderColumns = `id, product_id, customer_email, quantity, status_current, status_token,
	stripe_checkout_session_id, stripe_payment_intent_id, paid_at, notified_at`

func (r *orderRepository) CreatePaid(ctx context.Context, order model.Order, entry model.OrderStatusEvent, eventID string) (bool, error) {
	created := false
	now := toMillis(r.store.now())
	err := r.store.WithinTransaction(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (`+orderColumns+`, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
			 ON CONFLICT (stripe_checkout_session_id) DO NOTHING
			 RETURNING id`,
			order.ID, order.ProductID, order.CustomerEmail, order.Quantity, string(order.Status),
			order.StatusToken, order.CheckoutSessionID, nullable(order.PaymentIntentID), toMillis(order.PaidAt), now,
		).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// session already materialized
		case err != nil:
			return classify(err)
		default:
			created = true
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO order_status_events (id, order_id, status, note, created_by, created_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				entry.ID, id, string(entry.Status), entry.Note, entry.Actor, toMillis(entry.CreatedAt),
			); err != nil {
				return classify(err)
			}
		}

		if _, err := tx.ExecContext(ctx, insertProcessedQuery, eventID, now); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("create paid order: %w", err)
	}
	return created, nil
}

func scanOrder(row scanner, o *model.Order) error {
	var (
		status     string
		intent     sql.NullString
		paidAt     int64
		notifiedAt sql.NullInt64
	)
	if err := row.Scan(&o.ID, &o.ProductID, &o.CustomerEmail, &o.Quantity, &status, &o.StatusToken,
		&o.CheckoutSessionID, &intent, &paidAt, &notifiedAt); err != nil {
		return err
	}
	o.Status = model.OrderStatus(status)
	o.PaymentIntentID = intent.String
	o.PaidAt = fromMillis(paidAt)
	if notifiedAt.Valid {
		t := fromMillis(notifiedAt.Int64)
		o.NotifiedAt = &t
	}
	return nil
}

func (r *orderRepository) GetByStatusToken(ctx context.Context, token string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status_token = ? ORDER BY paid_at LIMIT 1`
	var o model.Order
	if err := scanOrder(r.store.db.QueryRowContext(ctx, query, token), &o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *orderRepository) ListStatusEvents(ctx context.Context, orderID string) ([]model.OrderStatusEvent, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, order_id, status, note, created_by, created_at
		 FROM order_status_events WHERE order_id = ? ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	defer rows.Close()

	var result []model.OrderStatusEvent
	for rows.Next() {
		var (
			e         model.OrderStatusEvent
			status    string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &status, &e.Note, &e.Actor, &createdAt); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		e.Status = model.OrderStatus(status)
		e.CreatedAt = fromMillis(createdAt)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status events: %w", err)
	}
	return result, nil
}

func (r *orderRepository) SelectBatchForNotification(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE notified_at IS NULL
		ORDER BY paid_at, id
		LIMIT ?`
	rows, err := r.store.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending orders: %w", err)
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return result, nil
}

func (r *orderRepository) MarkNotified(ctx context.Context, orderID string) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE orders SET notified_at = ? WHERE id = ?`, toMillis(r.store.now()), orderID)
	if err != nil {
		return fmt.Errorf("mark order notified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark order notified: %w", err)
	}
	if affected == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func classify(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", domainErrors.ErrAlreadyExists, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ repository.Factory = (*Store)(nil)
