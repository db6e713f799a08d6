package model

import "time"

// OrderStatus describes fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusPaid OrderStatus = "PAID"
)

// Order is materialized from a paid checkout session.
type Order struct {
	ID                string
	ProductID         string
	CustomerEmail     string
	Quantity          int
	Status            OrderStatus
	StatusToken       string
	CheckoutSessionID string
	PaymentIntentID   string
	PaidAt            time.Time
	NotifiedAt        *time.Time
}

// OrderStatusEvent is an append-only audit entry written with each status transition.
type OrderStatusEvent struct {
	ID        string
	OrderID   string
	Status    OrderStatus
	Note      string
	Actor     string
	CreatedAt time.Time
}

// OrderDetails bundles an order with its audit trail.
type OrderDetails struct {
	Order   Order
	History []OrderStatusEvent
}
