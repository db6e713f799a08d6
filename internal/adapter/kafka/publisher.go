package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/polkiloo/paygate/internal/domain/model"
)

// EventOrderPaid is the type carried by paid order notifications.
const EventOrderPaid = "order.paid"

// Publisher announces paid orders to downstream consumers.
type Publisher interface {
	PublishPaid(ctx context.Context, orders ...model.Order) error
	Close() error
}

// OrderPaidEvent is the JSON payload written for every paid order.
type OrderPaidEvent struct {
	Type              string    `json:"type"`
	OrderID           string    `json:"order_id"`
	ProductID         string    `json:"product_id"`
	Quantity          int       `json:"quantity"`
	CustomerEmail     string    `json:"customer_email"`
	CheckoutSessionID string    `json:"checkout_session_id"`
	PaymentIntentID   string    `json:"payment_intent_id,omitempty"`
	PaidAt            time.Time `json:"paid_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes order events to a Kafka topic keyed by order id.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher builds a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishPaid writes one message per order in a single batch.
func (k *KafkaPublisher) PublishPaid(ctx context.Context, orders ...model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	messages := make([]kafkago.Message, 0, len(orders))
	now := time.Now()
	for _, o := range orders {
		value, err := json.Marshal(newOrderPaidEvent(o))
		if err != nil {
			return fmt.Errorf("marshal order %s: %w", o.ID, err)
		}
		messages = append(messages, kafkago.Message{
			Key:   []byte(o.ID),
			Value: value,
			Time:  now,
		})
	}

	if err := k.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("write order events: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

func newOrderPaidEvent(o model.Order) OrderPaidEvent {
	return OrderPaidEvent{
		Type:              EventOrderPaid,
		OrderID:           o.ID,
		ProductID:         o.ProductID,
		Quantity:          o.Quantity,
		CustomerEmail:     o.CustomerEmail,
		CheckoutSessionID: o.CheckoutSessionID,
		PaymentIntentID:   o.PaymentIntentID,
		PaidAt:            o.PaidAt.UTC(),
	}
}

// NopPublisher discards events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishPaid(context.Context, ...model.Order) error { return nil }

func (NopPublisher) Close() error { return nil }
