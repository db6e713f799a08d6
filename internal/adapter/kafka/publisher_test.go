package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/polkiloo/paygate/internal/config"
	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/test"
)

type writerStub struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *writerStub) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *writerStub) Close() error {
	w.closed = true
	return nil
}

func TestPublishPaidWritesKeyedMessages(t *testing.T) {
	w := &writerStub{}
	pub := &KafkaPublisher{writer: w}
	paidAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	orders := []model.Order{
		{ID: "ord_1", ProductID: "p1", Quantity: 2, CustomerEmail: "a@example.com", CheckoutSessionID: "cs_1", PaymentIntentID: "pi_1", PaidAt: paidAt},
		{ID: "ord_2", ProductID: "p2", Quantity: 1, CustomerEmail: "b@example.com", CheckoutSessionID: "cs_2", PaidAt: paidAt},
	}
	if err := pub.PublishPaid(context.Background(), orders...); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(w.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(w.messages))
	}
	if string(w.messages[0].Key) != "ord_1" {
		t.Fatalf("unexpected key %q", w.messages[0].Key)
	}

	var event OrderPaidEvent
	if err := json.Unmarshal(w.messages[0].Value, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != EventOrderPaid || event.OrderID != "ord_1" || event.Quantity != 2 || event.PaymentIntentID != "pi_1" {
		t.Fatalf("unexpected event %+v", event)
	}

	var raw map[string]any
	_ = json.Unmarshal(w.messages[1].Value, &raw)
	if _, ok := raw["payment_intent_id"]; ok {
		t.Fatal("expected empty payment intent to be omitted")
	}
}

func TestPublishPaidNoOrders(t *testing.T) {
	w := &writerStub{err: errors.New("should not be called")}
	if err := (&KafkaPublisher{writer: w}).PublishPaid(context.Background()); err != nil {
		t.Fatalf("expected nil for empty batch, got %v", err)
	}
}

func TestPublishPaidPropagatesWriterError(t *testing.T) {
	boom := errors.New("broker down")
	pub := &KafkaPublisher{writer: &writerStub{err: boom}}
	if err := pub.PublishPaid(context.Background(), model.Order{ID: "ord_1"}); !errors.Is(err, boom) {
		t.Fatalf("expected broker error, got %v", err)
	}
}

func TestCloseClosesWriter(t *testing.T) {
	w := &writerStub{}
	if err := (&KafkaPublisher{writer: w}).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !w.closed {
		t.Fatal("expected writer to be closed")
	}
}

func TestNewPublisherDisabledWithoutBrokers(t *testing.T) {
	lc := &test.LifecycleRecorder{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	pub := newPublisher(publisherParams{Lifecycle: lc, Config: &config.Config{}, Logger: logger})
	if _, ok := pub.(NopPublisher); !ok {
		t.Fatalf("expected NopPublisher, got %T", pub)
	}
	if len(lc.Hooks) != 0 {
		t.Fatalf("expected no hooks, got %d", len(lc.Hooks))
	}
}

func TestNewPublisherRegistersCloseHook(t *testing.T) {
	lc := &test.LifecycleRecorder{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "orders.paid"}
	pub := newPublisher(publisherParams{Lifecycle: lc, Config: cfg, Logger: logger})
	kp, ok := pub.(*KafkaPublisher)
	if !ok {
		t.Fatalf("expected *KafkaPublisher, got %T", pub)
	}
	writer, ok := kp.writer.(*kafkago.Writer)
	if !ok || writer.Topic != "orders.paid" {
		t.Fatalf("unexpected writer %#v", kp.writer)
	}
	if len(lc.Hooks) != 1 || lc.Hooks[0].OnStop == nil {
		t.Fatalf("expected one stop hook, got %d", len(lc.Hooks))
	}
	if err := lc.Hooks[0].OnStop(context.Background()); err != nil {
		t.Fatalf("stop hook: %v", err)
	}
}
