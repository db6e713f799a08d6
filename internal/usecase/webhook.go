package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/paygate/internal/domain/errors"
	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/domain/repository"
	"github.com/polkiloo/paygate/internal/metrics"
	"github.com/polkiloo/paygate/internal/pkg/ids"
	"github.com/polkiloo/paygate/internal/pkg/signature"
)

// Reasons reported in WebhookResult.Ignored.
const (
	IgnoredNotPaid       = "not_paid"
	IgnoredUnhandledType = "unhandled_event_type"
)

const (
	fallbackCustomerEmail = "unknown@example.com"
	paymentReceivedNote   = "Payment received"
	systemActor           = "system"
	metadataProductID     = "product_id"
	metadataQuantity      = "quantity"
	metadataStatusToken   = "status_token"
)

// SignatureVerifier authenticates a raw webhook body.
type SignatureVerifier interface {
	Verify(header string, body []byte) error
}

// IDGenerator mints prefixed identifiers.
type IDGenerator interface {
	New(prefix string) string
}

type eventHandler func(ctx context.Context, event model.WebhookEvent) (model.WebhookResult, error)

// WebhookUseCase verifies processor deliveries and applies each event at most once.
type WebhookUseCase struct {
	verifier SignatureVerifier
	events   repository.EventRepository
	orders   repository.OrderRepository
	ids      IDGenerator
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
	handlers map[string]eventHandler
}

// NewWebhookUseCase constructs WebhookUseCase. m may be nil.
func NewWebhookUseCase(verifier SignatureVerifier, events repository.EventRepository, orders repository.OrderRepository, idGen IDGenerator, m *metrics.Metrics, logger *slog.Logger) *WebhookUseCase {
	u := &WebhookUseCase{
		verifier: verifier,
		events:   events,
		orders:   orders,
		ids:      idGen,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
	u.handlers = map[string]eventHandler{
		model.EventCheckoutSessionCompleted:             u.handleSessionPaid,
		model.EventCheckoutSessionAsyncPaymentSucceeded: u.handleSessionPaid,
	}
	return u
}

// Receive authenticates body against the signature header, decodes the event
// and processes it.
func (u *WebhookUseCase) Receive(ctx context.Context, header string, body []byte) (model.WebhookResult, error) {
	if err := u.verifier.Verify(header, body); err != nil {
		u.countSignatureFailure(err)
		if errors.Is(err, signature.ErrNoSecrets) {
			return model.WebhookResult{}, fmt.Errorf("%w: %v", domainErrors.ErrMisconfigured, err)
		}
		u.logger.Warn("webhook signature rejected", slog.Any("error", err))
		return model.WebhookResult{}, err
	}

	var event model.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return model.WebhookResult{}, fmt.Errorf("%w: decode event: %v", domainErrors.ErrInvalidRequest, err)
	}

	return u.Process(ctx, event)
}

// Process applies a verified event. Redeliveries of a recorded event id are
// acknowledged without side effects.
func (u *WebhookUseCase) Process(ctx context.Context, event model.WebhookEvent) (model.WebhookResult, error) {
	if event.ID == "" {
		return model.WebhookResult{}, fmt.Errorf("%w: event id is required", domainErrors.ErrInvalidRequest)
	}

	processed, err := u.events.IsProcessed(ctx, event.ID)
	if err != nil {
		u.count(event.Type, metrics.OutcomeError)
		return model.WebhookResult{}, fmt.Errorf("check processed event: %w", err)
	}
	if processed {
		u.count(event.Type, metrics.OutcomeDeduped)
		return model.WebhookResult{Received: true, Deduped: true}, nil
	}

	handler, ok := u.handlers[event.Type]
	if !ok {
		return u.ignore(ctx, event, IgnoredUnhandledType)
	}

	result, err := handler(ctx, event)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, domainErrors.ErrInvalidEventMetadata) || errors.Is(err, domainErrors.ErrInvalidRequest) {
			outcome = metrics.OutcomeRejected
		}
		u.count(event.Type, outcome)
		return model.WebhookResult{}, err
	}
	return result, nil
}

func (u *WebhookUseCase) ignore(ctx context.Context, event model.WebhookEvent, reason string) (model.WebhookResult, error) {
	if err := u.events.MarkProcessed(ctx, event.ID); err != nil {
		u.count(event.Type, metrics.OutcomeError)
		return model.WebhookResult{}, fmt.Errorf("mark event processed: %w", err)
	}
	u.count(event.Type, metrics.OutcomeIgnored)
	u.logger.Info("webhook event ignored",
		slog.String("event_id", event.ID),
		slog.String("type", event.Type),
		slog.String("reason", reason),
	)
	return model.WebhookResult{Received: true, Ignored: reason}, nil
}

func (u *WebhookUseCase) handleSessionPaid(ctx context.Context, event model.WebhookEvent) (model.WebhookResult, error) {
	var session model.CheckoutSession
	if len(event.Data.Object) > 0 {
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return model.WebhookResult{}, fmt.Errorf("%w: decode checkout session: %v", domainErrors.ErrInvalidRequest, err)
		}
	}

	if session.PaymentStatus != model.PaymentStatusPaid {
		return u.ignore(ctx, event, IgnoredNotPaid)
	}

	order, err := u.orderFromSession(session)
	if err != nil {
		u.logger.Warn("webhook session metadata rejected",
			slog.String("event_id", event.ID),
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
		return model.WebhookResult{}, err
	}

	entry := model.OrderStatusEvent{
		ID:        u.ids.New(ids.PrefixStatusEvent),
		OrderID:   order.ID,
		Status:    model.OrderStatusPaid,
		Note:      paymentReceivedNote,
		Actor:     systemActor,
		CreatedAt: order.PaidAt,
	}

	created, err := u.orders.CreatePaid(ctx, order, entry, event.ID)
	if err != nil {
		return model.WebhookResult{}, fmt.Errorf("create paid order: %w", err)
	}

	if created {
		u.logger.Info("order paid",
			slog.String("event_id", event.ID),
			slog.String("order_id", order.ID),
			slog.String("session_id", order.CheckoutSessionID),
		)
	} else {
		u.logger.Info("order already recorded for session",
			slog.String("event_id", event.ID),
			slog.String("session_id", order.CheckoutSessionID),
		)
	}
	u.count(event.Type, metrics.OutcomeOK)
	return model.WebhookResult{Received: true}, nil
}

func (u *WebhookUseCase) orderFromSession(session model.CheckoutSession) (model.Order, error) {
	productID := strings.TrimSpace(session.Metadata[metadataProductID])
	statusToken := strings.TrimSpace(session.Metadata[metadataStatusToken])
	if productID == "" || statusToken == "" {
		return model.Order{}, fmt.Errorf("%w: product_id and status_token are required", domainErrors.ErrInvalidEventMetadata)
	}
	if session.ID == "" {
		return model.Order{}, fmt.Errorf("%w: checkout session id is required", domainErrors.ErrInvalidEventMetadata)
	}

	quantity, ok := ParseMetadataQuantity(session.Metadata[metadataQuantity])
	if !ok {
		return model.Order{}, fmt.Errorf("%w: quantity must be a positive integer", domainErrors.ErrInvalidEventMetadata)
	}

	return model.Order{
		ID:                u.ids.New(ids.PrefixOrder),
		ProductID:         productID,
		CustomerEmail:     customerEmail(session),
		Quantity:          quantity,
		Status:            model.OrderStatusPaid,
		StatusToken:       statusToken,
		CheckoutSessionID: session.ID,
		PaymentIntentID:   session.PaymentIntentID(),
		PaidAt:            u.now().UTC(),
	}, nil
}

func customerEmail(session model.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	if session.CustomerEmail != "" {
		return session.CustomerEmail
	}
	return fallbackCustomerEmail
}

func (u *WebhookUseCase) count(eventType, outcome string) {
	if u.metrics == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	u.metrics.WebhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (u *WebhookUseCase) countSignatureFailure(err error) {
	if u.metrics == nil {
		return
	}
	reason := "mismatch"
	switch {
	case errors.Is(err, signature.ErrMalformedHeader):
		reason = "malformed"
	case errors.Is(err, signature.ErrSignatureExpired):
		reason = "expired"
	case errors.Is(err, signature.ErrNoSecrets):
		reason = "unconfigured"
	}
	u.metrics.SignatureFailures.WithLabelValues(reason).Inc()
}
