package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/polkiloo/paygate/internal/adapter/stripe"
	domainErrors "github.com/polkiloo/paygate/internal/domain/errors"
	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/domain/repository"
)

const defaultCurrency = "usd"

// TokenGenerator issues correlation tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

// CheckoutSettings carries the processor credentials and public base URL.
type CheckoutSettings struct {
	SecretKey string
	AppURL    string
}

// CheckoutUseCase creates hosted checkout sessions at the payment processor.
type CheckoutUseCase struct {
	products repository.ProductRepository
	gateway  stripe.Client
	tokens   TokenGenerator
	settings CheckoutSettings
	logger   *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(products repository.ProductRepository, gateway stripe.Client, tokens TokenGenerator, settings CheckoutSettings, logger *slog.Logger) *CheckoutUseCase {
	settings.AppURL = strings.TrimRight(settings.AppURL, "/")
	return &CheckoutUseCase{
		products: products,
		gateway:  gateway,
		tokens:   tokens,
		settings: settings,
		logger:   logger,
	}
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateIntent validates the request, mints a correlation token and opens a
// checkout session carrying it in metadata.
func (u *CheckoutUseCase) CreateIntent(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutIntent, error) {
	if err := u.Configured(); err != nil {
		return nil, err
	}

	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return nil, fmt.Errorf("%w: productId is required", domainErrors.ErrInvalidRequest)
	}

	quantity, ok := ParseQuantity(req.Quantity)
	if !ok {
		return nil, fmt.Errorf("%w: quantity must be an integer from %d to %d", domainErrors.ErrInvalidRequest, MinQuantity, MaxQuantity)
	}

	product, err := u.products.GetActive(ctx, productID)
	if err != nil {
		return nil, err
	}

	token, err := u.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate status token: %w", err)
	}

	form := u.sessionForm(product, quantity, token, strings.TrimSpace(req.CustomerEmail))

	resp, err := u.gateway.SubmitForm(ctx, stripe.CheckoutSessionsPath, form, token)
	if err != nil {
		return nil, &domainErrors.UpstreamError{Err: err}
	}
	if !resp.OK() {
		return nil, &domainErrors.UpstreamError{StatusCode: resp.StatusCode, Body: jsonDetails(resp.Body)}
	}

	var session sessionResponse
	if err := json.Unmarshal(resp.Body, &session); err != nil {
		return nil, &domainErrors.UpstreamError{Err: fmt.Errorf("decode checkout session: %w", err)}
	}
	if session.URL == "" {
		return nil, &domainErrors.UpstreamError{Err: errors.New("checkout session has no url")}
	}

	u.logger.Info("checkout session created",
		slog.String("session_id", session.ID),
		slog.String("product_id", product.ID),
		slog.Int("quantity", quantity),
	)

	return &model.CheckoutIntent{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

// Configured reports ErrMisconfigured when processor credentials or the app URL are missing.
func (u *CheckoutUseCase) Configured() error {
	switch {
	case u.settings.SecretKey == "":
		return fmt.Errorf("%w: missing processor secret key", domainErrors.ErrMisconfigured)
	case u.settings.AppURL == "":
		return fmt.Errorf("%w: missing app URL", domainErrors.ErrMisconfigured)
	}
	return nil
}

func (u *CheckoutUseCase) sessionForm(p *model.Product, quantity int, token, email string) url.Values {
	currency := strings.ToLower(p.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", u.settings.AppURL+"/success.html?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", u.settings.AppURL+"/index.html?canceled=1")
	form.Set("line_items[0][quantity]", strconv.Itoa(quantity))
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(p.PriceCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", p.Name)
	if p.Description != "" {
		form.Set("line_items[0][price_data][product_data][description]", p.Description)
	}
	form.Set("metadata[product_id]", p.ID)
	form.Set("metadata[quantity]", strconv.Itoa(quantity))
	form.Set("metadata[status_token]", token)
	if email != "" {
		form.Set("customer_email", email)
	}
	return form
}

// jsonDetails keeps a processor error body embeddable in a JSON response.
func jsonDetails(body []byte) json.RawMessage {
	if len(body) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
