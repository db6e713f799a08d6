package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	domainErrors "github.com/polkiloo/paygate/internal/domain/errors"
	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/test"
)

func newCheckout(store *test.MemoryStore, gw *test.GatewayStub, settings CheckoutSettings) *CheckoutUseCase {
	return NewCheckoutUseCase(store, gw, fixedTokens(0x11), settings, discardLogger())
}

func defaultSettings() CheckoutSettings {
	return CheckoutSettings{SecretKey: "sk_test", AppURL: "https://shop.example/"}
}

func TestCreateIntentBuildsProcessorForm(t *testing.T) {
	store := test.NewMemoryStore(sampleProduct())
	gw := &test.GatewayStub{}
	uc := newCheckout(store, gw, defaultSettings())

	intent, err := uc.CreateIntent(context.Background(), model.CheckoutRequest{
		ProductID:     "p1",
		Quantity:      strPtr("2"),
		CustomerEmail: "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if intent.CheckoutURL != "https://checkout.example/cs_test" || intent.SessionID != "cs_test" {
		t.Fatalf("unexpected intent %+v", intent)
	}

	if gw.CallCount() != 1 {
		t.Fatalf("expected one processor call, got %d", gw.CallCount())
	}
	call := gw.Calls[0]
	token := strings.Repeat("11", 24)
	want := [][2]string{
		{"mode", "payment"},
		{"success_url", "https://shop.example/success.html?session_id={CHECKOUT_SESSION_ID}"},
		{"cancel_url", "https://shop.example/index.html?canceled=1"},
		{"line_items[0][quantity]", "2"},
		{"line_items[0][price_data][currency]", "usd"},
		{"line_items[0][price_data][unit_amount]", "500"},
		{"line_items[0][price_data][product_data][name]", "Poster"},
		{"line_items[0][price_data][product_data][description]", "A3 print"},
		{"metadata[product_id]", "p1"},
		{"metadata[quantity]", "2"},
		{"metadata[status_token]", token},
		{"customer_email", "buyer@example.com"},
	}
	for _, kv := range want {
		if got := call.Form.Get(kv[0]); got != kv[1] {
			t.Errorf("form %s = %q, want %q", kv[0], got, kv[1])
		}
	}
	if call.IdempotencyKey != token {
		t.Errorf("expected idempotency key to be the status token, got %q", call.IdempotencyKey)
	}
	if call.Endpoint != "/v1/checkout/sessions" {
		t.Errorf("unexpected endpoint %q", call.Endpoint)
	}
}

func TestCreateIntentDefaultsQuantityAndOmitsEmail(t *testing.T) {
	product := sampleProduct()
	product.Currency = ""
	product.Description = ""
	gw := &test.GatewayStub{}
	uc := newCheckout(test.NewMemoryStore(product), gw, defaultSettings())

	if _, err := uc.CreateIntent(context.Background(), model.CheckoutRequest{ProductID: "p1"}); err != nil {
		t.Fatalf("create intent: %v", err)
	}
	form := gw.Calls[0].Form
	if form.Get("line_items[0][quantity]") != "1" || form.Get("metadata[quantity]") != "1" {
		t.Errorf("expected default quantity 1, got %v", form)
	}
	if form.Get("line_items[0][price_data][currency]") != "usd" {
		t.Errorf("expected usd default currency")
	}
	if _, ok := form["customer_email"]; ok {
		t.Error("expected customer_email to be omitted")
	}
	if _, ok := form["line_items[0][price_data][product_data][description]"]; ok {
		t.Error("expected empty description to be omitted")
	}
}

func TestCreateIntentValidationOrder(t *testing.T) {
	inactive := sampleProduct()
	inactive.ID = "p2"
	inactive.Active = false
	store := test.NewMemoryStore(sampleProduct(), inactive)

	cases := []struct {
		name     string
		settings CheckoutSettings
		req      model.CheckoutRequest
		want     error
	}{
		{"missing secret", CheckoutSettings{AppURL: "https://x"}, model.CheckoutRequest{}, domainErrors.ErrMisconfigured},
		{"missing app url", CheckoutSettings{SecretKey: "sk"}, model.CheckoutRequest{ProductID: "p1"}, domainErrors.ErrMisconfigured},
		{"missing product", defaultSettings(), model.CheckoutRequest{Quantity: strPtr("0")}, domainErrors.ErrInvalidRequest},
		{"quantity zero", defaultSettings(), model.CheckoutRequest{ProductID: "p1", Quantity: strPtr("0")}, domainErrors.ErrInvalidRequest},
		{"quantity eleven", defaultSettings(), model.CheckoutRequest{ProductID: "p1", Quantity: strPtr("11")}, domainErrors.ErrInvalidRequest},
		{"quantity fraction", defaultSettings(), model.CheckoutRequest{ProductID: "p1", Quantity: strPtr("2.5")}, domainErrors.ErrInvalidRequest},
		{"quantity word", defaultSettings(), model.CheckoutRequest{ProductID: "p1", Quantity: strPtr("abc")}, domainErrors.ErrInvalidRequest},
		{"quantity checked before product", defaultSettings(), model.CheckoutRequest{ProductID: "nope", Quantity: strPtr("11")}, domainErrors.ErrInvalidRequest},
		{"unknown product", defaultSettings(), model.CheckoutRequest{ProductID: "nope"}, domainErrors.ErrNotFound},
		{"inactive product", defaultSettings(), model.CheckoutRequest{ProductID: "p2"}, domainErrors.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &test.GatewayStub{}
			uc := newCheckout(store, gw, tc.settings)
			_, err := uc.CreateIntent(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if gw.CallCount() != 0 {
				t.Fatal("processor must not be called on validation failure")
			}
		})
	}
}

func TestCreateIntentUpstreamRejection(t *testing.T) {
	gw := &test.GatewayStub{Response: &model.GatewayResponse{
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"error":{"message":"No such price"}}`),
	}}
	uc := newCheckout(test.NewMemoryStore(sampleProduct()), gw, defaultSettings())

	_, err := uc.CreateIntent(context.Background(), model.CheckoutRequest{ProductID: "p1"})
	var upstream *domainErrors.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Unreachable() || upstream.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected upstream error %+v", upstream)
	}
	if string(upstream.Body) != `{"error":{"message":"No such price"}}` {
		t.Fatalf("unexpected details %s", upstream.Body)
	}
}

func TestCreateIntentUpstreamNonJSONBody(t *testing.T) {
	gw := &test.GatewayStub{Response: &model.GatewayResponse{StatusCode: http.StatusBadGateway, Body: []byte("bad gateway")}}
	uc := newCheckout(test.NewMemoryStore(sampleProduct()), gw, defaultSettings())

	_, err := uc.CreateIntent(context.Background(), model.CheckoutRequest{ProductID: "p1"})
	var upstream *domainErrors.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if string(upstream.Body) != `"bad gateway"` {
		t.Fatalf("expected quoted body, got %s", upstream.Body)
	}
}

func TestCreateIntentTransportFailure(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	gw := &test.GatewayStub{Err: boom}
	uc := newCheckout(test.NewMemoryStore(sampleProduct()), gw, defaultSettings())

	_, err := uc.CreateIntent(context.Background(), model.CheckoutRequest{ProductID: "p1"})
	var upstream *domainErrors.UpstreamError
	if !errors.As(err, &upstream) || !upstream.Unreachable() {
		t.Fatalf("expected unreachable upstream error, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("expected transport error to be wrapped")
	}
}

func TestCreateIntentMalformedSuccessBody(t *testing.T) {
	for _, body := range []string{`not json`, `{"id":"cs_1"}`} {
		gw := &test.GatewayStub{Response: &model.GatewayResponse{StatusCode: http.StatusOK, Body: []byte(body)}}
		uc := newCheckout(test.NewMemoryStore(sampleProduct()), gw, defaultSettings())
		_, err := uc.CreateIntent(context.Background(), model.CheckoutRequest{ProductID: "p1"})
		var upstream *domainErrors.UpstreamError
		if !errors.As(err, &upstream) || !upstream.Unreachable() {
			t.Fatalf("body %q: expected unreachable upstream error, got %v", body, err)
		}
	}
}

func TestCreateIntentTokenFailure(t *testing.T) {
	gw := &test.GatewayStub{}
	uc := NewCheckoutUseCase(test.NewMemoryStore(sampleProduct()), gw, failingTokens{}, defaultSettings(), discardLogger())
	if _, err := uc.CreateIntent(context.Background(), model.CheckoutRequest{ProductID: "p1"}); err == nil {
		t.Fatal("expected token error")
	}
	if gw.CallCount() != 0 {
		t.Fatal("processor must not be called without a token")
	}
}

type failingTokens struct{}

func (failingTokens) Generate() (string, error) { return "", errors.New("no entropy") }
