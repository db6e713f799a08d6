package stripe

import (
	"testing"
	"time"

	"github.com/polkiloo/paygate/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{
		StripeAPIBase:   "https://api.stripe.com",
		StripeSecretKey: "sk_test",
		StripeTimeout:   3 * time.Second,
	}
	client, err := newClient(clientParams{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	httpClient, ok := client.(*HTTPClient)
	if !ok {
		t.Fatalf("expected *HTTPClient, got %T", client)
	}
	if httpClient.secretKey != "sk_test" || httpClient.httpClient.Timeout != 3*time.Second {
		t.Fatalf("unexpected client %+v", httpClient)
	}
}

func TestNewClientRejectsBadBase(t *testing.T) {
	cfg := &config.Config{StripeAPIBase: "not a url"}
	if _, err := newClient(clientParams{Config: cfg, Logger: testLogger()}); err == nil {
		t.Fatal("expected error for relative api base")
	}
}
