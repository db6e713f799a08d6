package stripe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/metrics"
)

// CheckoutSessionsPath is the processor endpoint creating hosted checkout sessions.
const CheckoutSessionsPath = "/v1/checkout/sessions"

const maxResponseBytes = 1 << 20

// Client submits form encoded requests to the payment processor REST API.
type Client interface {
	SubmitForm(ctx context.Context, endpoint string, form url.Values, idempotencyKey string) (*model.GatewayResponse, error)
}

// HTTPClient implements Client over net/http with bearer authentication.
type HTTPClient struct {
	baseURL    *url.URL
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewHTTPClient creates a processor client bounded by timeout.
func NewHTTPClient(baseURL, secretKey string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse processor url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("processor url must be absolute")
	}
	return &HTTPClient{
		baseURL:   parsed,
		secretKey: secretKey,
		logger:    logger,
		metrics:   m,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SubmitForm POSTs form to endpoint. Any HTTP response is returned as is; only
// transport failures produce an error.
func (c *HTTPClient) SubmitForm(ctx context.Context, endpoint string, form url.Values, idempotencyKey string) (*model.GatewayResponse, error) {
	target := *c.baseURL
	target.Path = path.Join(target.Path, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, "transport_error", started)
		c.logger.Error("processor request failed", slog.String("endpoint", endpoint), slog.Any("error", err))
		return nil, fmt.Errorf("processor request: %w", err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, strconv.Itoa(resp.StatusCode), started)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read processor response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("processor rejected request",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
		)
	}

	return &model.GatewayResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *HTTPClient) observe(endpoint, status string, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ProcessorLatency.WithLabelValues(endpoint, status).Observe(time.Since(started).Seconds())
}
