package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/polkiloo/paygate/internal/domain/model"
	"github.com/polkiloo/paygate/internal/pkg/signature"
	"github.com/polkiloo/paygate/internal/pkg/token"
)

const testWebhookSecret = "whsec_test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type sequenceIDs struct {
	n atomic.Int64
}

func (s *sequenceIDs) New(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, s.n.Add(1))
}

func fixedTokens(b byte) *token.Generator {
	return token.NewGenerator(bytes.NewReader(bytes.Repeat([]byte{b}, 1024)), token.MinBytes)
}

func sampleProduct() model.Product {
	return model.Product{
		ID:          "p1",
		Name:        "Poster",
		Description: "A3 print",
		PriceCents:  500,
		Currency:    "usd",
		Active:      true,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func signedHeader(body []byte) string {
	ts := "1700000000"
	return "t=" + ts + ",v1=" + signature.Sign(testWebhookSecret, ts, body)
}

func sessionEvent(id, eventType, paymentStatus string, metadata map[string]string) []byte {
	return mustJSON(map[string]any{
		"id":   id,
		"type": eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":             "cs_" + id,
				"payment_status": paymentStatus,
				"payment_intent": "pi_" + id,
				"customer_email": "fallback@example.com",
				"customer_details": map[string]any{
					"email": "buyer@example.com",
				},
				"metadata": metadata,
			},
		},
	})
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
