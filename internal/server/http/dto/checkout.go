package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/polkiloo/paygate/internal/domain/model"
)

var errNotScalar = errors.New("expected a string or number")

// CheckoutRequest is the body of POST /api/checkout/session. Fields stay raw
// so numbers and numeric strings are both accepted.
type CheckoutRequest struct {
	ProductID     json.RawMessage `json:"productId"`
	Quantity      json.RawMessage `json:"quantity"`
	CustomerEmail json.RawMessage `json:"customerEmail"`
}

// ToModel converts the payload. Absent and null fields are left empty.
func (r CheckoutRequest) ToModel() (model.CheckoutRequest, error) {
	productID, err := scalar(r.ProductID)
	if err != nil {
		return model.CheckoutRequest{}, errors.New("productId " + err.Error())
	}
	quantity, err := scalar(r.Quantity)
	if err != nil {
		return model.CheckoutRequest{}, errors.New("quantity " + err.Error())
	}
	email, err := scalar(r.CustomerEmail)
	if err != nil {
		return model.CheckoutRequest{}, errors.New("customerEmail " + err.Error())
	}

	req := model.CheckoutRequest{}
	if productID != nil {
		req.ProductID = *productID
	}
	req.Quantity = quantity
	if email != nil {
		req.CustomerEmail = *email
	}
	return req, nil
}

func scalar(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		s := string(raw)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil, errNotScalar
		}
		return &s, nil
	default:
		return nil, errNotScalar
	}
}

// CheckoutResponse carries the hosted checkout redirect.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}
