package model

// CheckoutRequest is a client's request to start paying for a product.
// Quantity is kept raw so validation can tell integers from other numbers;
// nil means the client did not send one.
type CheckoutRequest struct {
	ProductID     string
	Quantity      *string
	CustomerEmail string
}

// CheckoutIntent is a created processor session the customer is redirected to.
type CheckoutIntent struct {
	SessionID   string
	CheckoutURL string
}

// GatewayResponse is the raw answer of the payment processor REST API.
type GatewayResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx processor response.
func (r GatewayResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
