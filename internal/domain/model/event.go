package model

import "encoding/json"

// Event types the webhook processor knows about.
const (
	EventCheckoutSessionCompleted             = "checkout.session.completed"
	EventCheckoutSessionAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// PaymentStatusPaid is the checkout session payment status that triggers fulfillment.
const PaymentStatusPaid = "paid"

// WebhookEvent is the verified envelope delivered by the payment processor.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession is the subset of the processor's session object used for fulfillment.
type CheckoutSession struct {
	ID              string            `json:"id"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentIntent   json.RawMessage   `json:"payment_intent"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerDetails *CustomerDetails  `json:"customer_details"`
	Metadata        map[string]string `json:"metadata"`
}

// CustomerDetails holds the payer information collected by the processor.
type CustomerDetails struct {
	Email string `json:"email"`
}

// PaymentIntentID returns the payment intent id when the processor sent it as a plain string.
// Expanded objects and null yield an empty string.
func (s CheckoutSession) PaymentIntentID() string {
	if len(s.PaymentIntent) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(s.PaymentIntent, &id); err != nil {
		return ""
	}
	return id
}

// WebhookResult is the acknowledgement returned for each delivery attempt.
type WebhookResult struct {
	Received bool   `json:"received"`
	Deduped  bool   `json:"deduped,omitempty"`
	Ignored  string `json:"ignored,omitempty"`
}
