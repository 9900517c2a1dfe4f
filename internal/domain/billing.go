package domain

import (
	"context"
	"encoding/json"
)

// Payment provider event types the reconciler interprets. Anything else is
// acknowledged and ignored for forward compatibility.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentFailed       = "invoice.payment_failed"
)

// WebhookEvent is the provider's event envelope. Object is kept raw because
// its shape varies per event type; the reconciler only reads customer_email.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession is the subset of the provider's checkout session object the
// backend cares about.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// BillingService owns the payment-provider integration: webhook
// reconciliation into tier transitions and checkout session creation.
type BillingService interface {
	// HandleEvent verifies the signature over the raw payload and applies the
	// resulting tier transition. ErrInvalidSignature means the payload was
	// never interpreted. Replaying an event is harmless: tier assignment is
	// idempotent.
	HandleEvent(payload []byte, signatureHeader string) error
	CreateCheckoutSession(ctx context.Context, email string) (*CheckoutSession, error)
}
