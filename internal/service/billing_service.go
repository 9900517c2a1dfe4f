package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkforge-server/internal/domain"
	"inkforge-server/pkg/webhook"
)

// Signatures older than this are rejected to keep replayed deliveries out.
const webhookTolerance = 5 * time.Minute

const defaultProviderAPIBase = "https://api.stripe.com"

// BillingService owns the payment-provider integration: it reconciles webhook
// events into tier transitions on the usage record and creates checkout
// sessions for upgrades.
type BillingService struct {
	usage  domain.UsageService
	logger domain.Logger

	secretKey     string
	webhookSecret string
	priceID       string
	successURL    string
	cancelURL     string

	apiBase string
	client  *http.Client
}

// NewBillingService creates a new billing service
func NewBillingService(usage domain.UsageService, logger domain.Logger, cfg domain.Config) *BillingService {
	return &BillingService{
		usage:  usage,
		logger: logger,

		secretKey:     cfg.GetStripeSecretKey(),
		webhookSecret: cfg.GetStripeWebhookSecret(),
		priceID:       cfg.GetStripePriceID(),
		successURL:    cfg.GetCheckoutSuccessURL(),
		cancelURL:     cfg.GetCheckoutCancelURL(),

		apiBase: defaultProviderAPIBase,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// HandleEvent authenticates and applies a provider event. The signature is
// verified over the exact raw payload before any of it is interpreted.
// Unknown event types are acknowledged and ignored; replays reapply the same
// tier, which is a no-op in effect.
func (s *BillingService) HandleEvent(payload []byte, signatureHeader string) error {
	if err := webhook.Verify(s.webhookSecret, payload, signatureHeader, webhookTolerance); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	var event domain.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	switch event.Type {
	case domain.EventCheckoutCompleted:
		return s.applyTierChange(&event, domain.TierPro)
	case domain.EventSubscriptionDeleted, domain.EventPaymentFailed:
		return s.applyTierChange(&event, domain.TierFree)
	default:
		s.logger.Debug("Ignoring unhandled webhook event", "type", event.Type, "id", event.ID)
		return nil
	}
}

func (s *BillingService) applyTierChange(event *domain.WebhookEvent, tier domain.Tier) error {
	var object struct {
		CustomerEmail string `json:"customer_email"`
	}
	if len(event.Data.Object) > 0 {
		if err := json.Unmarshal(event.Data.Object, &object); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
	}

	if object.CustomerEmail == "" {
		s.logger.Warn("Webhook event carries no customer email, dropped", "type", event.Type, "id", event.ID)
		return nil
	}

	if err := s.usage.SetTierByEmail(object.CustomerEmail, tier); err != nil {
		return err
	}
	s.logger.Info("Subscription tier reconciled from webhook", "type", event.Type, "tier", tier)
	return nil
}

// CreateCheckoutSession creates a provider checkout session for a
// subscription upgrade tied to the caller's billing email.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, email string) (*domain.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", s.priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", s.successURL)
	form.Set("cancel_url", s.cancelURL)
	form.Set("customer_email", email)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Error("Checkout session creation rejected", fmt.Errorf("provider status %d", resp.StatusCode), "body", string(body))
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var session domain.CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("provider returned a session without an id")
	}

	s.logger.Info("Checkout session created", "session_id", session.ID)
	return &session, nil
}
