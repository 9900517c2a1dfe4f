package handler

import (
	"errors"
	"io"
	"net/http"

	"inkforge-server/internal/domain"
)

// Webhook payloads are small event envelopes; anything bigger is hostile.
const maxWebhookBodySize = 1 << 20

// BillingHandler handles payment-provider callbacks and checkout creation.
type BillingHandler struct {
	billingService domain.BillingService
	logger         domain.Logger
}

func NewBillingHandler(billingService domain.BillingService, logger domain.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		logger:         logger,
	}
}

// Webhook receives provider events. The raw body is read before any parsing
// because the signature covers the exact bytes on the wire.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := h.billingService.HandleEvent(payload, signature); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) || errors.Is(err, domain.ErrInvalidPayload) {
			writeError(w, http.StatusBadRequest, "Invalid webhook payload")
			return
		}
		// A storage failure mid-transition: return 500 so the provider retries.
		h.logger.Error("Webhook processing failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to process event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// CreateCheckoutSession starts a subscription checkout for the caller.
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	session, err := h.billingService.CreateCheckoutSession(r.Context(), user.Email)
	if err != nil {
		h.logger.Error("Failed to create checkout session", err, "user_id", user.ID)
		writeError(w, http.StatusBadGateway, "Failed to create checkout session")
		return
	}

	writeJSON(w, http.StatusOK, session)
}
