package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v82"

	"github.com/neighborly/backend/internal/billing"
)

// Payment providers send small JSON envelopes; anything bigger is garbage.
const maxWebhookBody = 1 << 20

// EventVerifier authenticates a raw webhook payload.
type EventVerifier interface {
	Verify(ctx context.Context, payload []byte, sigHeader string) (*stripe.Event, error)
}

// CheckoutReconciler applies the paid transition for a checkout event.
type CheckoutReconciler interface {
	HandleCheckoutCompleted(ctx context.Context, ev *stripe.Event) error
}

// WebhookHandler serves POST /webhooks/payment.
type WebhookHandler struct {
	Verifier   EventVerifier
	Reconciler CheckoutReconciler
	Logger     *slog.Logger
}

// HandlePaymentEvent verifies and dispatches an inbound payment-provider
// event. Response contract: 200 whenever the event was understood (including
// idempotent no-ops and ignored event types), 400 on signature failure so the
// provider redelivers, 500 on missing configuration.
func (h *WebhookHandler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, `{"error":"unreadable body"}`, http.StatusBadRequest)
		return
	}

	ev, err := h.Verifier.Verify(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, billing.ErrSecretNotConfigured) {
			h.Logger.Error("payment webhook secret missing", "error", err)
			http.Error(w, `{"error":"webhook not configured"}`, http.StatusInternalServerError)
			return
		}
		h.Logger.Warn("payment event rejected", "error", err)
		http.Error(w, `{"error":"invalid signature"}`, http.StatusBadRequest)
		return
	}

	switch ev.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		if err := h.Reconciler.HandleCheckoutCompleted(r.Context(), ev); err != nil {
			h.Logger.Error("reconcile checkout event", "event_id", ev.ID, "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
	default:
		h.Logger.Info("ignoring payment event", "event_id", ev.ID, "type", ev.Type)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
