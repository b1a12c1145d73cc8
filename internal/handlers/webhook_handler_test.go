package handlers

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/neighborly/backend/internal/billing"
	"github.com/neighborly/backend/internal/repository"
)

const webhookTestSecret = "whsec_handler_test"

type stubSettings struct {
	secret    string
	hasSecret bool
}

func (s *stubSettings) Get(_ context.Context, _ string) (string, error) {
	if !s.hasSecret {
		return "", repository.ErrNotFound
	}
	return s.secret, nil
}

type stubReconciler struct {
	calls  int
	lastEv *stripe.Event
	err    error
}

func (s *stubReconciler) HandleCheckoutCompleted(_ context.Context, ev *stripe.Event) error {
	s.calls++
	s.lastEv = ev
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signHeader(payload []byte, secret string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func checkoutPayload(eventType, taskID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_h1",
		"type": %q,
		"data": {"object": {"payment_intent": "pi_h1", "metadata": {"task_id": %q}}}
	}`, eventType, taskID))
}

func newWebhookHandler(settings *stubSettings, rec *stubReconciler) *WebhookHandler {
	return &WebhookHandler{
		Verifier:   billing.NewVerifier(settings),
		Reconciler: rec,
		Logger:     discardLogger(),
	}
}

func postWebhook(t *testing.T, h *WebhookHandler, payload []byte, sigHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sigHeader)
	rec := httptest.NewRecorder()
	h.HandlePaymentEvent(rec, req)
	return rec
}

func TestHandlePaymentEvent_ValidEvent(t *testing.T) {
	settings := &stubSettings{secret: webhookTestSecret, hasSecret: true}
	reconciler := &stubReconciler{}
	h := newWebhookHandler(settings, reconciler)

	payload := checkoutPayload("checkout.session.completed", "task-1")
	rec := postWebhook(t, h, payload, signHeader(payload, webhookTestSecret))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || !body["received"] {
		t.Errorf("ack body: got %s", rec.Body.String())
	}
	if reconciler.calls != 1 {
		t.Fatalf("reconciler calls: got %d, want 1", reconciler.calls)
	}
	if reconciler.lastEv.Type != stripe.EventTypeCheckoutSessionCompleted {
		t.Errorf("event type: got %q", reconciler.lastEv.Type)
	}
}

func TestHandlePaymentEvent_TamperedBody(t *testing.T) {
	settings := &stubSettings{secret: webhookTestSecret, hasSecret: true}
	reconciler := &stubReconciler{}
	h := newWebhookHandler(settings, reconciler)

	payload := checkoutPayload("checkout.session.completed", "task-1")
	header := signHeader(payload, webhookTestSecret)
	tampered := checkoutPayload("checkout.session.completed", "task-other")

	rec := postWebhook(t, h, tampered, header)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	// No verification, no state transition.
	if reconciler.calls != 0 {
		t.Errorf("reconciler must not run on signature failure, got %d calls", reconciler.calls)
	}
}

func TestHandlePaymentEvent_MissingSecret(t *testing.T) {
	settings := &stubSettings{hasSecret: false}
	reconciler := &stubReconciler{}
	h := newWebhookHandler(settings, reconciler)

	payload := checkoutPayload("checkout.session.completed", "task-1")
	rec := postWebhook(t, h, payload, signHeader(payload, webhookTestSecret))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	if reconciler.calls != 0 {
		t.Errorf("reconciler must not run without configuration, got %d calls", reconciler.calls)
	}
}

func TestHandlePaymentEvent_IgnoresOtherEventTypes(t *testing.T) {
	settings := &stubSettings{secret: webhookTestSecret, hasSecret: true}
	reconciler := &stubReconciler{}
	h := newWebhookHandler(settings, reconciler)

	payload := checkoutPayload("invoice.paid", "task-1")
	rec := postWebhook(t, h, payload, signHeader(payload, webhookTestSecret))

	if rec.Code != http.StatusOK {
		t.Fatalf("unknown event types are still acknowledged: got %d, want 200", rec.Code)
	}
	if reconciler.calls != 0 {
		t.Errorf("reconciler only handles checkout completion, got %d calls", reconciler.calls)
	}
}

func TestHandlePaymentEvent_ReconcilerError(t *testing.T) {
	settings := &stubSettings{secret: webhookTestSecret, hasSecret: true}
	reconciler := &stubReconciler{err: fmt.Errorf("db down")}
	h := newWebhookHandler(settings, reconciler)

	payload := checkoutPayload("checkout.session.completed", "task-1")
	rec := postWebhook(t, h, payload, signHeader(payload, webhookTestSecret))

	// Infrastructure errors surface as 500 so the provider redelivers;
	// idempotency makes the retry safe.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
}
