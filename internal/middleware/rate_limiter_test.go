package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func limitedHandler(l *WebhookLimiter) http.Handler {
	return l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestWebhookLimiter_UnderLimit(t *testing.T) {
	h := limitedHandler(NewWebhookLimiter(3, time.Minute, nil))
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "http://example.local/webhooks/payment", nil)
		req.RemoteAddr = "203.0.113.5:54321"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, rec.Code)
		}
	}
}

func TestWebhookLimiter_OverLimit(t *testing.T) {
	h := limitedHandler(NewWebhookLimiter(2, time.Minute, nil))
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "http://example.local/webhooks/payment", nil)
		req.RemoteAddr = "203.0.113.5:54321"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: got %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestWebhookLimiter_PerIP(t *testing.T) {
	h := limitedHandler(NewWebhookLimiter(1, time.Minute, nil))

	first := httptest.NewRequest("POST", "http://example.local/webhooks/payment", nil)
	first.RemoteAddr = "203.0.113.5:1111"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first IP: got %d, want 200", rec.Code)
	}

	other := httptest.NewRequest("POST", "http://example.local/webhooks/payment", nil)
	other.RemoteAddr = "203.0.113.6:2222"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other IP must have its own budget: got %d, want 200", rec.Code)
	}
}

func TestWebhookLimiter_Whitelist(t *testing.T) {
	h := limitedHandler(NewWebhookLimiter(1, time.Minute, []string{"198.51.100.10"}))
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "http://example.local/webhooks/payment", nil)
		req.RemoteAddr = "198.51.100.10:443"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("whitelisted request %d: got %d, want 200", i+1, rec.Code)
		}
	}
}
