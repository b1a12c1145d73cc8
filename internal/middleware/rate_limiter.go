package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// WebhookLimiter is a fixed-window in-memory per-IP rate limiter for the
// payment webhook endpoint. State is per-process; the idempotency guarantees
// of the reconciliation path make an over-admitting limiter safe.
type WebhookLimiter struct {
	maxReq    int
	window    time.Duration
	whitelist map[string]bool

	mu      sync.Mutex
	counts  map[string]int
	resetAt time.Time
}

func NewWebhookLimiter(maxReq int, window time.Duration, whitelist []string) *WebhookLimiter {
	wl := make(map[string]bool, len(whitelist))
	for _, ip := range whitelist {
		wl[ip] = true
	}
	return &WebhookLimiter{
		maxReq:    maxReq,
		window:    window,
		whitelist: wl,
		counts:    make(map[string]int),
		resetAt:   time.Now().Add(window),
	}
}

// Middleware rejects requests over the per-window budget with 429.
func (l *WebhookLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if l.whitelist[ip] {
			next.ServeHTTP(w, r)
			return
		}

		l.mu.Lock()
		now := time.Now()
		if now.After(l.resetAt) {
			l.counts = make(map[string]int)
			l.resetAt = now.Add(l.window)
		}
		l.counts[ip]++
		count := l.counts[ip]
		retryAfter := int(time.Until(l.resetAt).Seconds()) + 1
		l.mu.Unlock()

		if count > l.maxReq {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
