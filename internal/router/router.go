package router

import (
	"net/http"

	"github.com/neighborly/backend/internal/auth"
	"github.com/neighborly/backend/internal/handlers"
	"github.com/neighborly/backend/internal/middleware"
)

// New returns the API handler: auth and marketplace endpoints under /api/v1,
// the payment webhook under /webhooks.
func New(
	authHandler *auth.Handler,
	taskHandler *handlers.TaskHandler,
	userHandler *handlers.UserHandler,
	webhookHandler *handlers.WebhookHandler,
	authSvc middleware.TokenValidator,
	webhookLimiter *middleware.WebhookLimiter,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/plans", userHandler.ListPlans)

	requireAuth := middleware.RequireAuth(authSvc)

	mux.Handle("POST /api/v1/tasks", requireAuth(http.HandlerFunc(taskHandler.CreateTask)))
	mux.Handle("GET /api/v1/tasks", requireAuth(http.HandlerFunc(taskHandler.ListTasks)))
	mux.Handle("GET /api/v1/tasks/{id}", requireAuth(http.HandlerFunc(taskHandler.GetTask)))
	mux.Handle("POST /api/v1/tasks/{id}/assign", requireAuth(http.HandlerFunc(taskHandler.AssignHelper)))
	mux.Handle("POST /api/v1/tasks/{id}/close", requireAuth(http.HandlerFunc(taskHandler.CloseTask)))

	mux.Handle("GET /api/v1/me", requireAuth(http.HandlerFunc(userHandler.GetMe)))
	mux.Handle("POST /api/v1/me/payout-account", requireAuth(http.HandlerFunc(userHandler.SetPayoutAccount)))
	mux.Handle("POST /api/v1/me/plan", requireAuth(http.HandlerFunc(userHandler.SetPlan)))

	// The provider authenticates by signature, not by token; the limiter only
	// guards against unsigned junk traffic.
	mux.Handle("POST /webhooks/payment", webhookLimiter.Middleware(http.HandlerFunc(webhookHandler.HandlePaymentEvent)))

	return mux
}
