package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/neighborly/backend/internal/middleware"
	"github.com/neighborly/backend/internal/models"
	"github.com/neighborly/backend/internal/repository"
)

// UserRepoForProfile is the account surface the profile endpoints need.
type UserRepoForProfile interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetPayoutAccount(ctx context.Context, id uuid.UUID, accountID string) error
	SetPlan(ctx context.Context, id uuid.UUID, planID *uuid.UUID) error
}

// PlanRepoForProfile lists and resolves subscription plans.
type PlanRepoForProfile interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
}

// UserHandler serves /api/v1/me and /api/v1/plans.
type UserHandler struct {
	UserRepo UserRepoForProfile
	PlanRepo PlanRepoForProfile
	Logger   *slog.Logger
}

// GetMe returns the authenticated user's profile.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	user, err := h.UserRepo.GetByID(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("get profile", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type setPayoutAccountRequest struct {
	AccountID string `json:"account_id"`
}

// SetPayoutAccount records the helper's external payout destination. Without
// it, payouts for their paid tasks are skipped and held for manual handling.
func (h *UserHandler) SetPayoutAccount(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if ident.Role != models.RoleHelper {
		http.Error(w, `{"error":"only helpers receive payouts"}`, http.StatusForbidden)
		return
	}
	var req setPayoutAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.AccountID) == "" {
		http.Error(w, `{"error":"account_id is required"}`, http.StatusBadRequest)
		return
	}
	if err := h.UserRepo.SetPayoutAccount(r.Context(), ident.UserID, strings.TrimSpace(req.AccountID)); err != nil {
		h.Logger.Error("set payout account", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type setPlanRequest struct {
	PlanID *string `json:"plan_id"`
}

// SetPlan subscribes the helper to a plan (or clears it with a null plan_id).
func (h *UserHandler) SetPlan(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if ident.Role != models.RoleHelper {
		http.Error(w, `{"error":"only helpers have plans"}`, http.StatusForbidden)
		return
	}
	var req setPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	var planID *uuid.UUID
	if req.PlanID != nil {
		id, err := uuid.Parse(*req.PlanID)
		if err != nil {
			http.Error(w, `{"error":"invalid plan_id"}`, http.StatusBadRequest)
			return
		}
		if _, err := h.PlanRepo.GetByID(r.Context(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				http.Error(w, `{"error":"plan not found"}`, http.StatusBadRequest)
				return
			}
			h.Logger.Error("resolve plan", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		planID = &id
	}

	if err := h.UserRepo.SetPlan(r.Context(), ident.UserID, planID); err != nil {
		h.Logger.Error("set plan", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListPlans is public: customers and helpers browse plans before signing up.
func (h *UserHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.PlanRepo.List(r.Context())
	if err != nil {
		h.Logger.Error("list plans", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if plans == nil {
		plans = []*models.Plan{}
	}
	writeJSON(w, http.StatusOK, plans)
}
