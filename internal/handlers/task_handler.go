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

// TaskRepoForHandler is the subset of the task repository the handler needs.
type TaskRepoForHandler interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*models.Task, error)
	Assign(ctx context.Context, id, helperID uuid.UUID) (bool, error)
	Close(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserRepoForHandler resolves helper accounts.
type UserRepoForHandler interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TextScreener flags banned terms in user-submitted text.
type TextScreener interface {
	Scan(text string) []string
}

// TaskHandler serves the /api/v1/tasks endpoints.
type TaskHandler struct {
	TaskRepo TaskRepoForHandler
	UserRepo UserRepoForHandler
	Screener TextScreener
	Logger   *slog.Logger
}

// --- POST /api/v1/tasks ---

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
}

// CreateTask posts a new task for the authenticated customer. Title and
// description pass through the moderation filter before anything is written.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if ident.Role != models.RoleCustomer {
		http.Error(w, `{"error":"only customers can post tasks"}`, http.StatusForbidden)
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, `{"error":"title is required"}`, http.StatusBadRequest)
		return
	}
	if req.PriceCents <= 0 {
		http.Error(w, `{"error":"price_cents must be > 0"}`, http.StatusBadRequest)
		return
	}

	if flagged := h.Screener.Scan(req.Title + " " + req.Description); len(flagged) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":         "content flagged by moderation",
			"flagged_terms": flagged,
		})
		return
	}

	task := &models.Task{
		ID:          uuid.New(),
		CustomerID:  ident.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      models.TaskStatusOpen,
		PriceCents:  req.PriceCents,
	}
	if err := h.TaskRepo.Create(r.Context(), task); err != nil {
		h.Logger.Error("create task", "error", err)
		http.Error(w, `{"error":"failed to create task"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// --- GET /api/v1/tasks/{id} ---

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractTaskID(r)
	if !ok {
		http.Error(w, `{"error":"invalid task id"}`, http.StatusBadRequest)
		return
	}
	task, err := h.TaskRepo.GetByID(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
			return
		}
		h.Logger.Error("get task", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// --- GET /api/v1/tasks ---

// ListTasks returns the authenticated customer's own tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	tasks, err := h.TaskRepo.ListByCustomerID(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("list tasks", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// --- POST /api/v1/tasks/{id}/assign ---

type assignRequest struct {
	HelperID string `json:"helper_id"`
}

// AssignHelper matches a helper to an open task. Only the posting customer
// may assign, and only helpers can be assigned.
func (h *TaskHandler) AssignHelper(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	taskID, ok := extractTaskID(r)
	if !ok {
		http.Error(w, `{"error":"invalid task id"}`, http.StatusBadRequest)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	helperID, err := uuid.Parse(req.HelperID)
	if err != nil {
		http.Error(w, `{"error":"invalid helper_id"}`, http.StatusBadRequest)
		return
	}

	task, err := h.TaskRepo.GetByID(r.Context(), taskID)
	if err != nil {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}
	if task.CustomerID != ident.UserID {
		http.Error(w, `{"error":"caller does not own this task"}`, http.StatusForbidden)
		return
	}

	helper, err := h.UserRepo.GetByID(r.Context(), helperID)
	if err != nil || helper.Role != models.RoleHelper {
		http.Error(w, `{"error":"helper not found"}`, http.StatusBadRequest)
		return
	}

	assigned, err := h.TaskRepo.Assign(r.Context(), taskID, helperID)
	if err != nil {
		h.Logger.Error("assign helper", "task_id", taskID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !assigned {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "task is not open", "status": task.Status})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"task_id": taskID.String(), "status": models.TaskStatusAssigned})
}

// --- POST /api/v1/tasks/{id}/close ---

// CloseTask closes a paid task.
func (h *TaskHandler) CloseTask(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	taskID, ok := extractTaskID(r)
	if !ok {
		http.Error(w, `{"error":"invalid task id"}`, http.StatusBadRequest)
		return
	}
	task, err := h.TaskRepo.GetByID(r.Context(), taskID)
	if err != nil {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}
	if task.CustomerID != ident.UserID {
		http.Error(w, `{"error":"caller does not own this task"}`, http.StatusForbidden)
		return
	}
	closed, err := h.TaskRepo.Close(r.Context(), taskID)
	if err != nil {
		h.Logger.Error("close task", "task_id", taskID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !closed {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "task is not paid", "status": task.Status})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"task_id": taskID.String(), "status": models.TaskStatusClosed})
}

// extractTaskID parses the task UUID from the URL path.
// Supports paths like /api/v1/tasks/{id} and /api/v1/tasks/{id}/assign.
func extractTaskID(r *http.Request) (uuid.UUID, bool) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/tasks/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
