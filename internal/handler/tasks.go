package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
	"github.com/aryan0dhankhar/tasktracker/internal/security/middleware"
	"github.com/aryan0dhankhar/tasktracker/internal/service"
)

// TaskService is the task surface the handler needs
type TaskService interface {
	List(ctx context.Context, ownerID string, filter domain.TaskFilter) ([]*domain.Task, error)
	Create(ctx context.Context, ownerID string, in service.CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
	ClearCompleted(ctx context.Context, ownerID string) (int64, error)
}

// TaskHandler serves the owner-scoped task routes. The owner always
// comes from the verified identity, never from the request body.
type TaskHandler struct {
	tasks  TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{tasks: tasks, logger: logger}
}

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

// ClearCompletedResponse is the body of DELETE /api/tasks
type ClearCompletedResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// List handles GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	filter, err := domain.ParseTaskFilter(r.URL.Query().Get("filter"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	tasks, err := h.tasks.List(r.Context(), ownerID, filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.Create(r.Context(), ownerID, service.CreateTaskInput{
		Text:     req.Text,
		Priority: req.Priority,
		Status:   req.Status,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	// a missing body is an empty patch
	var patch domain.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.Update(r.Context(), ownerID, r.PathValue("id"), patch)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), ownerID, r.PathValue("id")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// ClearCompleted handles DELETE /api/tasks
func (h *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	n, err := h.tasks.ClearCompleted(r.Context(), ownerID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearCompletedResponse{
		Message:      "Completed tasks deleted successfully",
		DeletedCount: n,
	})
}

func (h *TaskHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok || identity.UserID == "" {
		writeError(w, http.StatusUnauthorized, "Access token required")
		return "", false
	}
	return identity.UserID, true
}
