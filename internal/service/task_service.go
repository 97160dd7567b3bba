package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
	"github.com/aryan0dhankhar/tasktracker/internal/observability/metrics"
)

const errTextRequired = "Task text is required"

// CreateTaskInput carries the fields accepted on creation.
// Empty or unknown priority and status fall back to their defaults.
type CreateTaskInput struct {
	Text     string
	Priority string
	Status   string
}

// TaskService implements owner-scoped task operations
type TaskService struct {
	tasks  domain.TaskRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(tasks domain.TaskRepository, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		tasks:  tasks,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns the owner's tasks in creation order
func (s *TaskService) List(ctx context.Context, ownerID string, filter domain.TaskFilter) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID, filter)
	s.observe("list", err)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// Create adds a task owned by ownerID
func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (*domain.Task, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		err := domain.NewValidationError(errTextRequired)
		s.observe("create", err)
		return nil, err
	}

	task := &domain.Task{
		OwnerID:   ownerID,
		Text:      text,
		Completed: false,
		Priority:  domain.ParsePriority(in.Priority),
		Status:    domain.ParseStatus(in.Status),
		CreatedAt: s.now(),
	}
	err := s.tasks.Create(ctx, task)
	s.observe("create", err)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("task created",
		slog.String("user_id", ownerID),
		slog.String("task_id", task.ID),
	)
	return task, nil
}

// Update applies a partial update to one of the owner's tasks
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	changes, err := changesFromPatch(patch)
	if err != nil {
		s.observe("update", err)
		return nil, err
	}

	var task *domain.Task
	if changes.Empty() {
		task, err = s.tasks.GetOwned(ctx, ownerID, taskID)
	} else {
		task, err = s.tasks.UpdateOwned(ctx, ownerID, taskID, changes)
	}
	s.observe("update", err)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes one of the owner's tasks
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	err := s.tasks.DeleteOwned(ctx, ownerID, taskID)
	s.observe("delete", err)
	return err
}

// ClearCompleted removes every completed task of the owner. Repeating it is harmless.
func (s *TaskService) ClearCompleted(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.tasks.DeleteCompleted(ctx, ownerID)
	s.observe("clear_completed", err)
	if err != nil {
		return 0, err
	}
	metrics.AddCleared(n)
	s.logger.Info("completed tasks cleared",
		slog.String("user_id", ownerID),
		slog.Int64("deleted", n),
	)
	return n, nil
}

func changesFromPatch(p domain.TaskPatch) (domain.TaskChanges, error) {
	var c domain.TaskChanges
	if p.Text.Set {
		text := strings.TrimSpace(p.Text.Value)
		if p.Text.Null || text == "" {
			return c, domain.NewValidationError(errTextRequired)
		}
		c.Text = &text
	}
	if p.Completed.Set {
		if p.Completed.Null {
			return c, domain.NewValidationError("Completed must be a boolean")
		}
		completed := p.Completed.Value
		c.Completed = &completed
	}
	if p.Priority.Set {
		priority := domain.ParsePriority(p.Priority.Value)
		c.Priority = &priority
	}
	if p.Status.Set {
		status := domain.ParseStatus(p.Status.Value)
		c.Status = &status
	}
	return c, nil
}

func (s *TaskService) observe(op string, err error) {
	metrics.ObserveTaskOperation(op, resultLabel(err))
	if err != nil && resultLabel(err) == "error" {
		s.logger.Error("task operation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsValidation(err):
		return "invalid"
	case errors.Is(err, domain.ErrTaskNotFound):
		return "not_found"
	default:
		return "error"
	}
}
