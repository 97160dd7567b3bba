package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
)

const taskColumns = `id, user_id, text, completed, priority, status, created_at`

// PostgresTaskRepository implements domain.TaskRepository using PostgreSQL.
// Every statement filters on user_id.
type PostgresTaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTaskRepository creates a new task repository
func NewPostgresTaskRepository(db *sql.DB, logger *slog.Logger) *PostgresTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskRepository{db: db, logger: logger}
}

// ListByOwner returns the owner's tasks in insertion order
func (r *PostgresTaskRepository) ListByOwner(ctx context.Context, ownerID string, filter domain.TaskFilter) ([]*domain.Task, error) {
	tasks := []*domain.Task{}
	if !validUUID(ownerID) {
		return tasks, nil
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{ownerID}
	switch filter {
	case domain.FilterActive:
		query += ` AND completed = $2`
		args = append(args, false)
	case domain.FilterCompleted:
		query += ` AND completed = $2`
		args = append(args, true)
	}
	query += ` ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list tasks",
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create inserts a task, assigning its id
func (r *PostgresTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, text, completed, priority, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if !validUUID(task.OwnerID) {
		return domain.ErrUserNotFound
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		id,
		task.OwnerID,
		task.Text,
		task.Completed,
		string(task.Priority),
		string(task.Status),
		task.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to create task",
			slog.String("user_id", task.OwnerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = id
	return nil
}

// GetOwned retrieves one of the owner's tasks
func (r *PostgresTaskRepository) GetOwned(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	if !validUUID(ownerID) || !validUUID(taskID) {
		return nil, domain.ErrTaskNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// UpdateOwned applies the present fields in one statement; absent fields keep their value
func (r *PostgresTaskRepository) UpdateOwned(ctx context.Context, ownerID, taskID string, changes domain.TaskChanges) (*domain.Task, error) {
	if !validUUID(ownerID) || !validUUID(taskID) {
		return nil, domain.ErrTaskNotFound
	}
	query := `
		UPDATE tasks
		SET text = COALESCE($3, text),
			completed = COALESCE($4, completed),
			priority = COALESCE($5, priority),
			status = COALESCE($6, status)
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns

	var text, completed, priority, status any
	if changes.Text != nil {
		text = *changes.Text
	}
	if changes.Completed != nil {
		completed = *changes.Completed
	}
	if changes.Priority != nil {
		priority = string(*changes.Priority)
	}
	if changes.Status != nil {
		status = string(*changes.Status)
	}

	task, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, ownerID, text, completed, priority, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		r.logger.Error("failed to update task",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteOwned removes one of the owner's tasks
func (r *PostgresTaskRepository) DeleteOwned(ctx context.Context, ownerID, taskID string) error {
	if !validUUID(ownerID) || !validUUID(taskID) {
		return domain.ErrTaskNotFound
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// DeleteCompleted removes the owner's completed tasks
func (r *PostgresTaskRepository) DeleteCompleted(ctx context.Context, ownerID string) (int64, error) {
	if !validUUID(ownerID) {
		return 0, nil
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND completed = TRUE`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear completed tasks: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task             domain.Task
		priority, status string
	)
	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Text,
		&task.Completed,
		&priority,
		&status,
		&task.CreatedAt,
	); err != nil {
		return nil, err
	}
	task.Priority = domain.ParsePriority(priority)
	task.Status = domain.ParseStatus(status)
	return &task, nil
}

func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
