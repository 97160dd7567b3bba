package domain

import (
	"context"
	"time"
)

// Priority ranks a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	// DefaultPriority applies when a priority is absent or not recognised.
	DefaultPriority = PriorityMedium
)

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority returns the priority named by s, or DefaultPriority
func ParsePriority(s string) Priority {
	if p := Priority(s); p.Valid() {
		return p
	}
	return DefaultPriority
}

// Status is the workflow column of a task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"

	DefaultStatus = StatusTodo
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus returns the status named by s, or DefaultStatus
func ParseStatus(s string) Status {
	if st := Status(s); st.Valid() {
		return st
	}
	return DefaultStatus
}

// Task is a single to-do item owned by exactly one user
type Task struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"` // Set at creation, never mutated
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskFilter narrows a task listing by completion state
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterActive    TaskFilter = "active"
	FilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter maps a query value to a filter; empty means FilterAll
func ParseTaskFilter(s string) (TaskFilter, error) {
	switch TaskFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	}
	return "", NewValidationError("Invalid filter: must be all, active or completed")
}

// Matches reports whether t passes the filter
func (f TaskFilter) Matches(t *Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	}
	return true
}

// TaskChanges carries already-validated field values for an update.
// A nil field is left untouched by the store.
type TaskChanges struct {
	Text      *string
	Completed *bool
	Priority  *Priority
	Status    *Status
}

// Empty reports whether no field would change
func (c TaskChanges) Empty() bool {
	return c.Text == nil && c.Completed == nil && c.Priority == nil && c.Status == nil
}

// Apply writes the present changes onto t
func (c TaskChanges) Apply(t *Task) {
	if c.Text != nil {
		t.Text = *c.Text
	}
	if c.Completed != nil {
		t.Completed = *c.Completed
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
}

// TaskRepository defines owner-scoped data access for tasks.
// Every method takes the owner id; a task owned by someone else behaves
// exactly like a missing one and yields ErrTaskNotFound.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID string, filter TaskFilter) ([]*Task, error)
	Create(ctx context.Context, task *Task) error
	GetOwned(ctx context.Context, ownerID, taskID string) (*Task, error)
	UpdateOwned(ctx context.Context, ownerID, taskID string, changes TaskChanges) (*Task, error)
	DeleteOwned(ctx context.Context, ownerID, taskID string) error
	DeleteCompleted(ctx context.Context, ownerID string) (int64, error)
}
