package client

import (
	"context"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
)

// Board is the client-side view of the task list. It never patches its
// copy locally: every mutation is followed by a full re-fetch.
type Board struct {
	Tasks  []domain.Task
	Filter domain.TaskFilter

	api *Client
}

// NewBoard creates an empty board showing every task
func NewBoard(api *Client) *Board {
	return &Board{Filter: domain.FilterAll, api: api}
}

// Refresh replaces Tasks with the server's current list
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.api.ListTasks(ctx, domain.FilterAll)
	if err != nil {
		return err
	}
	b.Tasks = tasks
	return nil
}

// Visible returns the tasks that pass Filter, in server order
func (b *Board) Visible() []domain.Task {
	out := make([]domain.Task, 0, len(b.Tasks))
	for i := range b.Tasks {
		if b.Filter.Matches(&b.Tasks[i]) {
			out = append(out, b.Tasks[i])
		}
	}
	return out
}

// Remaining counts tasks not yet completed
func (b *Board) Remaining() int {
	n := 0
	for _, t := range b.Tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// Add creates a task then refreshes
func (b *Board) Add(ctx context.Context, in NewTask) error {
	if _, err := b.api.CreateTask(ctx, in); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

// Update applies a partial update then refreshes
func (b *Board) Update(ctx context.Context, id string, in TaskUpdate) error {
	if _, err := b.api.UpdateTask(ctx, id, in); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

// Toggle flips a task's completion then refreshes
func (b *Board) Toggle(ctx context.Context, id string) error {
	for _, t := range b.Tasks {
		if t.ID == id {
			completed := !t.Completed
			return b.Update(ctx, id, TaskUpdate{Completed: &completed})
		}
	}
	return &APIError{Status: 404, Message: "Task not found"}
}

// Remove deletes a task then refreshes
func (b *Board) Remove(ctx context.Context, id string) error {
	if err := b.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

// ClearCompleted removes completed tasks then refreshes
func (b *Board) ClearCompleted(ctx context.Context) (int64, error) {
	n, err := b.api.ClearCompleted(ctx)
	if err != nil {
		return 0, err
	}
	return n, b.Refresh(ctx)
}
