package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
)

// MemoryUserRepository keeps users in process memory
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMemoryUserRepository creates an empty in-memory user store
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]*domain.User{}}
}

// Create assigns an id and stores the user, rejecting duplicate emails or usernames
func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return domain.ErrUserExists
		}
	}

	user.ID = uuid.NewString()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

// GetByID retrieves a user by ID
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

// GetByUsername retrieves a user by username
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// MemoryTaskRepository keeps tasks in insertion order in process memory
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks []*domain.Task
}

// NewMemoryTaskRepository creates an empty in-memory task store
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{}
}

// ListByOwner returns copies of the owner's tasks matching filter
func (r *MemoryTaskRepository) ListByOwner(_ context.Context, ownerID string, filter domain.TaskFilter) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if t.OwnerID == ownerID && filter.Matches(t) {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

// Create assigns an id and appends the task
func (r *MemoryTaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = uuid.NewString()
	stored := *task
	r.tasks = append(r.tasks, &stored)
	return nil
}

// GetOwned returns the task only when ownerID owns it
func (r *MemoryTaskRepository) GetOwned(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOwned(ownerID, taskID)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	out := *r.tasks[i]
	return &out, nil
}

// UpdateOwned applies changes to an owned task and returns the result
func (r *MemoryTaskRepository) UpdateOwned(_ context.Context, ownerID, taskID string, changes domain.TaskChanges) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOwned(ownerID, taskID)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	changes.Apply(r.tasks[i])
	out := *r.tasks[i]
	return &out, nil
}

// DeleteOwned removes an owned task
func (r *MemoryTaskRepository) DeleteOwned(_ context.Context, ownerID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOwned(ownerID, taskID)
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	r.tasks = slices.Delete(r.tasks, i, i+1)
	return nil
}

// DeleteCompleted removes the owner's completed tasks and reports how many went
func (r *MemoryTaskRepository) DeleteCompleted(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.tasks)
	r.tasks = slices.DeleteFunc(r.tasks, func(t *domain.Task) bool {
		return t.OwnerID == ownerID && t.Completed
	})
	return int64(before - len(r.tasks)), nil
}

func (r *MemoryTaskRepository) indexOwned(ownerID, taskID string) int {
	return slices.IndexFunc(r.tasks, func(t *domain.Task) bool {
		return t.ID == taskID && t.OwnerID == ownerID
	})
}
