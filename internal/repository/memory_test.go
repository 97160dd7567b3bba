package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
)

func TestMemoryUserRepositoryUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	alice := &domain.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	err := repo.Create(ctx, &domain.User{Username: "alice2", Email: "a@x.io"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
	err = repo.Create(ctx, &domain.User{Username: "alice", Email: "other@x.io"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	got, err := repo.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", got.Email)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMemoryTaskRepositoryOwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaskRepository()

	a1 := &domain.Task{OwnerID: "alice", Text: "one"}
	a2 := &domain.Task{OwnerID: "alice", Text: "two", Completed: true}
	b1 := &domain.Task{OwnerID: "bob", Text: "bob's", Completed: true}
	for _, task := range []*domain.Task{a1, b1, a2} {
		require.NoError(t, repo.Create(ctx, task))
	}

	all, err := repo.ListByOwner(ctx, "alice", domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "one", all[0].Text)
	assert.Equal(t, "two", all[1].Text)

	active, err := repo.ListByOwner(ctx, "alice", domain.FilterActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a1.ID, active[0].ID)

	_, err = repo.GetOwned(ctx, "bob", a1.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	done := true
	_, err = repo.UpdateOwned(ctx, "bob", a1.ID, domain.TaskChanges{Completed: &done})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.ErrorIs(t, repo.DeleteOwned(ctx, "bob", a1.ID), domain.ErrTaskNotFound)

	updated, err := repo.UpdateOwned(ctx, "alice", a1.ID, domain.TaskChanges{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	n, err := repo.DeleteCompleted(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.DeleteCompleted(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	bobs, err := repo.ListByOwner(ctx, "bob", domain.FilterAll)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)
}

func TestMemoryTaskRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaskRepository()
	task := &domain.Task{OwnerID: "alice", Text: "original"}
	require.NoError(t, repo.Create(ctx, task))

	got, err := repo.GetOwned(ctx, "alice", task.ID)
	require.NoError(t, err)
	got.Text = "mutated"

	again, err := repo.GetOwned(ctx, "alice", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Text)
}

func TestMemoryTaskRepositoryEmptyListIsNotNil(t *testing.T) {
	tasks, err := NewMemoryTaskRepository().ListByOwner(context.Background(), "nobody", domain.FilterAll)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
