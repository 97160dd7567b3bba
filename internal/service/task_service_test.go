package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
	"github.com/aryan0dhankhar/tasktracker/internal/repository"
)

func newTaskService() *TaskService {
	s := NewTaskService(repository.NewMemoryTaskRepository(), nil)
	fixed := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	return s
}

func patch(t *testing.T, body string) domain.TaskPatch {
	t.Helper()
	var p domain.TaskPatch
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func TestCreateDefaultsAndTrimming(t *testing.T) {
	s := newTaskService()
	ctx := context.Background()

	task, err := s.Create(ctx, "alice", CreateTaskInput{Text: "  buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Text)
	assert.Equal(t, "alice", task.OwnerID)
	assert.False(t, task.Completed)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, domain.StatusTodo, task.Status)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC), task.CreatedAt)

	task, err = s.Create(ctx, "alice", CreateTaskInput{Text: "x", Priority: "urgent", Status: "blocked"})
	require.NoError(t, err)
	assert.Equal(t, "x", task.Text)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, domain.StatusTodo, task.Status)

	task, err = s.Create(ctx, "alice", CreateTaskInput{Text: "y", Priority: "high", Status: "in-progress"})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, domain.StatusInProgress, task.Status)
}

func TestCreateRejectsBlankText(t *testing.T) {
	s := newTaskService()
	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := s.Create(context.Background(), "alice", CreateTaskInput{Text: text})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, "Task text is required", err.Error())
	}

	tasks, err := s.List(context.Background(), "alice", domain.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateUpdateListRoundTrip(t *testing.T) {
	s := newTaskService()
	ctx := context.Background()

	created, err := s.Create(ctx, "alice", CreateTaskInput{Text: "draft"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, "alice", created.ID, patch(t, `{"text":" final ","completed":true,"priority":"low","status":"done"}`))
	require.NoError(t, err)

	tasks, err := s.List(ctx, "alice", domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, updated, tasks[0])
	assert.Equal(t, "final", tasks[0].Text)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, domain.PriorityLow, tasks[0].Priority)
	assert.Equal(t, domain.StatusDone, tasks[0].Status)
	assert.Equal(t, created.CreatedAt, tasks[0].CreatedAt)
}

func TestUpdatePartialAndCoercion(t *testing.T) {
	s := newTaskService()
	ctx := context.Background()
	created, err := s.Create(ctx, "alice", CreateTaskInput{Text: "keep me", Priority: "high", Status: "in-progress"})
	require.NoError(t, err)

	task, err := s.Update(ctx, "alice", created.ID, patch(t, `{"completed":true}`))
	require.NoError(t, err)
	assert.Equal(t, "keep me", task.Text)
	assert.True(t, task.Completed)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, domain.StatusInProgress, task.Status, "completed and status move independently")

	task, err = s.Update(ctx, "alice", created.ID, patch(t, `{"priority":"extreme","status":null}`))
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, domain.StatusTodo, task.Status)

	task, err = s.Update(ctx, "alice", created.ID, patch(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, "keep me", task.Text)
}

func TestUpdateRejectsInvalidFields(t *testing.T) {
	s := newTaskService()
	ctx := context.Background()
	created, err := s.Create(ctx, "alice", CreateTaskInput{Text: "task"})
	require.NoError(t, err)

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{"text":null}`, `{"completed":null}`} {
		_, err := s.Update(ctx, "alice", created.ID, patch(t, body))
		assert.True(t, domain.IsValidation(err), body)
	}

	task, err := s.Update(ctx, "alice", created.ID, patch(t, `{"text":"a"}`))
	require.NoError(t, err)
	assert.Equal(t, "a", task.Text)
}

func TestCrossUserIsolation(t *testing.T) {
	s := newTaskService()
	ctx := context.Background()

	mine, err := s.Create(ctx, "alice", CreateTaskInput{Text: "alice's"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "bob", CreateTaskInput{Text: "bob's"})
	require.NoError(t, err)

	bobs, err := s.List(ctx, "bob", domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "bob's", bobs[0].Text)

	_, err = s.Update(ctx, "bob", mine.ID, patch(t, `{"completed":true}`))
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = s.Update(ctx, "bob", mine.ID, patch(t, `{}`))
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "bob", mine.ID), domain.ErrTaskNotFound)

	n, err := s.ClearCompleted(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, n)

	alices, err := s.List(ctx, "alice", domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, alices, 1)
	assert.False(t, alices[0].Completed)
}

func TestDeleteMissingTask(t *testing.T) {
	s := newTaskService()
	assert.ErrorIs(t, s.Delete(context.Background(), "alice", "nope"), domain.ErrTaskNotFound)
}

func TestClearCompletedIsIdempotent(t *testing.T) {
	s := newTaskService()
	ctx := context.Background()

	a, err := s.Create(ctx, "alice", CreateTaskInput{Text: "a"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "alice", CreateTaskInput{Text: "b"})
	require.NoError(t, err)
	_, err = s.Update(ctx, "alice", a.ID, patch(t, `{"completed":true}`))
	require.NoError(t, err)

	n, err := s.ClearCompleted(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	after, err := s.List(ctx, "alice", domain.FilterAll)
	require.NoError(t, err)

	n, err = s.ClearCompleted(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, n)

	again, err := s.List(ctx, "alice", domain.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, after, again)
}

func TestListFilter(t *testing.T) {
	s := newTaskService()
	ctx := context.Background()
	a, err := s.Create(ctx, "alice", CreateTaskInput{Text: "a"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "alice", CreateTaskInput{Text: "b"})
	require.NoError(t, err)
	_, err = s.Update(ctx, "alice", a.ID, patch(t, `{"completed":true}`))
	require.NoError(t, err)

	active, err := s.List(ctx, "alice", domain.FilterActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "b", active[0].Text)

	completed, err := s.List(ctx, "alice", domain.FilterCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "a", completed[0].Text)
}
