package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriorityFallsBackToDefault(t *testing.T) {
	assert.Equal(t, PriorityHigh, ParsePriority("high"))
	assert.Equal(t, PriorityLow, ParsePriority("low"))
	assert.Equal(t, PriorityMedium, ParsePriority(""))
	assert.Equal(t, PriorityMedium, ParsePriority("urgent"))
}

func TestParseStatusFallsBackToTodo(t *testing.T) {
	assert.Equal(t, StatusInProgress, ParseStatus("in-progress"))
	assert.Equal(t, StatusDone, ParseStatus("done"))
	assert.Equal(t, StatusTodo, ParseStatus("blocked"))
}

func TestParseTaskFilter(t *testing.T) {
	f, err := ParseTaskFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseTaskFilter("completed")
	require.NoError(t, err)
	assert.Equal(t, FilterCompleted, f)

	_, err = ParseTaskFilter("archived")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestTaskFilterMatches(t *testing.T) {
	open := &Task{Completed: false}
	closed := &Task{Completed: true}

	assert.True(t, FilterAll.Matches(open))
	assert.True(t, FilterAll.Matches(closed))
	assert.True(t, FilterActive.Matches(open))
	assert.False(t, FilterActive.Matches(closed))
	assert.False(t, FilterCompleted.Matches(open))
	assert.True(t, FilterCompleted.Matches(closed))
}

func TestTaskPatchDistinguishesAbsentFromNull(t *testing.T) {
	var patch TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"completed":true,"priority":null}`), &patch))

	assert.False(t, patch.Text.Set)
	assert.True(t, patch.Completed.Set)
	assert.False(t, patch.Completed.Null)
	assert.True(t, patch.Completed.Value)
	assert.True(t, patch.Priority.Set)
	assert.True(t, patch.Priority.Null)
	assert.False(t, patch.Status.Set)
}

func TestTaskPatchRejectsWrongType(t *testing.T) {
	var patch TaskPatch
	err := json.Unmarshal([]byte(`{"completed":"yes"}`), &patch)
	assert.Error(t, err)
}

func TestTaskChangesApply(t *testing.T) {
	task := &Task{Text: "old", Priority: PriorityLow, Status: StatusTodo}
	text := "new"
	done := true
	changes := TaskChanges{Text: &text, Completed: &done}

	require.False(t, changes.Empty())
	changes.Apply(task)

	assert.Equal(t, "new", task.Text)
	assert.True(t, task.Completed)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.True(t, TaskChanges{}.Empty())
}

func TestUserPublicOmitsHash(t *testing.T) {
	u := &User{ID: "u1", Username: "alice", Email: "alice@x.com", PasswordHash: "secret-hash"}
	data, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-hash")
	assert.JSONEq(t, `{"id":"u1","username":"alice","email":"alice@x.com"}`, string(data))
}
