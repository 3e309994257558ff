package tasktools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcp/schema-registry-controlplane/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCreateAsyncTask(t *testing.T) {
	tasks := task.NewManager(2, testLogger())
	tool := NewCreateAsyncTask(tasks)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"taskType":"MIGRATION","metadata":{"registry":"prod"}}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"status": "PENDING"`)
	assert.Contains(t, res.Content[0].Text, "registry://prod/tasks/")
}

func TestCreateAsyncTaskRejectsUnknownType(t *testing.T) {
	tool := NewCreateAsyncTask(task.NewManager(2, testLogger()))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"taskType":"NOPE"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetTaskStatus(t *testing.T) {
	tasks := task.NewManager(2, testLogger())
	created, err := tasks.Create(task.TypeCleanup, nil)
	require.NoError(t, err)

	tool := NewGetTaskStatus(tasks)
	res, err := tool.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"taskId":%q}`, created.ID)))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, created.ID)

	res, err = tool.Execute(context.Background(), json.RawMessage(`{"taskId":"missing"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListTasksFilters(t *testing.T) {
	tasks := task.NewManager(2, testLogger())
	_, err := tasks.Create(task.TypeMigration, nil)
	require.NoError(t, err)
	_, err = tasks.Create(task.TypeCleanup, nil)
	require.NoError(t, err)

	tool := NewListTasks(tasks)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"taskType":"MIGRATION"}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"total": 1`)

	res, err = tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"total": 2`)
}

func TestCancelTaskPending(t *testing.T) {
	tasks := task.NewManager(2, testLogger())
	created, err := tasks.Create(task.TypeExport, nil)
	require.NoError(t, err)

	tool := NewCancelTask(tasks)
	res, err := tool.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"taskId":%q}`, created.ID)))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"cancelled": true`)
	assert.Equal(t, task.StatusCancelled, tasks.Get(created.ID).Status)
}

func TestCancelAllAndReset(t *testing.T) {
	tasks := task.NewManager(2, testLogger())
	for range 3 {
		_, err := tasks.Create(task.TypeSync, nil)
		require.NoError(t, err)
	}

	cancelAll := NewCancelAllTasks(tasks)
	res, err := cancelAll.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"cancelled": 3`)

	reset := NewResetTaskQueue(tasks)
	res, err = reset.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"removed": 3`)
	assert.Empty(t, tasks.List("", ""))
}
