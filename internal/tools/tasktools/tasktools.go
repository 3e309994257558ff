// Package tasktools implements the async-task tool group: createAsyncTask,
// getTaskStatus, listTasks, cancelTask, cancelAllTasks, resetTaskQueue.
// Tools here are pure views and controls over task.Manager; the bodies of
// the tasks themselves are submitted by the migration tools.
package tasktools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/resourceuri"
	"github.com/srcp/schema-registry-controlplane/internal/task"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
)

// taskView shapes a task.Task for tool output, attaching its resource URI
// when the task's metadata names a registry.
func taskView(t *task.Task) map[string]any {
	out := map[string]any{
		"id":        t.ID,
		"type":      t.Type,
		"status":    t.Status,
		"progress":  t.Progress,
		"createdAt": t.CreatedAt,
	}
	if t.StartedAt != nil {
		out["startedAt"] = t.StartedAt
	}
	if t.CompletedAt != nil {
		out["completedAt"] = t.CompletedAt
	}
	if t.Error != "" {
		out["error"] = t.Error
	}
	if t.Result != nil {
		out["result"] = t.Result
	}
	if len(t.Metadata) > 0 {
		out["metadata"] = t.Metadata
	}
	if reg, ok := t.Metadata["registry"].(string); ok && reg != "" {
		out["resourceUri"] = resourceuri.Task(reg, t.ID)
	}
	return out
}

// --- createAsyncTask ---

type CreateAsyncTask struct{ tasks *task.Manager }

func NewCreateAsyncTask(tasks *task.Manager) *CreateAsyncTask {
	return &CreateAsyncTask{tasks: tasks}
}

func (t *CreateAsyncTask) Name() string { return "createAsyncTask" }
func (t *CreateAsyncTask) Description() string {
	return "Create a tracked async task in PENDING state. No tool executes a task created here; it stays PENDING until it is cancelled or the queue is reset."
}
func (t *CreateAsyncTask) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "taskType": {"type": "string", "enum": ["MIGRATION", "SYNC", "CLEANUP", "EXPORT", "IMPORT"]},
    "metadata": {"type": "object"}
  },
  "required": ["taskType"]
}`)
}

type createAsyncTaskParams struct {
	TaskType string         `json:"taskType"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (t *CreateAsyncTask) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p createAsyncTaskParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	switch task.Type(p.TaskType) {
	case task.TypeMigration, task.TypeSync, task.TypeCleanup, task.TypeExport, task.TypeImport:
	default:
		return tools.ErrorResult(fmt.Errorf("unknown task type %q", p.TaskType))
	}
	created, err := t.tasks.Create(task.Type(p.TaskType), p.Metadata)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(taskView(created))
}

// --- getTaskStatus ---

type GetTaskStatus struct{ tasks *task.Manager }

func NewGetTaskStatus(tasks *task.Manager) *GetTaskStatus { return &GetTaskStatus{tasks: tasks} }

func (t *GetTaskStatus) Name() string { return "getTaskStatus" }
func (t *GetTaskStatus) Description() string {
	return "Return one task's status, progress, and result (if finished)."
}
func (t *GetTaskStatus) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "taskId": {"type": "string"}
  },
  "required": ["taskId"]
}`)
}

type taskIDParams struct {
	TaskID string `json:"taskId"`
}

func (t *GetTaskStatus) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p taskIDParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	found := t.tasks.Get(p.TaskID)
	if found == nil {
		return tools.ErrorResult(fmt.Errorf("unknown task %q", p.TaskID))
	}
	return mcp.JSONResult(taskView(found))
}

// --- listTasks ---

type ListTasks struct{ tasks *task.Manager }

func NewListTasks(tasks *task.Manager) *ListTasks { return &ListTasks{tasks: tasks} }

func (t *ListTasks) Name() string { return "listTasks" }
func (t *ListTasks) Description() string {
	return "List tracked tasks, optionally filtered by type and/or status."
}
func (t *ListTasks) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "taskType": {"type": "string", "enum": ["MIGRATION", "SYNC", "CLEANUP", "EXPORT", "IMPORT"]},
    "status": {"type": "string", "enum": ["PENDING", "RUNNING", "COMPLETED", "FAILED", "CANCELLED"]}
  }
}`)
}

type listTasksParams struct {
	TaskType string `json:"taskType,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (t *ListTasks) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listTasksParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	listed := t.tasks.List(task.Type(p.TaskType), task.Status(p.Status))
	views := make([]map[string]any, 0, len(listed))
	for _, tk := range listed {
		views = append(views, taskView(tk))
	}
	return mcp.JSONResult(map[string]any{"tasks": views, "total": len(views)})
}

// --- cancelTask ---

type CancelTask struct{ tasks *task.Manager }

func NewCancelTask(tasks *task.Manager) *CancelTask { return &CancelTask{tasks: tasks} }

func (t *CancelTask) Name() string { return "cancelTask" }
func (t *CancelTask) Description() string {
	return "Cancel a pending or running task. Finished tasks are left untouched."
}
func (t *CancelTask) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "taskId": {"type": "string"}
  },
  "required": ["taskId"]
}`)
}

func (t *CancelTask) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p taskIDParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	cancelled := t.tasks.Cancel(p.TaskID)
	out := map[string]any{"taskId": p.TaskID, "cancelled": cancelled}
	if found := t.tasks.Get(p.TaskID); found != nil {
		out["status"] = found.Status
	} else {
		out["error"] = fmt.Sprintf("unknown task %q", p.TaskID)
	}
	return mcp.JSONResult(out)
}

// --- cancelAllTasks ---

type CancelAllTasks struct{ tasks *task.Manager }

func NewCancelAllTasks(tasks *task.Manager) *CancelAllTasks { return &CancelAllTasks{tasks: tasks} }

func (t *CancelAllTasks) Name() string        { return "cancelAllTasks" }
func (t *CancelAllTasks) Description() string { return "Cancel every pending or running task." }
func (t *CancelAllTasks) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *CancelAllTasks) Execute(_ context.Context, _ json.RawMessage) (*mcp.ToolsCallResult, error) {
	return mcp.JSONResult(map[string]any{"cancelled": t.tasks.CancelAll()})
}

// --- resetTaskQueue ---

type ResetTaskQueue struct{ tasks *task.Manager }

func NewResetTaskQueue(tasks *task.Manager) *ResetTaskQueue { return &ResetTaskQueue{tasks: tasks} }

func (t *ResetTaskQueue) Name() string { return "resetTaskQueue" }
func (t *ResetTaskQueue) Description() string {
	return "Remove every non-running task from the task table. Running tasks keep going."
}
func (t *ResetTaskQueue) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *ResetTaskQueue) Execute(_ context.Context, _ json.RawMessage) (*mcp.ToolsCallResult, error) {
	return mcp.JSONResult(map[string]any{"removed": t.tasks.ResetQueue()})
}
