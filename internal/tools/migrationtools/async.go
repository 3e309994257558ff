package migrationtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/resourceuri"
	"github.com/srcp/schema-registry-controlplane/internal/task"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
)

// migrationTaskView shapes a migration-typed task for tool output.
func migrationTaskView(t *task.Task) map[string]any {
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
	if reg, ok := t.Metadata["targetRegistry"].(string); ok && reg != "" {
		out["resourceUri"] = resourceuri.Migration(reg, t.ID)
	}
	return out
}

// --- listMigrations ---

type ListMigrations struct{ tasks *task.Manager }

func NewListMigrations(tasks *task.Manager) *ListMigrations { return &ListMigrations{tasks: tasks} }

func (t *ListMigrations) Name() string { return "listMigrations" }
func (t *ListMigrations) Description() string {
	return "List migration tasks the control plane has run or is running, optionally filtered by status."
}
func (t *ListMigrations) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "status": {"type": "string", "enum": ["PENDING", "RUNNING", "COMPLETED", "FAILED", "CANCELLED"]}
  }
}`)
}

type listMigrationsParams struct {
	Status string `json:"status,omitempty"`
}

func (t *ListMigrations) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listMigrationsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	listed := t.tasks.List(task.TypeMigration, task.Status(p.Status))
	views := make([]map[string]any, 0, len(listed))
	for _, tk := range listed {
		views = append(views, migrationTaskView(tk))
	}
	return mcp.JSONResult(map[string]any{"migrations": views, "total": len(views)})
}

// --- getMigrationStatus ---

type GetMigrationStatus struct{ tasks *task.Manager }

func NewGetMigrationStatus(tasks *task.Manager) *GetMigrationStatus {
	return &GetMigrationStatus{tasks: tasks}
}

func (t *GetMigrationStatus) Name() string { return "getMigrationStatus" }
func (t *GetMigrationStatus) Description() string {
	return "Return a migration task's status, progress, and result once finished."
}
func (t *GetMigrationStatus) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "migrationId": {"type": "string"}
  },
  "required": ["migrationId"]
}`)
}

type getMigrationStatusParams struct {
	MigrationID string `json:"migrationId"`
}

func (t *GetMigrationStatus) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p getMigrationStatusParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	found := t.tasks.Get(p.MigrationID)
	if found == nil {
		return tools.ErrorResult(fmt.Errorf("unknown migration %q", p.MigrationID))
	}
	if found.Type != task.TypeMigration {
		return tools.ErrorResult(fmt.Errorf("task %q is %s, not a migration", p.MigrationID, found.Type))
	}
	return mcp.JSONResult(migrationTaskView(found))
}
