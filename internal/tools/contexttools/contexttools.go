// Package contexttools implements the context-level tool group:
// listContexts, createContext, deleteContext.
// Confluent Schema Registry has no explicit context-creation endpoint —
// a context exists once any subject or config is written under it, and
// stops existing once it has none. createContext materializes a
// context by writing its global config; deleteContext runs the same
// batch-deletion path clearContextBatch exposes directly.
package contexttools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/srcp/schema-registry-controlplane/internal/guards"
	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/migration"
	"github.com/srcp/schema-registry-controlplane/internal/registry"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
)

// --- listContexts ---

type ListContexts struct {
	manager *registry.Manager
}

func NewListContexts(manager *registry.Manager) *ListContexts { return &ListContexts{manager: manager} }

func (t *ListContexts) Name() string        { return "listContexts" }
func (t *ListContexts) Description() string { return "List the contexts known to a registry." }
func (t *ListContexts) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"}
  }
}`)
}

type registryParams struct {
	Registry string `json:"registry,omitempty"`
}

func (t *ListContexts) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p registryParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	contexts, err := client.ListContexts(ctx)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"contexts": contexts})
}

// --- createContext ---

type CreateContext struct {
	manager *registry.Manager
}

func NewCreateContext(manager *registry.Manager) *CreateContext { return &CreateContext{manager: manager} }

func (t *CreateContext) Name() string { return "createContext" }
func (t *CreateContext) Description() string {
	return "Materialize a context by writing its global compatibility config (Confluent registries have no separate context-creation call)."
}
func (t *CreateContext) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "context": {"type": "string"},
    "compatibility": {"type": "string", "enum": ["BACKWARD", "BACKWARD_TRANSITIVE", "FORWARD", "FORWARD_TRANSITIVE", "FULL", "FULL_TRANSITIVE", "NONE"], "default": "BACKWARD"}
  },
  "required": ["context"]
}`)
}

type createContextParams struct {
	Registry      string `json:"registry,omitempty"`
	Context       string `json:"context"`
	Compatibility string `json:"compatibility,omitempty"`
}

func (t *CreateContext) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p createContextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Context == "" {
		return tools.ErrorResult(errors.New("context is required"))
	}
	level := registry.CompatBackward
	if p.Compatibility != "" {
		level = registry.CompatibilityLevel(p.Compatibility)
	}

	gctx := &guards.GuardContext{RegistryName: p.Registry, Mutating: true}
	guards.PopulateWriteState(ctx, t.manager, gctx)
	outcome := guards.NewRunner().Run(ctx, gctx, guards.WriteGuards())
	if outcome.Blocked {
		return tools.ErrorResult(errors.New(outcome.FormatBlockMessage()))
	}

	client, err := t.manager.CheckWritable(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	if err := client.SetGlobalConfig(ctx, p.Context, level); err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"context": p.Context, "compatibility": level})
}

// --- deleteContext ---

type DeleteContext struct {
	engine *migration.Engine
}

func NewDeleteContext(engine *migration.Engine) *DeleteContext { return &DeleteContext{engine: engine} }

func (t *DeleteContext) Name() string { return "deleteContext" }
func (t *DeleteContext) Description() string {
	return "Delete every subject in a context, leaving it with no further representation on the registry."
}
func (t *DeleteContext) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "context": {"type": "string"},
    "dryRun": {"type": "boolean", "default": false}
  },
  "required": ["context"]
}`)
}

type deleteContextParams struct {
	Registry string `json:"registry,omitempty"`
	Context  string `json:"context"`
	DryRun   bool   `json:"dryRun,omitempty"`
}

func (t *DeleteContext) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p deleteContextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Context == "" {
		return tools.ErrorResult(errors.New("context is required"))
	}
	result, err := t.engine.ClearContextBatch(ctx, migration.ClearContextBatchRequest{
		Registry:      p.Registry,
		Context:       p.Context,
		DeleteContext: true,
		DryRun:        p.DryRun,
	})
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(result)
}
