// Package configtools implements the compatibility-config tool group:
// getGlobalConfig, updateGlobalConfig, getSubjectConfig,
// updateSubjectConfig.
package configtools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/srcp/schema-registry-controlplane/internal/guards"
	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/registry"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
)

type contextParams struct {
	Registry string `json:"registry,omitempty"`
	Context  string `json:"context,omitempty"`
}

type updateGlobalParams struct {
	Registry      string `json:"registry,omitempty"`
	Context       string `json:"context,omitempty"`
	Compatibility string `json:"compatibility"`
}

type subjectConfigParams struct {
	Registry string `json:"registry,omitempty"`
	Subject  string `json:"subject"`
	Context  string `json:"context,omitempty"`
}

type updateSubjectParams struct {
	Registry      string `json:"registry,omitempty"`
	Subject       string `json:"subject"`
	Context       string `json:"context,omitempty"`
	Compatibility string `json:"compatibility"`
}

// --- getGlobalConfig ---

type GetGlobalConfig struct{ manager *registry.Manager }

func NewGetGlobalConfig(manager *registry.Manager) *GetGlobalConfig {
	return &GetGlobalConfig{manager: manager}
}

func (t *GetGlobalConfig) Name() string        { return "getGlobalConfig" }
func (t *GetGlobalConfig) Description() string { return "Fetch a context's global compatibility setting." }
func (t *GetGlobalConfig) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"registry":{"type":"string"},"context":{"type":"string"}}}`)
}

func (t *GetGlobalConfig) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p contextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	level, err := client.GetGlobalConfig(ctx, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"context": p.Context, "compatibility": level})
}

// --- updateGlobalConfig ---

type UpdateGlobalConfig struct{ manager *registry.Manager }

func NewUpdateGlobalConfig(manager *registry.Manager) *UpdateGlobalConfig {
	return &UpdateGlobalConfig{manager: manager}
}

func (t *UpdateGlobalConfig) Name() string        { return "updateGlobalConfig" }
func (t *UpdateGlobalConfig) Description() string { return "Set a context's global compatibility setting." }
func (t *UpdateGlobalConfig) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "context": {"type": "string"},
    "compatibility": {"type": "string", "enum": ["BACKWARD", "BACKWARD_TRANSITIVE", "FORWARD", "FORWARD_TRANSITIVE", "FULL", "FULL_TRANSITIVE", "NONE"]}
  },
  "required": ["compatibility"]
}`)
}

func (t *UpdateGlobalConfig) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p updateGlobalParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Compatibility == "" {
		return tools.ErrorResult(errors.New("compatibility is required"))
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
	level := registry.CompatibilityLevel(p.Compatibility)
	if err := client.SetGlobalConfig(ctx, p.Context, level); err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"context": p.Context, "compatibility": level})
}

// --- getSubjectConfig ---

type GetSubjectConfig struct{ manager *registry.Manager }

func NewGetSubjectConfig(manager *registry.Manager) *GetSubjectConfig {
	return &GetSubjectConfig{manager: manager}
}

func (t *GetSubjectConfig) Name() string        { return "getSubjectConfig" }
func (t *GetSubjectConfig) Description() string { return "Fetch a subject's compatibility override, if any." }
func (t *GetSubjectConfig) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"registry": {"type": "string"}, "subject": {"type": "string"}, "context": {"type": "string"}},
  "required": ["subject"]
}`)
}

func (t *GetSubjectConfig) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p subjectConfigParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	level, err := client.GetSubjectConfig(ctx, p.Subject, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"subject": p.Subject, "compatibility": level})
}

// --- updateSubjectConfig ---

type UpdateSubjectConfig struct{ manager *registry.Manager }

func NewUpdateSubjectConfig(manager *registry.Manager) *UpdateSubjectConfig {
	return &UpdateSubjectConfig{manager: manager}
}

func (t *UpdateSubjectConfig) Name() string        { return "updateSubjectConfig" }
func (t *UpdateSubjectConfig) Description() string { return "Set a subject-level compatibility override." }
func (t *UpdateSubjectConfig) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "subject": {"type": "string"},
    "context": {"type": "string"},
    "compatibility": {"type": "string", "enum": ["BACKWARD", "BACKWARD_TRANSITIVE", "FORWARD", "FORWARD_TRANSITIVE", "FULL", "FULL_TRANSITIVE", "NONE"]}
  },
  "required": ["subject", "compatibility"]
}`)
}

func (t *UpdateSubjectConfig) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p updateSubjectParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Subject == "" || p.Compatibility == "" {
		return tools.ErrorResult(errors.New("subject and compatibility are required"))
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
	level := registry.CompatibilityLevel(p.Compatibility)
	if err := client.SetSubjectConfig(ctx, p.Subject, p.Context, level); err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"subject": p.Subject, "compatibility": level})
}
