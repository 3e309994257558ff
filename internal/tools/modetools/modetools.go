// Package modetools implements the write-mode tool group: getMode, updateMode, getSubjectMode, updateSubjectMode.
package modetools

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

type updateModeParams struct {
	Registry string `json:"registry,omitempty"`
	Context  string `json:"context,omitempty"`
	Mode     string `json:"mode"`
}

type subjectModeParams struct {
	Registry string `json:"registry,omitempty"`
	Subject  string `json:"subject"`
	Context  string `json:"context,omitempty"`
}

type updateSubjectModeParams struct {
	Registry string `json:"registry,omitempty"`
	Subject  string `json:"subject"`
	Context  string `json:"context,omitempty"`
	Mode     string `json:"mode"`
}

// --- getMode ---

type GetMode struct{ manager *registry.Manager }

func NewGetMode(manager *registry.Manager) *GetMode { return &GetMode{manager: manager} }

func (t *GetMode) Name() string        { return "getMode" }
func (t *GetMode) Description() string { return "Fetch a context's write mode." }
func (t *GetMode) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"registry":{"type":"string"},"context":{"type":"string"}}}`)
}

func (t *GetMode) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p contextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	mode, err := client.GetMode(ctx, p.Context, "")
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"context": p.Context, "mode": mode})
}

// --- updateMode ---

type UpdateMode struct{ manager *registry.Manager }

func NewUpdateMode(manager *registry.Manager) *UpdateMode { return &UpdateMode{manager: manager} }

func (t *UpdateMode) Name() string        { return "updateMode" }
func (t *UpdateMode) Description() string { return "Set a context's write mode (READWRITE, READONLY, or IMPORT)." }
func (t *UpdateMode) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "context": {"type": "string"},
    "mode": {"type": "string", "enum": ["READWRITE", "READONLY", "IMPORT"]}
  },
  "required": ["mode"]
}`)
}

func (t *UpdateMode) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p updateModeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Mode == "" {
		return tools.ErrorResult(errors.New("mode is required"))
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
	mode := registry.Mode(p.Mode)
	if err := client.SetMode(ctx, p.Context, "", mode); err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"context": p.Context, "mode": mode})
}

// --- getSubjectMode ---

type GetSubjectMode struct{ manager *registry.Manager }

func NewGetSubjectMode(manager *registry.Manager) *GetSubjectMode {
	return &GetSubjectMode{manager: manager}
}

func (t *GetSubjectMode) Name() string        { return "getSubjectMode" }
func (t *GetSubjectMode) Description() string { return "Fetch a subject's write mode." }
func (t *GetSubjectMode) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"registry": {"type": "string"}, "subject": {"type": "string"}, "context": {"type": "string"}},
  "required": ["subject"]
}`)
}

func (t *GetSubjectMode) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p subjectModeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	mode, err := client.GetMode(ctx, p.Context, p.Subject)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"subject": p.Subject, "mode": mode})
}

// --- updateSubjectMode ---

type UpdateSubjectMode struct{ manager *registry.Manager }

func NewUpdateSubjectMode(manager *registry.Manager) *UpdateSubjectMode {
	return &UpdateSubjectMode{manager: manager}
}

func (t *UpdateSubjectMode) Name() string        { return "updateSubjectMode" }
func (t *UpdateSubjectMode) Description() string { return "Set a subject's write mode." }
func (t *UpdateSubjectMode) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "subject": {"type": "string"},
    "context": {"type": "string"},
    "mode": {"type": "string", "enum": ["READWRITE", "READONLY", "IMPORT"]}
  },
  "required": ["subject", "mode"]
}`)
}

func (t *UpdateSubjectMode) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p updateSubjectModeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Subject == "" || p.Mode == "" {
		return tools.ErrorResult(errors.New("subject and mode are required"))
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
	mode := registry.Mode(p.Mode)
	if err := client.SetMode(ctx, p.Context, p.Subject, mode); err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"subject": p.Subject, "mode": mode})
}
