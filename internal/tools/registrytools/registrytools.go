// Package registrytools implements the registry-management tool group:
// listRegistries, getRegistryInfo, testRegistryConnection,
// testAllRegistries, setDefaultRegistry, getDefaultRegistry,
// checkReadonlyMode. Each is a thin params -> manager-call -> JSONResult
// translation; the fleet state itself lives in registry.Manager.
package registrytools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/registry"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
)

// --- listRegistries ---

type ListRegistries struct {
	manager *registry.Manager
}

func NewListRegistries(manager *registry.Manager) *ListRegistries {
	return &ListRegistries{manager: manager}
}

func (t *ListRegistries) Name() string        { return "listRegistries" }
func (t *ListRegistries) Description() string { return "List every registry configured in the fleet, by name." }
func (t *ListRegistries) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *ListRegistries) Execute(_ context.Context, _ json.RawMessage) (*mcp.ToolsCallResult, error) {
	return mcp.JSONResult(map[string]any{
		"registries":      t.manager.List(),
		"defaultRegistry": t.manager.DefaultName(),
	})
}

// --- getRegistryInfo ---

type GetRegistryInfo struct {
	manager *registry.Manager
}

func NewGetRegistryInfo(manager *registry.Manager) *GetRegistryInfo {
	return &GetRegistryInfo{manager: manager}
}

func (t *GetRegistryInfo) Name() string { return "getRegistryInfo" }
func (t *GetRegistryInfo) Description() string {
	return "Return a registry's configured URL, readonly flag, default status, and live connection status."
}
func (t *GetRegistryInfo) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string", "description": "Registry name; omit for the default registry"}
  }
}`)
}

type registryNameParams struct {
	Registry string `json:"registry,omitempty"`
}

func (t *GetRegistryInfo) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p registryNameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	info, err := t.manager.Info(ctx, p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(info)
}

// --- testRegistryConnection ---

type TestRegistryConnection struct {
	manager *registry.Manager
}

func NewTestRegistryConnection(manager *registry.Manager) *TestRegistryConnection {
	return &TestRegistryConnection{manager: manager}
}

func (t *TestRegistryConnection) Name() string { return "testRegistryConnection" }
func (t *TestRegistryConnection) Description() string {
	return "Probe one registry's reachability and round-trip latency."
}
func (t *TestRegistryConnection) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string", "description": "Registry name; omit for the default registry"}
  }
}`)
}

func (t *TestRegistryConnection) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p registryNameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	c, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{
		"registry":   c.Config().Name,
		"connection": c.TestConnection(ctx),
	})
}

// --- testAllRegistries ---

type TestAllRegistries struct {
	manager *registry.Manager
}

func NewTestAllRegistries(manager *registry.Manager) *TestAllRegistries {
	return &TestAllRegistries{manager: manager}
}

func (t *TestAllRegistries) Name() string { return "testAllRegistries" }
func (t *TestAllRegistries) Description() string {
	return "Probe every registry in the fleet and report reachability and latency for each."
}
func (t *TestAllRegistries) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *TestAllRegistries) Execute(ctx context.Context, _ json.RawMessage) (*mcp.ToolsCallResult, error) {
	return mcp.JSONResult(map[string]any{"registries": t.manager.InfoAll(ctx)})
}

// --- setDefaultRegistry ---

type SetDefaultRegistry struct {
	manager *registry.Manager
}

func NewSetDefaultRegistry(manager *registry.Manager) *SetDefaultRegistry {
	return &SetDefaultRegistry{manager: manager}
}

func (t *SetDefaultRegistry) Name() string { return "setDefaultRegistry" }
func (t *SetDefaultRegistry) Description() string {
	return "Change which fleet member an absent registry name resolves to."
}
func (t *SetDefaultRegistry) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string", "description": "Registry name to make the default"}
  },
  "required": ["registry"]
}`)
}

func (t *SetDefaultRegistry) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p registryNameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Registry == "" {
		return tools.ErrorResult(fmt.Errorf("registry is required"))
	}
	if err := t.manager.SetDefault(p.Registry); err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"defaultRegistry": p.Registry})
}

// --- getDefaultRegistry ---

type GetDefaultRegistry struct {
	manager *registry.Manager
}

func NewGetDefaultRegistry(manager *registry.Manager) *GetDefaultRegistry {
	return &GetDefaultRegistry{manager: manager}
}

func (t *GetDefaultRegistry) Name() string        { return "getDefaultRegistry" }
func (t *GetDefaultRegistry) Description() string { return "Return the fleet's current default registry name." }
func (t *GetDefaultRegistry) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *GetDefaultRegistry) Execute(_ context.Context, _ json.RawMessage) (*mcp.ToolsCallResult, error) {
	return mcp.JSONResult(map[string]any{"defaultRegistry": t.manager.DefaultName()})
}

// --- checkReadonlyMode ---

type CheckReadonlyMode struct {
	manager *registry.Manager
}

func NewCheckReadonlyMode(manager *registry.Manager) *CheckReadonlyMode {
	return &CheckReadonlyMode{manager: manager}
}

func (t *CheckReadonlyMode) Name() string { return "checkReadonlyMode" }
func (t *CheckReadonlyMode) Description() string {
	return "Report whether a registry is configured read-only, refusing all mutating tool calls."
}
func (t *CheckReadonlyMode) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string", "description": "Registry name; omit for the default registry"}
  }
}`)
}

func (t *CheckReadonlyMode) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p registryNameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	c, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{
		"registry": c.Config().Name,
		"readonly": c.Config().Readonly,
	})
}
