// Package schematools implements the schema-level tool group:
// registerSchema, getSchema, getSchemaVersions,
// checkCompatibility, listSubjects, deleteSubject. Mutating tools consult
// registry.Manager.CheckWritable before writing and run
// guards.WriteGuards for the advisory readonly/reachability signal first.
package schematools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/srcp/schema-registry-controlplane/internal/guards"
	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/registry"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
)

// --- registerSchema ---

type RegisterSchema struct {
	manager *registry.Manager
}

func NewRegisterSchema(manager *registry.Manager) *RegisterSchema {
	return &RegisterSchema{manager: manager}
}

func (t *RegisterSchema) Name() string { return "registerSchema" }
func (t *RegisterSchema) Description() string {
	return "Register a new schema version for a subject, returning its schema id."
}
func (t *RegisterSchema) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "subject": {"type": "string"},
    "schema": {"type": "string", "description": "Schema body, verbatim"},
    "schemaType": {"type": "string", "enum": ["AVRO", "JSON", "PROTOBUF"], "default": "AVRO"},
    "context": {"type": "string"}
  },
  "required": ["subject", "schema"]
}`)
}

type registerSchemaParams struct {
	Registry   string `json:"registry,omitempty"`
	Subject    string `json:"subject"`
	Schema     string `json:"schema"`
	SchemaType string `json:"schemaType,omitempty"`
	Context    string `json:"context,omitempty"`
}

func (t *RegisterSchema) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p registerSchemaParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Subject == "" || p.Schema == "" {
		return tools.ErrorResult(fmt.Errorf("subject and schema are required"))
	}
	schemaType := registry.SchemaTypeAvro
	if p.SchemaType != "" {
		schemaType = registry.SchemaType(p.SchemaType)
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
	id, err := client.RegisterSchema(ctx, p.Subject, p.Schema, schemaType, p.Context, nil)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{
		"id":      id,
		"subject": p.Subject,
		"advisory": outcome.FormatAdvisoryMessage(),
	})
}

// --- getSchema ---

type GetSchema struct {
	manager *registry.Manager
}

func NewGetSchema(manager *registry.Manager) *GetSchema { return &GetSchema{manager: manager} }

func (t *GetSchema) Name() string        { return "getSchema" }
func (t *GetSchema) Description() string { return "Fetch one version of a subject's schema, or the latest version when omitted." }
func (t *GetSchema) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "subject": {"type": "string"},
    "version": {"type": "integer", "description": "Defaults to the latest version"},
    "context": {"type": "string"}
  },
  "required": ["subject"]
}`)
}

type getSchemaParams struct {
	Registry string `json:"registry,omitempty"`
	Subject  string `json:"subject"`
	Version  int    `json:"version,omitempty"`
	Context  string `json:"context,omitempty"`
}

func (t *GetSchema) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p getSchemaParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	version := p.Version
	if version == 0 {
		versions, err := client.ListVersions(ctx, p.Subject, p.Context)
		if err != nil {
			return tools.ErrorResult(err)
		}
		if len(versions) == 0 {
			return tools.ErrorResult(fmt.Errorf("subject %q has no versions", p.Subject))
		}
		version = versions[len(versions)-1]
	}
	record, err := client.GetSchema(ctx, p.Subject, version, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(record)
}

// --- getSchemaVersions ---

type GetSchemaVersions struct {
	manager *registry.Manager
}

func NewGetSchemaVersions(manager *registry.Manager) *GetSchemaVersions {
	return &GetSchemaVersions{manager: manager}
}

func (t *GetSchemaVersions) Name() string        { return "getSchemaVersions" }
func (t *GetSchemaVersions) Description() string { return "List the version numbers registered for a subject." }
func (t *GetSchemaVersions) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "subject": {"type": "string"},
    "context": {"type": "string"}
  },
  "required": ["subject"]
}`)
}

type subjectParams struct {
	Registry string `json:"registry,omitempty"`
	Subject  string `json:"subject"`
	Context  string `json:"context,omitempty"`
}

func (t *GetSchemaVersions) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p subjectParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	versions, err := client.ListVersions(ctx, p.Subject, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"subject": p.Subject, "versions": versions})
}

// --- checkCompatibility ---

type CheckCompatibility struct {
	manager *registry.Manager
}

func NewCheckCompatibility(manager *registry.Manager) *CheckCompatibility {
	return &CheckCompatibility{manager: manager}
}

func (t *CheckCompatibility) Name() string { return "checkCompatibility" }
func (t *CheckCompatibility) Description() string {
	return "Check whether a candidate schema is compatible with a subject's registered versions, per its compatibility setting."
}
func (t *CheckCompatibility) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "subject": {"type": "string"},
    "schema": {"type": "string"},
    "schemaType": {"type": "string", "enum": ["AVRO", "JSON", "PROTOBUF"], "default": "AVRO"},
    "context": {"type": "string"}
  },
  "required": ["subject", "schema"]
}`)
}

func (t *CheckCompatibility) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p registerSchemaParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Subject == "" || p.Schema == "" {
		return tools.ErrorResult(fmt.Errorf("subject and schema are required"))
	}
	schemaType := registry.SchemaTypeAvro
	if p.SchemaType != "" {
		schemaType = registry.SchemaType(p.SchemaType)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	compatible, messages, err := client.CheckCompatibility(ctx, p.Subject, p.Schema, schemaType, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"compatible": compatible, "messages": messages})
}

// --- listSubjects ---

type ListSubjects struct {
	manager *registry.Manager
}

func NewListSubjects(manager *registry.Manager) *ListSubjects { return &ListSubjects{manager: manager} }

func (t *ListSubjects) Name() string        { return "listSubjects" }
func (t *ListSubjects) Description() string { return "List subjects registered in a context." }
func (t *ListSubjects) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "context": {"type": "string"}
  }
}`)
}

type contextParams struct {
	Registry string `json:"registry,omitempty"`
	Context  string `json:"context,omitempty"`
}

func (t *ListSubjects) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p contextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	subjects, err := client.ListSubjects(ctx, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"subjects": subjects})
}

// --- deleteSubject ---

type DeleteSubject struct {
	manager *registry.Manager
}

func NewDeleteSubject(manager *registry.Manager) *DeleteSubject { return &DeleteSubject{manager: manager} }

func (t *DeleteSubject) Name() string        { return "deleteSubject" }
func (t *DeleteSubject) Description() string { return "Soft-delete a subject, returning the versions removed." }
func (t *DeleteSubject) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "subject": {"type": "string"},
    "context": {"type": "string"}
  },
  "required": ["subject"]
}`)
}

func (t *DeleteSubject) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p subjectParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Subject == "" {
		return tools.ErrorResult(fmt.Errorf("subject is required"))
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
	versions, err := client.DeleteSubject(ctx, p.Subject, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"subject": p.Subject, "deletedVersions": versions})
}
