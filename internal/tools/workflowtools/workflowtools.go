// Package workflowtools implements the workflow and elicitation tool
// group: startWorkflow, listWorkflows, workflowStatus, abortWorkflow,
// describeWorkflow, the four guided convenience entry points, and
// submitElicitationResponse, which demultiplexes a response to whichever
// manager is waiting on it (workflow runtime, interactive wrapper, or a
// bare elicitation).
package workflowtools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
	"github.com/srcp/schema-registry-controlplane/internal/workflow"
)

// Resumer is implemented by the interactive tool wrappers: a submitted
// response may belong to a wrapper-opened elicitation, in which case the
// wrapper assembles the full inputs and re-invokes its base tool.
type Resumer interface {
	Resume(ctx context.Context, requestID string, values map[string]any) (*mcp.ToolsCallResult, bool, error)
}

// --- startWorkflow ---

type StartWorkflow struct{ runtime *workflow.Runtime }

func NewStartWorkflow(runtime *workflow.Runtime) *StartWorkflow {
	return &StartWorkflow{runtime: runtime}
}

func (t *StartWorkflow) Name() string { return "startWorkflow" }
func (t *StartWorkflow) Description() string {
	return "Start a multi-step guided workflow and return its first elicitation step."
}
func (t *StartWorkflow) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "workflow": {"type": "string", "description": "Workflow name, e.g. schema_migration_wizard"},
    "context": {"type": "object", "description": "Initial values seeded into the workflow's responses"}
  },
  "required": ["workflow"]
}`)
}

type startWorkflowParams struct {
	Workflow string         `json:"workflow"`
	Context  map[string]any `json:"context,omitempty"`
}

func (t *StartWorkflow) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p startWorkflowParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Workflow == "" {
		return tools.ErrorResult(errors.New("workflow is required"))
	}
	return startNamed(t.runtime, p.Workflow, p.Context)
}

func startNamed(runtime *workflow.Runtime, name string, initialContext map[string]any) (*mcp.ToolsCallResult, error) {
	started, err := runtime.Start(name, initialContext)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{
		"instanceId":  started.Instance.ID,
		"workflow":    started.Instance.WorkflowName,
		"currentStep": started.Instance.CurrentStepID,
		"request":     started.Request,
	})
}

// --- listWorkflows ---

type ListWorkflows struct{ runtime *workflow.Runtime }

func NewListWorkflows(runtime *workflow.Runtime) *ListWorkflows {
	return &ListWorkflows{runtime: runtime}
}

func (t *ListWorkflows) Name() string { return "listWorkflows" }
func (t *ListWorkflows) Description() string {
	return "List registered workflow definitions and any running or finished instances."
}
func (t *ListWorkflows) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "workflow": {"type": "string", "description": "Filter instances to one workflow"},
    "status": {"type": "string", "enum": ["active", "completed", "aborted"]}
  }
}`)
}

type listWorkflowsParams struct {
	Workflow string `json:"workflow,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (t *ListWorkflows) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listWorkflowsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	instances := t.runtime.ListInstances(p.Workflow, workflow.Status(p.Status))
	return mcp.JSONResult(map[string]any{
		"workflows": t.runtime.ListDefinitions(),
		"instances": instances,
	})
}

// --- workflowStatus ---

type WorkflowStatus struct{ runtime *workflow.Runtime }

func NewWorkflowStatus(runtime *workflow.Runtime) *WorkflowStatus {
	return &WorkflowStatus{runtime: runtime}
}

func (t *WorkflowStatus) Name() string { return "workflowStatus" }
func (t *WorkflowStatus) Description() string {
	return "Return one workflow instance's current step, history, and accumulated responses."
}
func (t *WorkflowStatus) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "instanceId": {"type": "string"}
  },
  "required": ["instanceId"]
}`)
}

type instanceIDParams struct {
	InstanceID string `json:"instanceId"`
}

func (t *WorkflowStatus) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p instanceIDParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	inst, err := t.runtime.Get(p.InstanceID)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(inst)
}

// --- abortWorkflow ---

type AbortWorkflow struct{ runtime *workflow.Runtime }

func NewAbortWorkflow(runtime *workflow.Runtime) *AbortWorkflow {
	return &AbortWorkflow{runtime: runtime}
}

func (t *AbortWorkflow) Name() string { return "abortWorkflow" }
func (t *AbortWorkflow) Description() string {
	return "Abort a running workflow instance, cancelling its pending elicitation step."
}
func (t *AbortWorkflow) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "instanceId": {"type": "string"}
  },
  "required": ["instanceId"]
}`)
}

func (t *AbortWorkflow) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p instanceIDParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	inst, err := t.runtime.Abort(p.InstanceID)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{
		"instanceId": inst.ID,
		"workflow":   inst.WorkflowName,
		"status":     inst.Status,
		"abortedAt":  inst.CompletedAt,
	})
}

// --- describeWorkflow ---

type DescribeWorkflow struct{ runtime *workflow.Runtime }

func NewDescribeWorkflow(runtime *workflow.Runtime) *DescribeWorkflow {
	return &DescribeWorkflow{runtime: runtime}
}

func (t *DescribeWorkflow) Name() string { return "describeWorkflow" }
func (t *DescribeWorkflow) Description() string {
	return "Return a workflow definition's steps, fields, and branching for inspection."
}
func (t *DescribeWorkflow) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "workflow": {"type": "string"}
  },
  "required": ["workflow"]
}`)
}

type workflowNameParams struct {
	Workflow string `json:"workflow"`
}

func (t *DescribeWorkflow) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p workflowNameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	def, err := t.runtime.Describe(p.Workflow)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(def)
}

// --- submitElicitationResponse ---

type SubmitElicitationResponse struct {
	runtime  *workflow.Runtime
	elicitor *elicitation.Manager
	resumer  Resumer // optional
}

func NewSubmitElicitationResponse(runtime *workflow.Runtime, elicitor *elicitation.Manager, resumer Resumer) *SubmitElicitationResponse {
	return &SubmitElicitationResponse{runtime: runtime, elicitor: elicitor, resumer: resumer}
}

func (t *SubmitElicitationResponse) Name() string { return "submitElicitationResponse" }
func (t *SubmitElicitationResponse) Description() string {
	return "Answer a pending elicitation. Workflow-bound responses advance their workflow; wrapper-bound responses resume the interrupted tool."
}
func (t *SubmitElicitationResponse) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "requestId": {"type": "string"},
    "values": {"type": "object"}
  },
  "required": ["requestId", "values"]
}`)
}

type submitParams struct {
	RequestID string         `json:"requestId"`
	Values    map[string]any `json:"values"`
}

func (t *SubmitElicitationResponse) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p submitParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.RequestID == "" {
		return tools.ErrorResult(errors.New("requestId is required"))
	}

	if t.runtime.Owns(p.RequestID) {
		outcome, err := t.runtime.Submit(p.RequestID, p.Values)
		if err != nil {
			return tools.ErrorResult(err)
		}
		out := map[string]any{
			"instanceId": outcome.Instance.ID,
			"workflow":   outcome.Instance.WorkflowName,
			"finished":   outcome.Finished,
		}
		if outcome.Finished {
			out["stepsCompleted"] = len(outcome.Instance.StepHistory)
			out["responses"] = outcome.Instance.Responses
			out["completedAt"] = outcome.Instance.CompletedAt
		} else {
			out["currentStep"] = outcome.Instance.CurrentStepID
			out["request"] = outcome.Request
		}
		return mcp.JSONResult(out)
	}

	if t.resumer != nil {
		result, handled, err := t.resumer.Resume(ctx, p.RequestID, p.Values)
		if err != nil {
			return tools.ErrorResult(err)
		}
		if handled {
			return result, nil
		}
	}

	if err := t.elicitor.Submit(elicitation.Response{RequestID: p.RequestID, Values: p.Values}); err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"requestId": p.RequestID, "accepted": true})
}

// --- guided convenience entry points ---

// guidedEntry is the shared shape of the four guided* tools: each is a
// one-shot alias for startWorkflow with the workflow name pinned.
type guidedEntry struct {
	runtime      *workflow.Runtime
	name         string
	workflowName string
	description  string
}

func (t *guidedEntry) Name() string        { return t.name }
func (t *guidedEntry) Description() string { return t.description }
func (t *guidedEntry) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "context": {"type": "object", "description": "Initial values seeded into the workflow"}
  }
}`)
}

type guidedParams struct {
	Context map[string]any `json:"context,omitempty"`
}

func (t *guidedEntry) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p guidedParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return tools.InvalidParams(err)
		}
	}
	return startNamed(t.runtime, t.workflowName, p.Context)
}

func NewGuidedSchemaMigration(runtime *workflow.Runtime) mcp.Tool {
	return &guidedEntry{
		runtime:      runtime,
		name:         "guidedSchemaMigration",
		workflowName: "schema_migration_wizard",
		description:  "Start the schema migration wizard: a guided walk through source, target, and migration options.",
	}
}

func NewGuidedContextReorganization(runtime *workflow.Runtime) mcp.Tool {
	return &guidedEntry{
		runtime:      runtime,
		name:         "guidedContextReorganization",
		workflowName: "context_reorganization",
		description:  "Start the context reorganization workflow: move subjects between contexts with conflict handling.",
	}
}

func NewGuidedDisasterRecovery(runtime *workflow.Runtime) mcp.Tool {
	return &guidedEntry{
		runtime:      runtime,
		name:         "guidedDisasterRecovery",
		workflowName: "disaster_recovery_setup",
		description:  "Start the disaster recovery setup workflow: configure a standby registry and replication checks.",
	}
}

func NewGuidedSchemaEvolution(runtime *workflow.Runtime) mcp.Tool {
	return &guidedEntry{
		runtime:      runtime,
		name:         "guidedSchemaEvolution",
		workflowName: "schema_evolution_assistant",
		description:  "Start the schema evolution assistant: plan a compatible change to an existing subject.",
	}
}
