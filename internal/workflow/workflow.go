// Package workflow implements the multi-step elicitation state machine
// (C6): a declared sequence of steps with conditional branching, back
// navigation, and per-instance state, driven by a small predicate
// language evaluated against accumulated responses.
package workflow

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

// Condition is one branch predicate: if Field's value (from the merged
// response map) equals Equals, NextStep is the target step id.
type Condition struct {
	Field    string `yaml:"field"`
	Equals   string `yaml:"equals"`
	NextStep string `yaml:"nextStep"`
}

// Step is one node of a workflow definition.
type Step struct {
	ID         string              `yaml:"id"`
	Fields     []elicitation.Field `yaml:"fields"`
	Conditions []Condition         `yaml:"conditions,omitempty"`
	NextSteps  map[string]any      `yaml:"nextSteps,omitempty"` // field-value -> stepId, or "default" -> stepId
	Terminal   bool                `yaml:"terminal,omitempty"`
}

// Definition is a complete workflow: a set of steps reachable by id, with
// one declared starting step. Definitions are data, not code.
type Definition struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	StartStep   string          `yaml:"startStep"`
	Steps       map[string]Step `yaml:"steps"`
}

// Validate checks that every step reference in Conditions/NextSteps points
// at a step that actually exists.
func (d *Definition) Validate() error {
	if _, ok := d.Steps[d.StartStep]; !ok {
		return fmt.Errorf("workflow %q: start step %q is not defined", d.Name, d.StartStep)
	}
	for id, step := range d.Steps {
		for _, c := range step.Conditions {
			if _, ok := d.Steps[c.NextStep]; !ok && c.NextStep != "finish" {
				return fmt.Errorf("workflow %q: step %q condition targets undefined step %q", d.Name, id, c.NextStep)
			}
		}
		for _, target := range step.NextSteps {
			if err := validateNextStepTarget(d, id, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateNextStepTarget(d *Definition, stepID string, target any) error {
	switch t := target.(type) {
	case string:
		if t != "finish" {
			if _, ok := d.Steps[t]; !ok {
				return fmt.Errorf("workflow %q: step %q targets undefined step %q", d.Name, stepID, t)
			}
		}
	case map[string]any:
		for _, v := range t {
			if err := validateNextStepTarget(d, stepID, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Status is an instance's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Instance is one running (or finished) execution of a Definition.
type Instance struct {
	ID             string         `json:"instanceId"`
	WorkflowName   string         `json:"workflowName"`
	CurrentStepID  string         `json:"currentStepId"`
	StepHistory    []string       `json:"stepHistory"`
	Responses      map[string]any `json:"responses"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Status         Status         `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
	pendingRequest string         // elicitation request id currently open for this instance
}

// Runtime drives workflow instances against a definition registry and an
// elicitation manager it shares with the rest of the control plane.
type Runtime struct {
	mu          sync.Mutex
	definitions map[string]*Definition
	instances   map[string]*Instance
	byRequest   map[string]string // elicitation request id -> instance id
	elicitor    *elicitation.Manager
}

// NewRuntime builds a Runtime bound to the given elicitation manager.
func NewRuntime(elicitor *elicitation.Manager) *Runtime {
	return &Runtime{
		definitions: make(map[string]*Definition),
		instances:   make(map[string]*Instance),
		byRequest:   make(map[string]string),
		elicitor:    elicitor,
	}
}

// Register adds a validated definition to the runtime.
func (r *Runtime) Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Name] = def
	return nil
}

// ListDefinitions returns the names of every registered workflow.
func (r *Runtime) ListDefinitions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	return names
}

// Describe returns one definition's steps, for introspection tools.
func (r *Runtime) Describe(name string) (*Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.definitions[name]
	if !ok {
		return nil, srerr.New(srerr.WorkflowUnknown, "unknown workflow %q", name)
	}
	return def, nil
}

// StartResult is what Start hands back: the new instance plus the
// elicitation request for its first step.
type StartResult struct {
	Instance *Instance           `json:"instance"`
	Request  elicitation.Request `json:"request"`
}

// Start creates a new Instance at the definition's start step and opens
// its first elicitation request.
func (r *Runtime) Start(workflowName string, initialContext map[string]any) (*StartResult, error) {
	r.mu.Lock()
	def, ok := r.definitions[workflowName]
	r.mu.Unlock()
	if !ok {
		return nil, srerr.New(srerr.WorkflowUnknown, "unknown workflow %q", workflowName)
	}

	responses := map[string]any{}
	for k, v := range initialContext {
		responses[k] = v
	}

	inst := &Instance{
		ID:            uuid.NewString(),
		WorkflowName:  workflowName,
		CurrentStepID: def.StartStep,
		StepHistory:   []string{def.StartStep},
		Responses:     responses,
		Status:        StatusActive,
		CreatedAt:     time.Now(),
	}

	req, err := r.openStepRequest(def, inst, def.Steps[def.StartStep])
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.instances[inst.ID] = inst
	r.mu.Unlock()

	return &StartResult{Instance: inst, Request: req}, nil
}

func (r *Runtime) openStepRequest(def *Definition, inst *Instance, step Step) (elicitation.Request, error) {
	fields := append([]elicitation.Field(nil), step.Fields...)
	if len(inst.StepHistory) > 1 {
		fields = append(fields, elicitation.Field{
			Name:        "_workflow_action",
			Kind:        elicitation.KindString,
			Required:    false,
			Description: "set to \"back\" to return to the previous step",
		})
	}
	req := r.elicitor.Create(fields, 600, inst.ID)
	r.mu.Lock()
	inst.pendingRequest = req.ID
	r.byRequest[req.ID] = inst.ID
	r.mu.Unlock()
	return req, nil
}

// Owns reports whether the given elicitation request id is currently bound
// to a workflow instance. Callers demultiplex submitted responses with
// this before deciding which manager handles them.
func (r *Runtime) Owns(requestID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byRequest[requestID]
	return ok
}

// Get returns a snapshot of one instance.
func (r *Runtime) Get(instanceID string) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[instanceID]
	if !ok {
		return nil, srerr.New(srerr.WorkflowUnknown, "unknown workflow instance %q", instanceID)
	}
	copyOf := *inst
	return &copyOf, nil
}

// Abort marks an instance as aborted.
func (r *Runtime) Abort(instanceID string) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[instanceID]
	if !ok {
		return nil, srerr.New(srerr.WorkflowUnknown, "unknown workflow instance %q", instanceID)
	}
	if inst.pendingRequest != "" {
		r.elicitor.Cancel(inst.pendingRequest)
		delete(r.byRequest, inst.pendingRequest)
		inst.pendingRequest = ""
	}
	inst.Status = StatusAborted
	now := time.Now()
	inst.CompletedAt = &now
	if inst.Metadata == nil {
		inst.Metadata = map[string]any{}
	}
	inst.Metadata["abortedAt"] = now
	copyOf := *inst
	return &copyOf, nil
}

// ListInstances returns a snapshot of every workflow instance, optionally
// filtered by workflow name and/or status, newest first.
func (r *Runtime) ListInstances(workflowName string, status Status) []*Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		if workflowName != "" && inst.WorkflowName != workflowName {
			continue
		}
		if status != "" && inst.Status != status {
			continue
		}
		copyOf := *inst
		out = append(out, &copyOf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
