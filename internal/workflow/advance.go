package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

// StepOutcome is returned after submitting a response to a workflow's
// currently open step: either the next step's elicitation request, or a
// finished instance if the workflow has no more steps.
type StepOutcome struct {
	Instance *Instance            `json:"instance"`
	Request  *elicitation.Request `json:"request,omitempty"`
	Finished bool                 `json:"finished"`
}

// Submit validates a response against the workflow instance currently
// holding the given elicitation request id, then advances the instance
// through the next-step selection order.
func (r *Runtime) Submit(requestID string, values map[string]any) (*StepOutcome, error) {
	r.mu.Lock()
	instanceID, ok := r.byRequest[requestID]
	r.mu.Unlock()
	if !ok {
		return nil, srerr.New(srerr.WorkflowStepMissing, "no workflow instance is waiting on request %q", requestID)
	}

	action, _ := values["_workflow_action"].(string)

	// Back-navigation bypasses the current step's own field validation —
	// the caller is explicitly abandoning this step, not answering it —
	// so the pending request is dropped outright rather than validated.
	if action == "back" {
		r.mu.Lock()
		defer r.mu.Unlock()

		inst, ok := r.instances[instanceID]
		if !ok {
			return nil, srerr.New(srerr.WorkflowUnknown, "unknown workflow instance %q", instanceID)
		}
		def := r.definitions[inst.WorkflowName]
		if len(inst.StepHistory) <= 1 {
			return nil, srerr.New(srerr.WorkflowStepMissing, "cannot go back: already at the first step")
		}

		r.elicitor.Cancel(requestID)
		delete(r.byRequest, requestID)
		inst.pendingRequest = ""

		inst.StepHistory = inst.StepHistory[:len(inst.StepHistory)-1]
		inst.CurrentStepID = inst.StepHistory[len(inst.StepHistory)-1]
		step := def.Steps[inst.CurrentStepID]
		req, err := r.openStepRequestLocked(inst, step)
		if err != nil {
			return nil, err
		}
		return &StepOutcome{Instance: snapshot(inst), Request: &req}, nil
	}

	if err := r.elicitor.Submit(elicitation.Response{RequestID: requestID, Values: values}); err != nil {
		return nil, err
	}

	r.mu.Lock()
	inst, ok := r.instances[instanceID]
	def := r.definitions[inst.WorkflowName]
	r.mu.Unlock()
	if !ok {
		return nil, srerr.New(srerr.WorkflowUnknown, "unknown workflow instance %q", instanceID)
	}

	clean := stripWorkflowKeys(values)

	r.mu.Lock()
	defer r.mu.Unlock()

	inst.pendingRequest = ""
	delete(r.byRequest, requestID)

	for k, v := range clean {
		inst.Responses[k] = v
	}

	nextID := resolveNextStep(def.Steps[inst.CurrentStepID], inst.Responses)
	if nextID == "" || nextID == "finish" {
		inst.Status = StatusCompleted
		now := time.Now()
		inst.CompletedAt = &now
		return &StepOutcome{Instance: snapshot(inst), Finished: true}, nil
	}

	nextStep, ok := def.Steps[nextID]
	if !ok {
		return nil, srerr.New(srerr.WorkflowStepMissing, "workflow %q has no step %q", inst.WorkflowName, nextID)
	}
	inst.CurrentStepID = nextID
	inst.StepHistory = append(inst.StepHistory, nextID)
	req, err := r.openStepRequestLocked(inst, nextStep)
	if err != nil {
		return nil, err
	}
	return &StepOutcome{Instance: snapshot(inst), Request: &req}, nil
}

// openStepRequestLocked is openStepRequest's body without its own locking,
// for call sites that already hold r.mu.
func (r *Runtime) openStepRequestLocked(inst *Instance, step Step) (elicitation.Request, error) {
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
	inst.pendingRequest = req.ID
	r.byRequest[req.ID] = inst.ID
	return req, nil
}

// resolveNextStep picks the next step: conditions first, then
// nextSteps (direct or value-keyed), then nextSteps["default"], else "".
func resolveNextStep(step Step, responses map[string]any) string {
	for _, c := range step.Conditions {
		if v, ok := responses[c.Field]; ok && fmt.Sprint(v) == c.Equals {
			return c.NextStep
		}
	}

	for field, target := range step.NextSteps {
		if field == "default" {
			continue
		}
		v, ok := responses[field]
		if !ok {
			continue
		}
		switch t := target.(type) {
		case string:
			return t
		case map[string]any:
			if s, ok := v.(string); ok {
				if next, ok := t[s].(string); ok {
					return next
				}
			}
		}
	}

	if def, ok := step.NextSteps["default"].(string); ok {
		return def
	}
	return ""
}

func stripWorkflowKeys(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if strings.HasPrefix(k, "_workflow_") {
			continue
		}
		out[k] = v
	}
	return out
}

func snapshot(inst *Instance) *Instance {
	copyOf := *inst
	copyOf.StepHistory = append([]string(nil), inst.StepHistory...)
	copyOf.Responses = make(map[string]any, len(inst.Responses))
	for k, v := range inst.Responses {
		copyOf.Responses[k] = v
	}
	return &copyOf
}
