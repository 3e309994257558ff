// Package interactive implements the tool wrappers that bridge incomplete
// tool calls and elicitation: a wrapped tool called with required inputs
// missing opens an elicitation for just those inputs instead of failing,
// and the later submitElicitationResponse resumes the interrupted call
// with the assembled parameters. Suggested values from the smart-defaults
// engine are overlaid on the elicited fields, and the submitted response
// feeds acceptance data back into it.
package interactive

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/smartdefaults"
	"github.com/srcp/schema-registry-controlplane/internal/srerr"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
)

// continuation is one interrupted tool call waiting on its elicitation.
type continuation struct {
	base     mcp.Tool
	params   map[string]any
	enhanced smartdefaults.EnhanceResult
}

// Coordinator tracks wrapper-opened elicitations and resumes their base
// tools once a response arrives. It implements workflowtools.Resumer.
type Coordinator struct {
	mu             sync.Mutex
	elicitor       *elicitation.Manager
	enhancer       *smartdefaults.Enhancer // optional
	timeoutSeconds int
	pending        map[string]*continuation
}

// NewCoordinator builds a Coordinator. enhancer may be nil when the
// smart-defaults engine is disabled.
func NewCoordinator(elicitor *elicitation.Manager, enhancer *smartdefaults.Enhancer, timeoutSeconds int) *Coordinator {
	return &Coordinator{
		elicitor:       elicitor,
		enhancer:       enhancer,
		timeoutSeconds: timeoutSeconds,
		pending:        make(map[string]*continuation),
	}
}

// Resume finishes the interrupted call bound to requestID. The bool result
// reports whether this coordinator owned the request at all; false means
// the caller should try the next handler in its chain.
func (c *Coordinator) Resume(ctx context.Context, requestID string, values map[string]any) (*mcp.ToolsCallResult, bool, error) {
	c.mu.Lock()
	cont, ok := c.pending[requestID]
	c.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	// Submit validates required fields and value constraints, and rejects
	// expired or already-answered requests.
	if err := c.elicitor.Submit(elicitation.Response{RequestID: requestID, Values: values}); err != nil {
		if srerr.As(err, srerr.ElicitationExpired) {
			c.mu.Lock()
			delete(c.pending, requestID)
			c.mu.Unlock()
		}
		return nil, true, err
	}

	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()

	if c.enhancer != nil {
		c.enhancer.ProcessFeedback(cont.enhanced, values)
	}

	assembled := make(map[string]any, len(cont.params)+len(values))
	for k, v := range cont.params {
		assembled[k] = v
	}
	for k, v := range values {
		assembled[k] = v
	}

	raw, err := json.Marshal(assembled)
	if err != nil {
		return nil, true, fmt.Errorf("assembling parameters for %s: %w", cont.base.Name(), err)
	}
	result, err := cont.base.Execute(ctx, raw)
	if err != nil {
		return nil, true, err
	}
	return withElicitationFlags(result, values), true, nil
}

// open stores a continuation and returns the elicitation request that the
// caller must answer to resume it.
func (c *Coordinator) open(base mcp.Tool, params map[string]any, fields []elicitation.Field, operation, envContext string) (*mcp.ToolsCallResult, error) {
	var enhanced smartdefaults.EnhanceResult
	if c.enhancer != nil {
		enhanced = c.enhancer.Enhance(fields, operation, envContext, params)
		fields = make([]elicitation.Field, len(enhanced.Fields))
		for i, ef := range enhanced.Fields {
			fields[i] = ef.Field
		}
	}

	req := c.elicitor.Create(fields, c.timeoutSeconds, "")
	c.mu.Lock()
	c.pending[req.ID] = &continuation{base: base, params: params, enhanced: enhanced}
	c.mu.Unlock()

	return mcp.JSONResult(map[string]any{
		"elicitationPending": true,
		"requestId":          req.ID,
		"tool":               base.Name(),
		"fields":             req.Fields,
		"timeoutSeconds":     req.TimeoutSeconds,
		"instructions":       "answer with submitElicitationResponse to run " + base.Name() + " with the completed inputs",
	})
}

// withElicitationFlags merges {"elicitationUsed": true, "elicitedValues":
// ...} into a JSON tool result, so resumed calls are distinguishable from
// direct ones.
func withElicitationFlags(result *mcp.ToolsCallResult, values map[string]any) *mcp.ToolsCallResult {
	if result == nil || len(result.Content) == 0 {
		return result
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].Text), &body); err != nil {
		return result
	}
	body["elicitationUsed"] = true
	body["elicitedValues"] = values
	b, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return result
	}
	merged := *result
	merged.Content = append([]mcp.ContentBlock(nil), result.Content...)
	merged.Content[0] = mcp.TextContent(string(b))
	return &merged
}

// Wrapper exposes a base tool under an "…Interactive" name: calls with
// every needed input present pass straight through; calls with inputs
// missing open an elicitation for them instead of failing.
type Wrapper struct {
	coord      *Coordinator
	base       mcp.Tool
	operation  string // smart-defaults operation key
	contextKey string // parameter holding the environment/context hint
	elicit     []elicitation.Field
}

// Wrap builds a Wrapper for base. elicit lists the fields opened when
// missing from the call (a Required one among them triggers the
// elicitation); operation keys the smart-defaults lookups, and contextKey
// names the parameter whose value (e.g. a registry or context name)
// selects the template tier.
func Wrap(coord *Coordinator, base mcp.Tool, operation, contextKey string, elicit []elicitation.Field) *Wrapper {
	return &Wrapper{coord: coord, base: base, operation: operation, contextKey: contextKey, elicit: elicit}
}

func (w *Wrapper) Name() string { return w.base.Name() + "Interactive" }
func (w *Wrapper) Description() string {
	return w.base.Description() + " Missing inputs are collected through an elicitation before the operation runs."
}
func (w *Wrapper) InputSchema() json.RawMessage { return w.base.InputSchema() }

func (w *Wrapper) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	supplied := map[string]any{}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &supplied); err != nil {
			return tools.InvalidParams(err)
		}
	}

	missing, triggered := w.missingFields(supplied)
	if !triggered {
		return w.base.Execute(ctx, params)
	}

	envContext := ""
	if w.contextKey != "" {
		if v, ok := supplied[w.contextKey].(string); ok {
			envContext = v
		}
	}
	return w.coord.open(w.base, supplied, missing, w.operation, envContext)
}

// missingFields returns the elicit fields absent from the supplied params.
// The elicitation only triggers when at least one Required field is among
// them; optional fields ride along once it does.
func (w *Wrapper) missingFields(supplied map[string]any) ([]elicitation.Field, bool) {
	var missing []elicitation.Field
	triggered := false
	for _, f := range w.elicit {
		v, ok := supplied[f.Name]
		if ok && v != nil && v != "" {
			continue
		}
		missing = append(missing, f)
		if f.Required {
			triggered = true
		}
	}
	return missing, triggered
}
