package workflowtools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
	"github.com/srcp/schema-registry-controlplane/internal/workflow"
)

func demoDefinition() *workflow.Definition {
	return &workflow.Definition{
		Name:      "demo",
		StartStep: "pick",
		Steps: map[string]workflow.Step{
			"pick": {
				ID:     "pick",
				Fields: []elicitation.Field{{Name: "mode", Kind: elicitation.KindChoice, Required: true, Options: []string{"fast", "safe"}}},
				NextSteps: map[string]any{
					"mode": map[string]any{"fast": "confirm", "safe": "confirm"},
				},
			},
			"confirm": {
				ID:        "confirm",
				Fields:    []elicitation.Field{{Name: "ok", Kind: elicitation.KindBool, Required: true}},
				NextSteps: map[string]any{"default": "finish"},
			},
		},
	}
}

func testRuntime(t *testing.T) (*workflow.Runtime, *elicitation.Manager) {
	elicitor := elicitation.NewManager()
	rt := workflow.NewRuntime(elicitor)
	require.NoError(t, rt.Register(demoDefinition()))
	return rt, elicitor
}

func TestStartWorkflow(t *testing.T) {
	rt, _ := testRuntime(t)
	tool := NewStartWorkflow(rt)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"workflow":"demo"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"currentStep": "pick"`)
	assert.Contains(t, res.Content[0].Text, `"instanceId"`)
}

func TestStartWorkflowUnknown(t *testing.T) {
	rt, _ := testRuntime(t)
	tool := NewStartWorkflow(rt)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"workflow":"nope"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "WorkflowUnknown")
}

func TestSubmitAdvancesAndFinishes(t *testing.T) {
	rt, elicitor := testRuntime(t)
	start, err := rt.Start("demo", nil)
	require.NoError(t, err)

	submit := NewSubmitElicitationResponse(rt, elicitor, nil)
	res, err := submit.Execute(context.Background(), json.RawMessage(fmt.Sprintf(
		`{"requestId":%q,"values":{"mode":"fast"}}`, start.Request.ID)))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"currentStep": "confirm"`)
	assert.Contains(t, res.Content[0].Text, `"finished": false`)

	var outcome struct {
		Request struct {
			ID string `json:"id"`
		} `json:"request"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &outcome))
	require.NotEmpty(t, outcome.Request.ID)

	res, err = submit.Execute(context.Background(), json.RawMessage(fmt.Sprintf(
		`{"requestId":%q,"values":{"ok":true}}`, outcome.Request.ID)))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"finished": true`)
	assert.Contains(t, res.Content[0].Text, `"stepsCompleted": 2`)

	inst, err := rt.Get(start.Instance.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, inst.Status)
}

func TestSubmitPlainElicitation(t *testing.T) {
	rt, elicitor := testRuntime(t)
	req := elicitor.Create([]elicitation.Field{{Name: "name", Kind: elicitation.KindString, Required: true}}, 60, "")

	submit := NewSubmitElicitationResponse(rt, elicitor, nil)
	res, err := submit.Execute(context.Background(), json.RawMessage(fmt.Sprintf(
		`{"requestId":%q,"values":{"name":"orders"}}`, req.ID)))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"accepted": true`)
}

func TestWorkflowStatusAndAbort(t *testing.T) {
	rt, _ := testRuntime(t)
	start, err := rt.Start("demo", nil)
	require.NoError(t, err)

	status := NewWorkflowStatus(rt)
	res, err := status.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"instanceId":%q}`, start.Instance.ID)))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"currentStepId": "pick"`)

	abort := NewAbortWorkflow(rt)
	res, err = abort.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"instanceId":%q}`, start.Instance.ID)))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"status": "aborted"`)
}

func TestListAndDescribeWorkflows(t *testing.T) {
	rt, _ := testRuntime(t)

	list := NewListWorkflows(rt)
	res, err := list.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "demo")

	describe := NewDescribeWorkflow(rt)
	res, err = describe.Execute(context.Background(), json.RawMessage(`{"workflow":"demo"}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "pick")

	res, err = describe.Execute(context.Background(), json.RawMessage(`{"workflow":"nope"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGuidedEntryPointsUsePredefinedNames(t *testing.T) {
	elicitor := elicitation.NewManager()
	rt := workflow.NewRuntime(elicitor)
	require.NoError(t, rt.RegisterPredefined())

	guided := NewGuidedSchemaMigration(rt)
	res, err := guided.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "schema_migration_wizard")

	for name, tool := range map[string]interface {
		Name() string
	}{
		"guidedSchemaMigration":       NewGuidedSchemaMigration(rt),
		"guidedContextReorganization": NewGuidedContextReorganization(rt),
		"guidedDisasterRecovery":      NewGuidedDisasterRecovery(rt),
		"guidedSchemaEvolution":       NewGuidedSchemaEvolution(rt),
	} {
		assert.Equal(t, name, tool.Name())
	}
}
