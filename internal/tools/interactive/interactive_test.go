package interactive

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/smartdefaults"
)

// recordingTool is a fake base tool that captures the params of its last
// invocation.
type recordingTool struct {
	name       string
	lastParams map[string]any
	calls      int
}

func (r *recordingTool) Name() string        { return r.name }
func (r *recordingTool) Description() string { return "records calls." }
func (r *recordingTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (r *recordingTool) Execute(_ context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	r.calls++
	r.lastParams = map[string]any{}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &r.lastParams); err != nil {
			return nil, err
		}
	}
	return mcp.JSONResult(map[string]any{"ok": true, "subject": r.lastParams["subject"]})
}

func testWrapper(t *testing.T, enhancer *smartdefaults.Enhancer) (*Wrapper, *Coordinator, *recordingTool, *elicitation.Manager) {
	elicitor := elicitation.NewManager()
	coord := NewCoordinator(elicitor, enhancer, 60)
	base := &recordingTool{name: "registerSchema"}
	w := Wrap(coord, base, "registerSchema", "registry", []elicitation.Field{
		{Name: "subject", Kind: elicitation.KindString, Required: true},
		{Name: "schemaType", Kind: elicitation.KindChoice, Options: []string{"AVRO", "JSON", "PROTOBUF"}, Default: "AVRO"},
	})
	return w, coord, base, elicitor
}

func TestCompleteCallPassesThrough(t *testing.T) {
	w, _, base, _ := testWrapper(t, nil)

	res, err := w.Execute(context.Background(), json.RawMessage(`{"subject":"orders","schemaType":"AVRO"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, 1, base.calls)
	assert.NotContains(t, res.Content[0].Text, "elicitationPending")
}

func TestIncompleteCallOpensElicitation(t *testing.T) {
	w, _, base, elicitor := testWrapper(t, nil)

	res, err := w.Execute(context.Background(), json.RawMessage(`{"registry":"dev"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"elicitationPending": true`)
	assert.Equal(t, 0, base.calls)
	assert.Len(t, elicitor.List(), 1)
}

func TestResumeRunsBaseToolWithAssembledParams(t *testing.T) {
	w, coord, base, _ := testWrapper(t, nil)

	res, err := w.Execute(context.Background(), json.RawMessage(`{"registry":"dev"}`))
	require.NoError(t, err)

	var opened struct {
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &opened))
	require.NotEmpty(t, opened.RequestID)

	result, handled, err := coord.Resume(context.Background(), opened.RequestID, map[string]any{
		"subject":    "orders",
		"schemaType": "JSON",
	})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 1, base.calls)
	assert.Equal(t, "orders", base.lastParams["subject"])
	assert.Equal(t, "dev", base.lastParams["registry"])
	assert.Contains(t, result.Content[0].Text, `"elicitationUsed": true`)
	assert.Contains(t, result.Content[0].Text, `"elicitedValues"`)
}

func TestResumeUnknownRequestNotHandled(t *testing.T) {
	_, coord, _, _ := testWrapper(t, nil)

	_, handled, err := coord.Resume(context.Background(), "nope", map[string]any{})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestResumeRejectsMissingRequiredField(t *testing.T) {
	w, coord, base, _ := testWrapper(t, nil)

	res, err := w.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	var opened struct {
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &opened))

	_, handled, err := coord.Resume(context.Background(), opened.RequestID, map[string]any{"schemaType": "AVRO"})
	assert.True(t, handled)
	require.Error(t, err)
	assert.Equal(t, 0, base.calls)

	// The request survives a failed validation and can be answered again.
	_, handled, err = coord.Resume(context.Background(), opened.RequestID, map[string]any{"subject": "orders"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 1, base.calls)
}

func TestEnhancerOverlaysTemplateDefaults(t *testing.T) {
	store := filepath.Join(t.TempDir(), "prefs.db")
	learning, err := smartdefaults.OpenLearningEngine(store)
	require.NoError(t, err)
	t.Cleanup(func() { learning.Close() })
	enhancer := smartdefaults.NewEnhancer(smartdefaults.NewEngine(learning))

	elicitor := elicitation.NewManager()
	coord := NewCoordinator(elicitor, enhancer, 60)
	base := &recordingTool{name: "updateGlobalConfig"}
	w := Wrap(coord, base, "updateGlobalConfig", "registry", []elicitation.Field{
		{Name: "compatibility", Kind: elicitation.KindChoice, Required: true,
			Options: []string{"NONE", "BACKWARD", "FORWARD", "FULL"}},
	})

	res, err := w.Execute(context.Background(), json.RawMessage(`{"registry":"production"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "suggested:")
}

func TestWrapperName(t *testing.T) {
	w, _, _, _ := testWrapper(t, nil)
	assert.Equal(t, "registerSchemaInteractive", w.Name())
}

