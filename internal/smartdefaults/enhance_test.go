package smartdefaults

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
)

func TestEnhanceReplacesDefaultAboveThreshold(t *testing.T) {
	enhancer := NewEnhancer(NewEngine(nil))

	fields := []elicitation.Field{
		{Name: "compatibility", Kind: elicitation.KindChoice, Options: []string{"FULL", "BACKWARD", "NONE"}},
	}

	result := enhancer.Enhance(fields, "registerSchema", "prod-orders", nil)

	require.Len(t, result.Fields, 1)
	f := result.Fields[0]
	require.Equal(t, "FULL", f.Default)
	require.NotNil(t, f.Suggestion)
	require.Contains(t, f.Description, "suggested:")
}

func TestEnhanceLeavesUnsuggestedFieldsAlone(t *testing.T) {
	enhancer := NewEnhancer(NewEngine(nil))

	fields := []elicitation.Field{{Name: "subject", Kind: elicitation.KindString, Required: true}}
	result := enhancer.Enhance(fields, "registerSchema", "prod-orders", nil)

	require.Len(t, result.Fields, 1)
	require.Nil(t, result.Fields[0].Suggestion)
	require.Empty(t, result.Fields[0].Description)
}

func TestProcessFeedbackRecordsAcceptance(t *testing.T) {
	learning := openTestEngine(t)
	engine := NewEngine(learning)
	enhancer := NewEnhancer(engine)

	fields := []elicitation.Field{
		{Name: "compatibility", Kind: elicitation.KindChoice, Options: []string{"FULL", "BACKWARD", "NONE"}},
	}
	result := enhancer.Enhance(fields, "registerSchema", "prod-orders", nil)

	enhancer.ProcessFeedback(result, map[string]any{"compatibility": "FULL"})

	pref, ok := learning.GetHistoricalPreference("registerSchema", "prod-orders", "compatibility")
	require.True(t, ok)
	require.Equal(t, "FULL", pref.Value)
}

func TestProcessFeedbackRecordsRejection(t *testing.T) {
	learning := openTestEngine(t)
	engine := NewEngine(learning)
	enhancer := NewEnhancer(engine)

	fields := []elicitation.Field{
		{Name: "compatibility", Kind: elicitation.KindChoice, Options: []string{"FULL", "BACKWARD", "NONE"}},
	}
	result := enhancer.Enhance(fields, "registerSchema", "prod-orders", nil)

	enhancer.ProcessFeedback(result, map[string]any{"compatibility": "NONE"})

	pref, ok := learning.GetHistoricalPreference("registerSchema", "prod-orders", "compatibility")
	require.True(t, ok)
	require.Equal(t, "NONE", pref.Value)
}
