package smartdefaults

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestDefaultsProvidedDataWins(t *testing.T) {
	engine := NewEngine(nil)

	defaults := engine.SuggestDefaults("registerSchema", "prod-orders", map[string]any{"compatibility": "BACKWARD"})

	sd, ok := defaults["compatibility"]
	require.True(t, ok)
	require.Equal(t, "BACKWARD", sd.Value)
	require.Equal(t, SourceProvided, sd.Source)
	require.Equal(t, 1.0, sd.Confidence)
}

func TestSuggestDefaultsFallsBackToTemplate(t *testing.T) {
	engine := NewEngine(nil)

	defaults := engine.SuggestDefaults("registerSchema", "prod-orders", nil)

	sd, ok := defaults["compatibility"]
	require.True(t, ok)
	require.Equal(t, "FULL", sd.Value)
	require.Equal(t, SourceTemplate, sd.Source)
}

func TestSuggestDefaultsHistoryBeatsTemplateWhenConfident(t *testing.T) {
	learning := openTestEngine(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, learning.RecordChoice("registerSchema", "prod-orders", "compatibility", "BACKWARD", true))
	}
	engine := NewEngine(learning)

	defaults := engine.SuggestDefaults("registerSchema", "prod-orders", nil)

	sd, ok := defaults["compatibility"]
	require.True(t, ok)
	require.Equal(t, "BACKWARD", sd.Value)
	require.Equal(t, SourceHistory, sd.Source)
}

func TestSuggestDefaultsOmitsUnknownOperation(t *testing.T) {
	engine := NewEngine(nil)

	defaults := engine.SuggestDefaults("someUnlistedOperation", "prod-orders", nil)
	require.Empty(t, defaults)
}

func TestDetectEnvironment(t *testing.T) {
	require.Equal(t, "production", DetectEnvironment("prod-orders"))
	require.Equal(t, "staging", DetectEnvironment("staging-orders"))
	require.Equal(t, "development", DetectEnvironment("dev-orders"))
	require.Equal(t, "testing", DetectEnvironment("test-orders"))
	require.Equal(t, "", DetectEnvironment("orders"))
}
