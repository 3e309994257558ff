package smartdefaults

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestEngine(t *testing.T) *LearningEngine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smartdefaults.db")
	engine, err := OpenLearningEngine(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func TestRecordChoiceAndRetrieve(t *testing.T) {
	engine := openTestEngine(t)

	require.NoError(t, engine.RecordChoice("registerSchema", "prod-orders", "compatibility", "FULL", true))
	require.NoError(t, engine.RecordChoice("registerSchema", "prod-orders", "compatibility", "FULL", true))
	require.NoError(t, engine.RecordChoice("registerSchema", "prod-orders", "compatibility", "FULL", true))

	pref, ok := engine.GetHistoricalPreference("registerSchema", "prod-orders", "compatibility")
	require.True(t, ok)
	require.Equal(t, "FULL", pref.Value)
	require.Equal(t, 3, pref.Samples)
	require.Greater(t, pref.Confidence, 0.0)
}

func TestRecordChoiceRejectionLowersScore(t *testing.T) {
	engine := openTestEngine(t)

	// Two contexts, each with the same number of recorded samples, so the
	// sample-size half of the confidence weighting is identical and the
	// comparison isolates the effect of the accept/reject outcomes.
	require.NoError(t, engine.RecordChoice("registerSchema", "dev-orders-accepted", "compatibility", "NONE", true))
	require.NoError(t, engine.RecordChoice("registerSchema", "dev-orders-accepted", "compatibility", "NONE", true))

	require.NoError(t, engine.RecordChoice("registerSchema", "dev-orders-rejected", "compatibility", "NONE", true))
	require.NoError(t, engine.RecordChoice("registerSchema", "dev-orders-rejected", "compatibility", "NONE", false))

	accepted, ok := engine.GetHistoricalPreference("registerSchema", "dev-orders-accepted", "compatibility")
	require.True(t, ok)
	rejected, ok := engine.GetHistoricalPreference("registerSchema", "dev-orders-rejected", "compatibility")
	require.True(t, ok)

	require.Equal(t, accepted.Samples, rejected.Samples)
	require.Less(t, rejected.Confidence, accepted.Confidence)
}

func TestGetHistoricalPreferenceUnknownReturnsFalse(t *testing.T) {
	engine := openTestEngine(t)

	_, ok := engine.GetHistoricalPreference("registerSchema", "unseen", "compatibility")
	require.False(t, ok)
}

func TestGetHistoricalPreferencePicksHighestScore(t *testing.T) {
	engine := openTestEngine(t)

	require.NoError(t, engine.RecordChoice("registerSchema", "prod-orders", "compatibility", "BACKWARD", true))
	for i := 0; i < 5; i++ {
		require.NoError(t, engine.RecordChoice("registerSchema", "prod-orders", "compatibility", "FULL", true))
	}

	pref, ok := engine.GetHistoricalPreference("registerSchema", "prod-orders", "compatibility")
	require.True(t, ok)
	require.Equal(t, "FULL", pref.Value)
}
