package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SRCP_CONFIG", "SRCP_TRANSPORT", "SRCP_PORT", "SRCP_HOST", "SRCP_CORS_ORIGINS",
		"SRCP_LOG_LEVEL", "SRCP_SMART_DEFAULTS_STORE_PATH", "SRCP_SMART_DEFAULTS_ENABLED",
		"SRCP_TASK_POOL_SIZE", "SRCP_ELICITATION_DEFAULT_TIMEOUT_SECONDS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, 10, cfg.Task.PoolSize)
	require.Equal(t, 300, cfg.Elicitation.DefaultTimeoutSeconds)
	require.True(t, cfg.SmartDefaults.Enabled)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SRCP_TRANSPORT", "http")
	t.Setenv("SRCP_TASK_POOL_SIZE", "25")
	t.Setenv("SRCP_SMART_DEFAULTS_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 25, cfg.Task.PoolSize)
	require.False(t, cfg.SmartDefaults.Enabled)
}

func TestLoadFileThenEnvWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "srcp.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[transport]
mode = "http"
port = "9000"

[task]
pool_size = 4
`), 0o644))

	t.Setenv("SRCP_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 4, cfg.Task.PoolSize)
	require.Equal(t, "9100", cfg.Transport.Port)
}

func TestValidateRejectsUnknownTransport(t *testing.T) {
	cfg := &Config{Transport: TransportConfig{Mode: "carrier-pigeon"}, Task: TaskConfig{PoolSize: 1}}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroPoolSize(t *testing.T) {
	cfg := &Config{Transport: TransportConfig{Mode: "stdio"}, Task: TaskConfig{PoolSize: 0}}
	require.Error(t, cfg.Validate())
}
