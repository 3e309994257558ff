package configtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcp/schema-registry-controlplane/internal/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fakeServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/config":
			json.NewEncoder(w).Encode(map[string]any{"compatibilityLevel": "BACKWARD"})
		case r.Method == http.MethodPut && r.URL.Path == "/config":
			w.Write([]byte(`{}`))
		case r.Method == http.MethodGet && r.URL.Path == "/config/orders":
			json.NewEncoder(w).Encode(map[string]any{"compatibilityLevel": "FULL"})
		case r.Method == http.MethodPut && r.URL.Path == "/config/orders":
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testManager(t *testing.T, readonly bool) *registry.Manager {
	return registry.NewManager([]registry.Config{{Name: "prod", URL: fakeServer(t).URL, Readonly: readonly}}, "prod", testLogger())
}

func TestGetGlobalConfig(t *testing.T) {
	tool := NewGetGlobalConfig(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "BACKWARD")
}

func TestUpdateGlobalConfigBlockedOnReadonly(t *testing.T) {
	tool := NewUpdateGlobalConfig(testManager(t, true))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"compatibility":"FULL"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestUpdateGlobalConfigSuccess(t *testing.T) {
	tool := NewUpdateGlobalConfig(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"compatibility":"FULL"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "FULL")
}

func TestGetSubjectConfig(t *testing.T) {
	tool := NewGetSubjectConfig(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders"}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "FULL")
}

func TestUpdateSubjectConfigMissingFields(t *testing.T) {
	tool := NewUpdateSubjectConfig(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestUpdateSubjectConfigSuccess(t *testing.T) {
	tool := NewUpdateSubjectConfig(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders","compatibility":"NONE"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "NONE")
}
