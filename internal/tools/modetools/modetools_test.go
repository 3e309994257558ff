package modetools

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
		case r.Method == http.MethodGet && r.URL.Path == "/mode":
			json.NewEncoder(w).Encode(map[string]any{"mode": "READWRITE"})
		case r.Method == http.MethodPut && r.URL.Path == "/mode":
			w.Write([]byte(`{}`))
		case r.Method == http.MethodGet && r.URL.Path == "/mode/orders":
			json.NewEncoder(w).Encode(map[string]any{"mode": "IMPORT"})
		case r.Method == http.MethodPut && r.URL.Path == "/mode/orders":
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

func TestGetMode(t *testing.T) {
	tool := NewGetMode(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "READWRITE")
}

func TestUpdateModeBlockedOnReadonly(t *testing.T) {
	tool := NewUpdateMode(testManager(t, true))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"mode":"IMPORT"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestUpdateModeSuccess(t *testing.T) {
	tool := NewUpdateMode(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"mode":"IMPORT"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
}

func TestGetSubjectMode(t *testing.T) {
	tool := NewGetSubjectMode(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders"}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "IMPORT")
}

func TestUpdateSubjectModeMissingFields(t *testing.T) {
	tool := NewUpdateSubjectMode(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestUpdateSubjectModeSuccess(t *testing.T) {
	tool := NewUpdateSubjectMode(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders","mode":"READONLY"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
}
