package contexttools

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

	"github.com/srcp/schema-registry-controlplane/internal/migration"
	"github.com/srcp/schema-registry-controlplane/internal/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fakeServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/contexts":
			json.NewEncoder(w).Encode([]string{".", "billing"})
		case r.Method == http.MethodPut && r.URL.Path == "/contexts/billing/config":
			json.NewEncoder(w).Encode(map[string]any{"compatibility": "BACKWARD"})
		case r.Method == http.MethodGet && r.URL.Path == "/contexts/billing/subjects":
			json.NewEncoder(w).Encode([]string{"orders"})
		case r.Method == http.MethodDelete && r.URL.Path == "/contexts/billing/subjects/orders":
			json.NewEncoder(w).Encode([]int{1})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListContexts(t *testing.T) {
	manager := registry.NewManager([]registry.Config{{Name: "prod", URL: fakeServer(t).URL}}, "prod", testLogger())
	tool := NewListContexts(manager)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "billing")
}

func TestCreateContext(t *testing.T) {
	manager := registry.NewManager([]registry.Config{{Name: "prod", URL: fakeServer(t).URL}}, "prod", testLogger())
	tool := NewCreateContext(manager)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"context":"billing"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "billing")
}

func TestCreateContextBlockedOnReadonly(t *testing.T) {
	manager := registry.NewManager([]registry.Config{{Name: "prod", URL: fakeServer(t).URL, Readonly: true}}, "prod", testLogger())
	tool := NewCreateContext(manager)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"context":"billing"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDeleteContext(t *testing.T) {
	manager := registry.NewManager([]registry.Config{{Name: "prod", URL: fakeServer(t).URL}}, "prod", testLogger())
	engine := migration.NewEngine(manager, 4, testLogger())
	tool := NewDeleteContext(engine)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"context":"billing"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"contextDeleted": true`)
}
