package schematools

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

func fakeRegistryServer(t *testing.T) *httptest.Server {
	versions := []int{1}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/subjects/orders-created/versions":
			json.NewEncoder(w).Encode(map[string]any{"id": 7})
		case r.Method == http.MethodGet && r.URL.Path == "/subjects/orders-created/versions":
			json.NewEncoder(w).Encode(versions)
		case r.Method == http.MethodGet && r.URL.Path == "/subjects/orders-created/versions/1":
			json.NewEncoder(w).Encode(map[string]any{"id": 7, "version": 1, "subject": "orders-created", "schema": `{"type":"string"}`})
		case r.Method == http.MethodGet && r.URL.Path == "/subjects":
			json.NewEncoder(w).Encode([]string{"orders-created"})
		case r.Method == http.MethodPost && r.URL.Path == "/compatibility/subjects/orders-created/versions/latest":
			json.NewEncoder(w).Encode(map[string]any{"is_compatible": true})
		case r.Method == http.MethodDelete && r.URL.Path == "/subjects/orders-created":
			json.NewEncoder(w).Encode([]int{1})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testManager(t *testing.T, readonly bool) *registry.Manager {
	srv := fakeRegistryServer(t)
	return registry.NewManager([]registry.Config{{Name: "prod", URL: srv.URL, Readonly: readonly}}, "prod", testLogger())
}

func TestRegisterSchemaSuccess(t *testing.T) {
	tool := NewRegisterSchema(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders-created","schema":"{\"type\":\"string\"}"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"id": 7`)
}

func TestRegisterSchemaBlockedOnReadonly(t *testing.T) {
	tool := NewRegisterSchema(testManager(t, true))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders-created","schema":"{\"type\":\"string\"}"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRegisterSchemaMissingFields(t *testing.T) {
	tool := NewRegisterSchema(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders-created"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetSchemaDefaultsToLatestVersion(t *testing.T) {
	tool := NewGetSchema(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders-created"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"id": 7`)
}

func TestGetSchemaVersions(t *testing.T) {
	tool := NewGetSchemaVersions(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders-created"}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "1")
}

func TestCheckCompatibility(t *testing.T) {
	tool := NewCheckCompatibility(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders-created","schema":"{\"type\":\"string\"}"}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"compatible": true`)
}

func TestListSubjects(t *testing.T) {
	tool := NewListSubjects(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "orders-created")
}

func TestDeleteSubjectBlockedOnReadonly(t *testing.T) {
	tool := NewDeleteSubject(testManager(t, true))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders-created"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDeleteSubjectSuccess(t *testing.T) {
	tool := NewDeleteSubject(testManager(t, false))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders-created"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "1")
}
