package registrytools

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

func testManager(t *testing.T) *registry.Manager {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	cfgs := []registry.Config{
		{Name: "prod", URL: srv.URL},
		{Name: "staging", URL: srv.URL, Readonly: true},
	}
	return registry.NewManager(cfgs, "prod", testLogger())
}

func TestListRegistries(t *testing.T) {
	tool := NewListRegistries(testManager(t))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "staging")
}

func TestGetRegistryInfoDefault(t *testing.T) {
	tool := NewGetRegistryInfo(testManager(t))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"name": "prod"`)
}

func TestGetRegistryInfoUnknownReturnsStructuredError(t *testing.T) {
	tool := NewGetRegistryInfo(testManager(t))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"nope"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "RegistryNotFound")
}

func TestSetAndGetDefaultRegistry(t *testing.T) {
	manager := testManager(t)
	set := NewSetDefaultRegistry(manager)
	res, err := set.Execute(context.Background(), json.RawMessage(`{"registry":"staging"}`))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	get := NewGetDefaultRegistry(manager)
	res, err = get.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "staging")
}

func TestCheckReadonlyMode(t *testing.T) {
	tool := NewCheckReadonlyMode(testManager(t))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"staging"}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"readonly": true`)
}

func TestTestAllRegistries(t *testing.T) {
	tool := NewTestAllRegistries(testManager(t))
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "prod")
	assert.Contains(t, res.Content[0].Text, "staging")
}
