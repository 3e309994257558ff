package migrationtools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcp/schema-registry-controlplane/internal/migration"
	"github.com/srcp/schema-registry-controlplane/internal/registry"
	"github.com/srcp/schema-registry-controlplane/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// sourceServer holds subjects "orders" and "payments", one version each,
// in the default context.
func sourceServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/subjects":
			json.NewEncoder(w).Encode([]string{"orders", "payments"})
		case r.URL.Path == "/contexts":
			json.NewEncoder(w).Encode([]string{})
		case r.URL.Path == "/subjects/orders/versions":
			json.NewEncoder(w).Encode([]int{1})
		case r.URL.Path == "/subjects/payments/versions":
			json.NewEncoder(w).Encode([]int{1})
		case r.URL.Path == "/subjects/orders/versions/1":
			json.NewEncoder(w).Encode(map[string]any{"subject": "orders", "version": 1, "id": 11, "schema": `{"type":"string"}`, "schemaType": "AVRO"})
		case r.URL.Path == "/subjects/payments/versions/1":
			json.NewEncoder(w).Encode(map[string]any{"subject": "payments", "version": 1, "id": 12, "schema": `{"type":"string"}`, "schemaType": "AVRO"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// targetServer starts empty and accepts every registration.
func targetServer(t *testing.T) *httptest.Server {
	nextID := 100
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/subjects":
			json.NewEncoder(w).Encode([]string{})
		case r.URL.Path == "/contexts":
			json.NewEncoder(w).Encode([]string{})
		case r.Method == http.MethodPost:
			nextID++
			json.NewEncoder(w).Encode(map[string]int{"id": nextID})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testEngine(t *testing.T, targetReadonly bool) (*migration.Engine, *task.Manager) {
	cfgs := []registry.Config{
		{Name: "dev", URL: sourceServer(t).URL},
		{Name: "prod", URL: targetServer(t).URL, Readonly: targetReadonly},
	}
	manager := registry.NewManager(cfgs, "dev", testLogger())
	return migration.NewEngine(manager, 4, testLogger()), task.NewManager(4, testLogger())
}

func TestMigrateSchemaDryRun(t *testing.T) {
	engine, _ := testEngine(t, false)
	tool := NewMigrateSchema(engine)

	res, err := tool.Execute(context.Background(), json.RawMessage(
		`{"subject":"orders","sourceRegistry":"dev","targetRegistry":"prod","dryRun":true,"migrateAllVersions":true}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"dryRun": true`)
	assert.Contains(t, res.Content[0].Text, `"totalVersions": 1`)
}

func TestMigrateSchemaMissingParams(t *testing.T) {
	engine, _ := testEngine(t, false)
	tool := NewMigrateSchema(engine)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"subject":"orders"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMigrateContextSynchronous(t *testing.T) {
	engine, tasks := testEngine(t, false)
	tool := NewMigrateContext(engine, tasks)

	res, err := tool.Execute(context.Background(), json.RawMessage(
		`{"context":".","sourceRegistry":"dev","targetRegistry":"prod","migrateAllVersions":true}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"totalSubjects": 2`)
	assert.Contains(t, res.Content[0].Text, `"status": "completed"`)
}

func TestMigrateContextReadonlyTargetBlocked(t *testing.T) {
	engine, tasks := testEngine(t, true)
	tool := NewMigrateContext(engine, tasks)

	res, err := tool.Execute(context.Background(), json.RawMessage(
		`{"context":".","sourceRegistry":"dev","targetRegistry":"prod"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "readonly")
}

func TestMigrateContextAsyncAndStatusTools(t *testing.T) {
	engine, tasks := testEngine(t, false)
	tool := NewMigrateContext(engine, tasks)

	res, err := tool.Execute(context.Background(), json.RawMessage(
		`{"context":".","sourceRegistry":"dev","targetRegistry":"prod","migrateAllVersions":true,"async":true}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var started struct {
		TaskID string `json:"taskId"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &started))
	require.NotEmpty(t, started.TaskID)

	deadline := time.Now().Add(5 * time.Second)
	for {
		tk := tasks.Get(started.TaskID)
		require.NotNil(t, tk)
		if tk.Status == task.StatusCompleted {
			break
		}
		require.NotEqual(t, task.StatusFailed, tk.Status, "migration task failed: %s", tk.Error)
		require.True(t, time.Now().Before(deadline), "migration task did not finish")
		time.Sleep(10 * time.Millisecond)
	}

	status := NewGetMigrationStatus(tasks)
	res, err = status.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"migrationId":%q}`, started.TaskID)))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, `"status": "COMPLETED"`)
	assert.Contains(t, res.Content[0].Text, `"totalSubjects": 2`)

	list := NewListMigrations(tasks)
	res, err = list.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, `"total": 1`)
}

func TestGetMigrationStatusRejectsNonMigrationTask(t *testing.T) {
	_, tasks := testEngine(t, false)
	created, err := tasks.Create(task.TypeCleanup, nil)
	require.NoError(t, err)

	status := NewGetMigrationStatus(tasks)
	res, err := status.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"migrationId":%q}`, created.ID)))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCompareRegistries(t *testing.T) {
	engine, _ := testEngine(t, false)
	tool := NewCompareRegistries(engine)

	res, err := tool.Execute(context.Background(), json.RawMessage(
		`{"sourceRegistry":"dev","targetRegistry":"prod"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "orders")
	assert.Contains(t, res.Content[0].Text, `"sourceTotal": 2`)
}
