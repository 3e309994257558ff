package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

func TestListVersions404MapsToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error_code":40401,"message":"Subject not found"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "default", URL: srv.URL}, testLogger())
	versions, err := c.ListVersions(context.Background(), "missing-subject", "")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestRegisterSchema409ReturnsExistingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error_code":409,"message":"conflict"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/subjects/my-subject/versions":
			json.NewEncoder(w).Encode([]int{1, 2})
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(schemaWireRecord{Subject: "my-subject", Version: 2, ID: 42, Schema: `{"type":"string"}`})
		}
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "default", URL: srv.URL}, testLogger())
	id, err := c.RegisterSchema(context.Background(), "my-subject", `{"type":"string"}`, SchemaTypeAvro, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestRegisterSchemaInvalidMapsToSchemaInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error_code":42201,"message":"invalid schema"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "default", URL: srv.URL}, testLogger())
	_, err := c.RegisterSchema(context.Background(), "my-subject", `not json`, SchemaTypeAvro, "", nil)
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.SchemaInvalid))
}

func TestListSubjectsDefaultContextCollapse(t *testing.T) {
	var gotPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		json.NewEncoder(w).Encode([]string{"s1"})
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "default", URL: srv.URL}, testLogger())
	_, err := c.ListSubjects(context.Background(), "")
	require.NoError(t, err)
	_, err = c.ListSubjects(context.Background(), ".")
	require.NoError(t, err)

	require.Len(t, gotPaths, 2)
	assert.Equal(t, gotPaths[0], gotPaths[1])
	assert.Equal(t, "/subjects", gotPaths[0])
}

func TestGetSchemaNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "default", URL: srv.URL}, testLogger())
	_, err := c.GetSchema(context.Background(), "my-subject", 5, "")
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.VersionNotFound))
}

func TestSetModeUnsupportedMapsToImportModeUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "default", URL: srv.URL}, testLogger())
	err := c.SetMode(context.Background(), "", "", ModeImport)
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.ImportModeUnsupported))
}

func TestTestConnectionOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "default", URL: srv.URL}, testLogger())
	status := c.TestConnection(context.Background())
	assert.Equal(t, "ok", status.Status)
}
