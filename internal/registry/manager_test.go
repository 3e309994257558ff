package registry

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestManagerGetDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfgs := []Config{{Name: "prod", URL: srv.URL}, {Name: "staging", URL: srv.URL, Readonly: true}}
	m := NewManager(cfgs, "prod", testLogger())

	c, err := m.Get("")
	require.NoError(t, err)
	assert.Equal(t, "prod", c.Config().Name)

	c, err = m.Get("staging")
	require.NoError(t, err)
	assert.Equal(t, "staging", c.Config().Name)

	_, err = m.Get("nope")
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.RegistryNotFound))
}

func TestManagerList(t *testing.T) {
	m := NewManager([]Config{{Name: "b"}, {Name: "a"}}, "a", testLogger())
	assert.Equal(t, []string{"a", "b"}, m.List())
}

func TestManagerCheckWritableBlocksReadonly(t *testing.T) {
	m := NewManager([]Config{{Name: "staging", Readonly: true}}, "staging", testLogger())
	_, err := m.CheckWritable("staging")
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.ReadonlyBlocked))
}

func TestManagerCheckWritableAllowsWritable(t *testing.T) {
	m := NewManager([]Config{{Name: "prod"}}, "prod", testLogger())
	c, err := m.CheckWritable("prod")
	require.NoError(t, err)
	assert.Equal(t, "prod", c.Config().Name)
}

func TestManagerSetDefault(t *testing.T) {
	m := NewManager([]Config{{Name: "a"}, {Name: "b"}}, "a", testLogger())
	require.NoError(t, m.SetDefault("b"))
	assert.Equal(t, "b", m.DefaultName())

	err := m.SetDefault("missing")
	require.Error(t, err)
}

func TestManagerInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	m := NewManager([]Config{{Name: "prod", URL: srv.URL, Description: "primary"}}, "prod", testLogger())
	info, err := m.Info(context.Background(), "prod")
	require.NoError(t, err)
	assert.Equal(t, "prod", info.Name)
	assert.True(t, info.IsDefault)
	assert.Equal(t, "ok", info.Connection.Status)
}
