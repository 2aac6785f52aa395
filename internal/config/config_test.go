package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pilc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001", cfg.Backend.URL)
	assert.Equal(t, "1", cfg.Backend.EventsID)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 0, cfg.Backend.RetryCount)
	assert.Empty(t, cfg.CatalogPath)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: http://pi.local:3001
  events_id: "7"
  timeout: 3s
  retry_count: 2
catalog: /etc/pilc/catalog.yaml
log:
  level: debug
  format: json
`)
	t.Setenv("PILC_EVENTS_ID", "9")
	t.Setenv("PILC_TIMEOUT", "1500ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://pi.local:3001", cfg.Backend.URL)
	assert.Equal(t, "9", cfg.Backend.EventsID)
	assert.Equal(t, 1500*time.Millisecond, cfg.Backend.Timeout)
	assert.Equal(t, 2, cfg.Backend.RetryCount)
	assert.Equal(t, "/etc/pilc/catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "backend: ["))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log:\n  format: xml\n"))
	assert.Error(t, err)

	t.Setenv("PILC_TIMEOUT", "soon")
	_, err = Load("")
	assert.Error(t, err)
}
