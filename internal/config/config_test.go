package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "taskmarket.db", cfg.LocalDSN)
	assert.Equal(t, "ws://127.0.0.1:8000", cfg.RemoteURL)
	assert.Equal(t, 15*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 3*time.Second, cfg.OutboxInterval)
	assert.EqualValues(t, 3, cfg.OutboxMaxRetries)
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"local_dsn":             "/tmp/other.db",
		"remote_url":            "ws://db.example:8000",
		"online_check_interval": "10s",
		"outbox_max_retries":    7,
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "/tmp/other.db", cfg.LocalDSN)
		assert.Equal(t, "ws://db.example:8000", cfg.RemoteURL)
		assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
		assert.EqualValues(t, 7, cfg.OutboxMaxRetries)
		// untouched fields keep their defaults
		assert.Equal(t, 3*time.Second, cfg.OutboxInterval)
	})

	t.Run("no CONFIG and no flags, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			LocalDSN:            "defaults.db",
			OnlineCheckInterval: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults.db", cfg.LocalDSN)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-d", "/tmp/cli.db", "-r", "ws://cli:8000", "-i", "5"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "/tmp/cli.db", cfg.LocalDSN)
	assert.Equal(t, "ws://cli:8000", cfg.RemoteURL)
	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
	// flags it does not know stay at defaults
	assert.Equal(t, "taskmarket", cfg.RemoteNamespace)
}
