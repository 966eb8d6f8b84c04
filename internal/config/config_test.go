package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 20, cfg.Fetch.TimeoutSeconds)
	require.Equal(t, "claude-haiku-4-5", cfg.Summary.Model)
	require.Equal(t, int64(2048), cfg.Summary.MaxTokens)
	require.Equal(t, 90, cfg.Summary.TimeoutSeconds)
	require.Equal(t, 8, cfg.Summary.MaxSentences)
	require.Equal(t, 4, cfg.Worker.Concurrency)
	require.Equal(t, 64, cfg.Worker.QueueDepth)
	require.Equal(t, "memory", cfg.Queue.Provider)
	require.Equal(t, "memory", cfg.Store.Provider)
	require.True(t, cfg.Logging.Development)
	require.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
fetch:
  timeout_seconds: 5
summary:
  model: claude-sonnet-4-5
  max_sentences: 4
worker:
  concurrency: 2
store:
  provider: postgres
  dsn: postgres://localhost/pagesift
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 5, cfg.Fetch.TimeoutSeconds)
	require.Equal(t, "claude-sonnet-4-5", cfg.Summary.Model)
	require.Equal(t, 4, cfg.Summary.MaxSentences)
	require.Equal(t, 2, cfg.Worker.Concurrency)
	require.Equal(t, "postgres", cfg.Store.Provider)
	// Untouched keys keep their defaults.
	require.Equal(t, "memory", cfg.Queue.Provider)
	require.Equal(t, 90, cfg.Summary.TimeoutSeconds)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"zero fetch timeout", func(c *Config) { c.Fetch.TimeoutSeconds = 0 }, "fetch.timeout_seconds"},
		{"zero summary timeout", func(c *Config) { c.Summary.TimeoutSeconds = -1 }, "summary.timeout_seconds"},
		{"zero concurrency", func(c *Config) { c.Worker.Concurrency = 0 }, "worker.concurrency"},
		{"unknown queue provider", func(c *Config) { c.Queue.Provider = "rabbitmq" }, "unknown queue provider"},
		{"pubsub without project", func(c *Config) { c.Queue.Provider = "pubsub" }, "queue.project_id"},
		{"postgres without dsn", func(c *Config) { c.Store.Provider = "postgres" }, "store.dsn"},
		{"unknown store provider", func(c *Config) { c.Store.Provider = "redis" }, "unknown store provider"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestTimeoutHelpers(t *testing.T) {
	cfg := Config{
		Fetch:   FetchConfig{TimeoutSeconds: 20},
		Summary: SummaryConfig{TimeoutSeconds: 90},
	}
	require.Equal(t, 20*time.Second, cfg.FetchTimeout())
	require.Equal(t, 90*time.Second, cfg.SummaryTimeout())
}
