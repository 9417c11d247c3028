package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "declass.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("merges file over defaults", func(t *testing.T) {
		path := writeConfig(t, `
catalog:
  url: https://www.archives.gov/research/mlk
object_store:
  bucket: mlk-archive
  prefix: mlk-archive
retry:
  max_attempts: 5
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "https://www.archives.gov/research/mlk", cfg.Catalog.URL)
		assert.Equal(t, "mlk-archive", cfg.ObjectStore.Bucket)
		assert.Equal(t, 5, cfg.Retry.MaxAttempts)
		// Untouched fields keep their defaults.
		assert.Equal(t, "page", cfg.Catalog.PageParam)
		assert.Equal(t, 500, cfg.Retry.InitialDelayMs)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "catalog: [not a map")
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func validConfig() *Config {
	cfg := Default()
	cfg.Catalog.URL = "https://www.archives.gov/research/mlk"
	cfg.ObjectStore.Bucket = "mlk-archive"
	cfg.Index.Host = "https://search.example.com"
	cfg.AI.CompletionModel = "gpt-4o-mini"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing catalog url", func(c *Config) { c.Catalog.URL = "" }, ErrMissingCatalogURL},
		{"zero max pages", func(c *Config) { c.Catalog.MaxPages = 0 }, ErrInvalidMaxPages},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"negative delay", func(c *Config) { c.Retry.InitialDelayMs = -1 }, ErrInvalidInitialDelay},
		{"multiplier below one", func(c *Config) { c.Retry.BackoffMultiplier = 0.5 }, ErrInvalidBackoffMultiplier},
		{"jitter above one", func(c *Config) { c.Retry.Jitter = 1.5 }, ErrInvalidJitter},
		{"zero timeout", func(c *Config) { c.Fetch.TimeoutSec = 0 }, ErrInvalidTimeout},
		{"negative rate", func(c *Config) { c.Fetch.RequestsPerSec = -1 }, ErrInvalidRate},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidateMirror(t *testing.T) {
	t.Run("valid s3", func(t *testing.T) {
		assert.NoError(t, validConfig().ValidateMirror())
	})

	t.Run("minio requires endpoint", func(t *testing.T) {
		cfg := validConfig()
		cfg.ObjectStore.Backend = "minio"
		assert.ErrorIs(t, cfg.ValidateMirror(), ErrMissingEndpoint)

		cfg.ObjectStore.Endpoint = "localhost:9000"
		assert.NoError(t, cfg.ValidateMirror())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := validConfig()
		cfg.ObjectStore.Backend = "gcs"
		assert.ErrorIs(t, cfg.ValidateMirror(), ErrInvalidBackend)
	})

	t.Run("missing bucket", func(t *testing.T) {
		cfg := validConfig()
		cfg.ObjectStore.Bucket = ""
		assert.ErrorIs(t, cfg.ValidateMirror(), ErrMissingBucket)
	})

	t.Run("missing ledger path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Ledger.Path = ""
		assert.ErrorIs(t, cfg.ValidateMirror(), ErrMissingLedgerPath)
	})
}

func TestValidateRetrieval(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().ValidateRetrieval())
	})

	t.Run("missing index host", func(t *testing.T) {
		cfg := validConfig()
		cfg.Index.Host = ""
		assert.ErrorIs(t, cfg.ValidateRetrieval(), ErrMissingIndexHost)
	})

	t.Run("missing completion model", func(t *testing.T) {
		cfg := validConfig()
		cfg.AI.CompletionModel = ""
		assert.ErrorIs(t, cfg.ValidateRetrieval(), ErrMissingCompletionModel)
	})
}

func TestRetryConfigDurations(t *testing.T) {
	r := RetryConfig{InitialDelayMs: 250, MaxDelayMs: 4000}
	assert.Equal(t, 250, int(r.InitialDelay().Milliseconds()))
	assert.Equal(t, 4000, int(r.MaxDelay().Milliseconds()))
}
