package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with bare os.Args so that
// no stray .env or flags leak in.
func isolate(t *testing.T, args ...string) {
	t.Helper()
	t.Chdir(t.TempDir())
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = append([]string{"mailtrack"}, args...)
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, BackendREST, c.Backend)
	assert.Equal(t, StorageREST, c.Storage)
	assert.Equal(t, "mail-files", c.Bucket)
	assert.Equal(t, "tracking_id", c.CounterKey)
	assert.Equal(t, "Staff", c.DefaultAuthor)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.True(t, c.ScanEnabled)
	assert.False(t, c.CounterStrict)
	assert.Equal(t, int64(243), c.CounterBaseline)
	assert.Equal(t, 100, c.CounterScanLimit)
}

func TestLoadConfig_Layering(t *testing.T) {
	isolate(t, "-u", "https://flag.example.co", "-strict")

	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rest_url":"https://json.example.co","default_author":"Front desk","scan_timeout":"5s"}`), 0o600))
	os.Args = append(os.Args, "-c", path)

	t.Setenv("MAILTRACK_DEFAULT_AUTHOR", "Mailroom")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.co", cfg.RestURL, "flags beat json")
	assert.Equal(t, "Mailroom", cfg.DefaultAuthor, "env beats json")
	assert.Equal(t, 5*time.Second, cfg.ScanTimeout)
	assert.True(t, cfg.CounterStrict)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	isolate(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))
	os.Args = append(os.Args, "-config", bad)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json config")
}

func TestLoadConfig_ValidationFails(t *testing.T) {
	isolate(t)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "RestURL is required")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var c Config
		c.LoadDefaults()
		c.RestURL = "https://x.example.co"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults with url", mutate: func(c *Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "mongo" }, wantErr: "Backend must be one of"},
		{name: "postgres needs dsn", mutate: func(c *Config) { c.Backend = BackendPostgres; c.Storage = StorageInline; c.RestURL = "" }, wantErr: "DatabaseDSN is required"},
		{name: "postgres with dsn and inline storage", mutate: func(c *Config) {
			c.Backend = BackendPostgres
			c.Storage = StorageInline
			c.RestURL = ""
			c.DatabaseDSN = "postgres://localhost/mail"
		}},
		{name: "rest storage without url", mutate: func(c *Config) {
			c.Backend = BackendPostgres
			c.DatabaseDSN = "postgres://localhost/mail"
			c.RestURL = ""
		}, wantErr: "rest storage needs RestURL"},
		{name: "s3 needs region", mutate: func(c *Config) { c.Storage = StorageS3 }, wantErr: "S3Region is required"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LogFormat must be one of"},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, wantErr: "RequestTimeout must be positive"},
		{name: "scan disabled ignores scan timeout", mutate: func(c *Config) { c.ScanEnabled = false; c.ScanTimeout = 0 }},
		{name: "zero scan window", mutate: func(c *Config) { c.CounterScanLimit = 0 }, wantErr: "CounterScanLimit must be at least 1"},
		{name: "zero baseline", mutate: func(c *Config) { c.CounterBaseline = 0 }, wantErr: "CounterBaseline must be at least 1"},
		{name: "bad scan endpoint", mutate: func(c *Config) { c.ScanEndpoint = "not a url" }, wantErr: "ScanEndpoint must be a URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
