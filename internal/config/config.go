// Package config assembles MailTrack settings from, in increasing
// precedence: built-in defaults, a JSON file, the environment (optionally
// seeded from a .env file) and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/scanner"
)

// Backend kinds.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

// Storage kinds.
const (
	StorageREST   = "rest"
	StorageS3     = "s3"
	StorageInline = "inline"
)

// Config holds runtime settings for the MailTrack console.
type Config struct {
	// Records backend.
	Backend        string        `env:"BACKEND" validate:"oneof=rest postgres"`
	RestURL        string        `env:"REST_URL" validate:"required_if=Backend rest"`
	RestKey        string        `env:"REST_KEY"`
	DatabaseDSN    string        `env:"DATABASE_DSN" validate:"required_if=Backend postgres"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Attachment storage.
	Storage     string `env:"STORAGE" validate:"oneof=rest s3 inline"`
	Bucket      string `env:"BUCKET" validate:"required"`
	S3Region    string `env:"S3_REGION" validate:"required_if=Storage s3"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// AI scan.
	ScanEnabled   bool          `env:"SCAN_ENABLED"`
	ScanEndpoint  string        `env:"SCAN_ENDPOINT" validate:"omitempty,url"`
	ScanAPIKey    string        `env:"SCAN_API_KEY"`
	ScanModel     string        `env:"SCAN_MODEL"`
	ScanMaxTokens int           `env:"SCAN_MAX_TOKENS" validate:"min=1"`
	ScanTimeout   time.Duration `env:"SCAN_TIMEOUT"`

	// Tracking ids.
	CounterKey    string `env:"COUNTER_KEY" validate:"required"`
	CounterStrict bool   `env:"COUNTER_STRICT"`

	// CounterBaseline is the floor of the sequence; the first id is one above it.
	CounterBaseline int64 `env:"COUNTER_BASELINE" validate:"min=1"`

	// CounterScanLimit is how many recent records the history tier inspects.
	CounterScanLimit int `env:"COUNTER_SCAN_LIMIT" validate:"min=1"`

	DefaultAuthor string `env:"DEFAULT_AUTHOR"`
	DownloadDir   string `env:"DOWNLOAD_DIR"`

	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=text json"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Backend = BackendREST
	c.RequestTimeout = 30 * time.Second
	c.Storage = StorageREST
	c.Bucket = common.MailBucket
	c.ScanEnabled = true
	c.ScanEndpoint = scanner.DefaultEndpoint
	c.ScanModel = scanner.DefaultModel
	c.ScanMaxTokens = scanner.DefaultMaxTokens
	c.ScanTimeout = 60 * time.Second
	c.CounterKey = common.TrackingCounterKey
	c.CounterBaseline = common.TrackingBaseline
	c.CounterScanLimit = common.RecentScanLimit
	c.DefaultAuthor = common.DefaultAuthor
	c.DownloadDir = "downloads"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. The result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
