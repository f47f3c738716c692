package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mailtrack/internal/flagx"
	"github.com/dmitrijs2005/mailtrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so the file may say "30s" or an integer of nanoseconds.
// Pointer fields distinguish "absent" from zero values.
type JsonConfig struct {
	Backend        string          `json:"backend"`
	RestURL        string          `json:"rest_url"`
	RestKey        string          `json:"rest_key"`
	DatabaseDSN    string          `json:"database_dsn"`
	RequestTimeout *timex.Duration `json:"request_timeout"`

	Storage     string `json:"storage"`
	Bucket      string `json:"bucket"`
	S3Region    string `json:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`
	S3PublicURL string `json:"s3_public_url"`

	ScanEnabled   *bool           `json:"scan_enabled"`
	ScanEndpoint  string          `json:"scan_endpoint"`
	ScanAPIKey    string          `json:"scan_api_key"`
	ScanModel     string          `json:"scan_model"`
	ScanMaxTokens *int            `json:"scan_max_tokens"`
	ScanTimeout   *timex.Duration `json:"scan_timeout"`

	CounterKey       string `json:"counter_key"`
	CounterStrict    *bool  `json:"counter_strict"`
	CounterBaseline  *int64 `json:"counter_baseline"`
	CounterScanLimit *int   `json:"counter_scan_limit"`

	DefaultAuthor string `json:"default_author"`
	DownloadDir   string `json:"download_dir"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// parseJson overlays cfg with values from the file named by -c/-config.
// Without the flag nothing is loaded. Only keys present in the file
// override.
func parseJson(cfg *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	setString(&cfg.Backend, jc.Backend)
	setString(&cfg.RestURL, jc.RestURL)
	setString(&cfg.RestKey, jc.RestKey)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}

	setString(&cfg.Storage, jc.Storage)
	setString(&cfg.Bucket, jc.Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3PublicURL, jc.S3PublicURL)

	if jc.ScanEnabled != nil {
		cfg.ScanEnabled = *jc.ScanEnabled
	}
	setString(&cfg.ScanEndpoint, jc.ScanEndpoint)
	setString(&cfg.ScanAPIKey, jc.ScanAPIKey)
	setString(&cfg.ScanModel, jc.ScanModel)
	if jc.ScanMaxTokens != nil {
		cfg.ScanMaxTokens = *jc.ScanMaxTokens
	}
	if jc.ScanTimeout != nil {
		cfg.ScanTimeout = jc.ScanTimeout.Duration
	}

	setString(&cfg.CounterKey, jc.CounterKey)
	if jc.CounterStrict != nil {
		cfg.CounterStrict = *jc.CounterStrict
	}
	if jc.CounterBaseline != nil {
		cfg.CounterBaseline = *jc.CounterBaseline
	}
	if jc.CounterScanLimit != nil {
		cfg.CounterScanLimit = *jc.CounterScanLimit
	}
	setString(&cfg.DefaultAuthor, jc.DefaultAuthor)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
