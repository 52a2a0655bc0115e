// Package config loads scratchd settings from SCRATCH_* environment
// variables, reading a .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/cloo-solutions/scratch/internal/database"
	"github.com/cloo-solutions/scratch/internal/storage"
)

const envPrefix = "SCRATCH"

// Config keys come from field names under the SCRATCH_ prefix. Fields carry
// no envconfig names: a named field would also match the bare variable.
type Config struct {
	Port           string `split_words:"true" default:"8080"`
	Debug          bool   `split_words:"true" default:"false"`
	Environment    string `split_words:"true" default:"development"`
	MaxBodyBytes   int64  `split_words:"true" default:"1048576"`
	MigrationsPath string `split_words:"true" default:"file://migrations"`

	Database DatabaseConfig
	S3       S3Config
	Sentry   SentryConfig
	Init     InitConfig
}

// DatabaseConfig reads SCRATCH_DATABASE_*.
type DatabaseConfig struct {
	URL      string `split_words:"true" required:"true"`
	MaxConns int32  `split_words:"true" default:"10"`
	MinConns int32  `split_words:"true" default:"1"`
}

func (c DatabaseConfig) Pool() database.Config {
	return database.Config{URL: c.URL, MaxConns: c.MaxConns, MinConns: c.MinConns}
}

// S3Config reads SCRATCH_S3_*. Attachments are disabled unless endpoint and
// both keys are set.
type S3Config struct {
	Endpoint        string        `split_words:"true"`
	AccessKeyID     string        `split_words:"true"`
	SecretAccessKey string        `split_words:"true"`
	Bucket          string        `split_words:"true" default:"scratch-attachments"`
	Region          string        `split_words:"true" default:"us-east-1"`
	PathStyle       bool          `split_words:"true" default:"true"`
	UploadExpiry    time.Duration `split_words:"true" default:"15m"`
	DownloadExpiry  time.Duration `split_words:"true" default:"1h"`
}

func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

func (c S3Config) partial() bool {
	return !c.Enabled() && (c.Endpoint != "" || c.AccessKeyID != "" || c.SecretAccessKey != "")
}

func (c S3Config) Client() storage.S3ClientConfig {
	return storage.S3ClientConfig{
		Endpoint:        c.Endpoint,
		Region:          c.Region,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		Bucket:          c.Bucket,
		UsePathStyle:    c.PathStyle,
		UploadExpiry:    c.UploadExpiry,
		DownloadExpiry:  c.DownloadExpiry,
	}
}

// SentryConfig reads SCRATCH_SENTRY_*. A negative sample rate means "pick
// by environment".
type SentryConfig struct {
	DSN              string  `split_words:"true"`
	TracesSampleRate float64 `split_words:"true" default:"-1"`
}

// InitConfig reads SCRATCH_INIT_*: the user and key created at startup.
type InitConfig struct {
	UserName string `split_words:"true"`
	APIKey   string `split_words:"true"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.S3.partial() {
		errs = append(errs, errors.New("S3 needs SCRATCH_S3_ENDPOINT, SCRATCH_S3_ACCESS_KEY_ID and SCRATCH_S3_SECRET_ACCESS_KEY together"))
	}
	if c.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("SCRATCH_MAX_BODY_BYTES must not be negative, got %d", c.MaxBodyBytes))
	}
	if c.Sentry.TracesSampleRate > 1 {
		errs = append(errs, fmt.Errorf("SCRATCH_SENTRY_TRACES_SAMPLE_RATE must be at most 1, got %g", c.Sentry.TracesSampleRate))
	}
	if c.Init.APIKey != "" && c.Init.UserName == "" {
		errs = append(errs, errors.New("SCRATCH_INIT_API_KEY requires SCRATCH_INIT_USER_NAME"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// TracesSampleRate is the configured rate, or every trace in development
// and a tenth elsewhere.
func (c *Config) TracesSampleRate() float64 {
	switch {
	case c.Sentry.TracesSampleRate >= 0:
		return c.Sentry.TracesSampleRate
	case c.Environment == "development":
		return 1.0
	default:
		return 0.1
	}
}
