package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the data dashboard service
type Config struct {
	// Server configuration
	Port        string `env:"PORT,default=8981"`
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=auto"`

	// Storage configuration
	StorageMode  string `env:"STORAGE_MODE,default=local"`
	LocalDataDir string `env:"LOCAL_DATA_DIR,default=./data"`
	GCPProjectID string `env:"GCP_PROJECT_ID"`
	GCSBucket    string `env:"GCS_BUCKET"`

	// Dataset handling
	FilterColumn string        `env:"FILTER_COLUMN,default=column_name"`
	PreviewRows  int           `env:"PREVIEW_ROWS,default=5"`
	MaxUploadMB  int64         `env:"MAX_UPLOAD_MB,default=32"`
	SessionTTL   time.Duration `env:"SESSION_TTL,default=2h"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT,default=30s"`

	// Static chart size in pixels
	ChartWidth  int `env:"CHART_WIDTH,default=900"`
	ChartHeight int `env:"CHART_HEIGHT,default=450"`

	// OpenAI configuration (optional, enables insights)
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL,default=gpt-4.1"`
}

// Load loads configuration from environment variables. A .env file in the
// working directory, if present, is read first; real environment wins.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations envconfig cannot express with tags
func (c *Config) Validate() error {
	switch c.StorageMode {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_MODE=gcs")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_MODE %q (must be local or gcs)", c.StorageMode)
	}
	if c.PreviewRows < 0 {
		return fmt.Errorf("PREVIEW_ROWS must not be negative")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// InsightsEnabled reports whether an OpenAI key was configured
func (c *Config) InsightsEnabled() bool {
	return c.OpenAIAPIKey != ""
}
