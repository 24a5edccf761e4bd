package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from the environment, after loading an optional .env file.
// The SEC API key has no default; without it requests degrade to the
// synthetic dataset.
type Config struct {
	SECAPIKey      string        `envconfig:"SEC_API_KEY"`
	SECAPIURL      string        `envconfig:"SEC_API_URL" default:"https://api.sec-api.io/insider-trading"`
	RequestTimeout time.Duration `envconfig:"SEC_REQUEST_TIMEOUT" default:"30s"`
	PageSize       int           `envconfig:"SEC_PAGE_SIZE" default:"50"`

	BatchDelay      time.Duration `envconfig:"BATCH_DELAY" default:"1s"`
	BatchMaxSymbols int           `envconfig:"BATCH_MAX_SYMBOLS" default:"3"`
	RecentDays      int           `envconfig:"RECENT_DAYS" default:"30"`
	ClipToWindow    bool          `envconfig:"RECENT_CLIP_TO_WINDOW" default:"false"`

	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	Port         string  `envconfig:"PORT" default:"8000"`
	APIRateRPS   float64 `envconfig:"API_RATE_RPS" default:"5"`
	APIRateBurst int     `envconfig:"API_RATE_BURST" default:"10"`
	AdminAPIKey  string  `envconfig:"ADMIN_API_KEY"`
	StaticDir    string  `envconfig:"STATIC_DIR" default:"static"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	TracingEnabled bool `envconfig:"TRACING_ENABLED" default:"false"`
	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv parses the process environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.SECAPIURL == "" {
		errs = append(errs, errors.New("SEC_API_URL is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("SEC_REQUEST_TIMEOUT must be positive"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, errors.New("SEC_PAGE_SIZE must be positive"))
	}
	if c.BatchDelay < 0 {
		errs = append(errs, errors.New("BATCH_DELAY must not be negative"))
	}
	if c.BatchMaxSymbols <= 0 {
		errs = append(errs, errors.New("BATCH_MAX_SYMBOLS must be positive"))
	}
	if c.RecentDays <= 0 {
		errs = append(errs, errors.New("RECENT_DAYS must be positive"))
	}
	if c.APIRateRPS <= 0 || c.APIRateBurst <= 0 {
		errs = append(errs, errors.New("API_RATE_RPS and API_RATE_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// HasAPIKey reports whether real filing data can be requested.
func (c *Config) HasAPIKey() bool {
	return c.SECAPIKey != ""
}
