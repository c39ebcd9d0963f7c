package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminPassword    string        `env:"ADMIN_PASSWORD"`
	AdminBypassToken string        `env:"ADMIN_BYPASS_TOKEN"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SessionPepper    string        `env:"SESSION_PEPPER"`
	CookieSecure     bool          `env:"COOKIE_SECURE" envDefault:"true"`

	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`

	APIRateLimitRPM  int `env:"API_RATE_LIMIT_RPM" envDefault:"300"`
	AuthRateLimitRPM int `env:"AUTH_RATE_LIMIT_RPM" envDefault:"30"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseDSN    string `env:"DATABASE_DSN"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	BlobBackend       string        `env:"BLOB_BACKEND" envDefault:"s3"`
	BlobBaseURL       string        `env:"BLOB_BASE_URL"`
	S3Bucket          string        `env:"S3_BUCKET"`
	S3Region          string        `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string        `env:"S3_ENDPOINT"`
	S3AccessKeyID     string        `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string        `env:"S3_SECRET_ACCESS_KEY"`
	DownloadURLTTL    time.Duration `env:"DOWNLOAD_URL_TTL" envDefault:"5m"`

	NegativeCacheTTL time.Duration `env:"NEGATIVE_CACHE_TTL" envDefault:"2m"`
	IdempotencyTTL   time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"10m"`

	OTELServiceName           string        `env:"OTEL_SERVICE_NAME" envDefault:"shareport"`
	OTELEnvironment           string        `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OTELExporterOTLPEndpoint  string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELExporterOTLPInsecure  bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELMetricsEnabled        bool          `env:"OTEL_METRICS_ENABLED" envDefault:"false"`
	OTELTracesEnabled         bool          `env:"OTEL_TRACES_ENABLED" envDefault:"false"`
	OTELLogsEnabled           bool          `env:"OTEL_LOGS_ENABLED" envDefault:"false"`
	OTELMetricsExportInterval time.Duration `env:"OTEL_METRICS_EXPORT_INTERVAL" envDefault:"15s"`
	EnableOTelHTTP            bool          `env:"OTEL_HTTP_ENABLED" envDefault:"false"`
}

// Load reads .env if present, parses the environment and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		recordConfigValidationEvent(context.Background(), "", "failure", "parse")
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		recordConfigValidationEvent(context.Background(), cfg.Env, "failure", "validation")
		return nil, fmt.Errorf("validate config: %w", err)
	}
	recordConfigValidationEvent(context.Background(), cfg.Env, "success", "none")
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required"))
	}
	if len(c.AdminPassword) > 0 && len(c.AdminPassword) < 8 {
		errs = append(errs, errors.New("ADMIN_PASSWORD must be at least 8 characters"))
	}
	if c.SessionPepper == "" && c.Env != "development" {
		errs = append(errs, errors.New("SESSION_PEPPER is required outside development"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.LoginMaxAttempts <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must be positive"))
	}
	if c.LoginWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_WINDOW must be positive"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	switch c.BlobBackend {
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when BLOB_BACKEND=s3"))
		}
	case "static":
		if c.BlobBaseURL == "" {
			errs = append(errs, errors.New("BLOB_BASE_URL is required when BLOB_BACKEND=static"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported BLOB_BACKEND %q", c.BlobBackend))
	}
	return errors.Join(errs...)
}
