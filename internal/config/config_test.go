package config

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func validTestConfig() *Config {
	return &Config{
		Env:              "test",
		AdminPassword:    "correct-horse-battery",
		SessionPepper:    "pepper",
		SessionTTL:       168 * time.Hour,
		LoginMaxAttempts: 5,
		LoginWindow:      15 * time.Minute,
		DatabaseDriver:   "sqlite",
		DatabaseDSN:      "file::memory:?cache=shared",
		BlobBackend:      "static",
		BlobBaseURL:      "https://cdn.example.com",
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{name: "missing admin password", mutate: func(c *Config) { c.AdminPassword = "" }, want: "ADMIN_PASSWORD"},
		{name: "short admin password", mutate: func(c *Config) { c.AdminPassword = "short" }, want: "at least 8"},
		{name: "missing pepper outside dev", mutate: func(c *Config) { c.SessionPepper = "" }, want: "SESSION_PEPPER"},
		{name: "zero session ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, want: "SESSION_TTL"},
		{name: "zero login window", mutate: func(c *Config) { c.LoginWindow = 0 }, want: "LOGIN_WINDOW"},
		{name: "bad driver", mutate: func(c *Config) { c.DatabaseDriver = "oracle" }, want: "DATABASE_DRIVER"},
		{name: "missing dsn", mutate: func(c *Config) { c.DatabaseDSN = "" }, want: "DATABASE_DSN"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.BlobBackend = "s3"; c.S3Bucket = "" }, want: "S3_BUCKET"},
		{name: "static without base url", mutate: func(c *Config) { c.BlobBaseURL = "" }, want: "BLOB_BASE_URL"},
		{name: "unknown blob backend", mutate: func(c *Config) { c.BlobBackend = "ftp" }, want: "BLOB_BACKEND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestPepperAllowedEmptyInDevelopment(t *testing.T) {
	cfg := validTestConfig()
	cfg.Env = "development"
	cfg.SessionPepper = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected empty pepper to pass in development, got %v", err)
	}
}

func TestClassifyLoadError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "none", err: nil, want: "none"},
		{name: "validation", err: errors.New("validate config: ADMIN_PASSWORD is required"), want: "validation"},
		{name: "parse", err: errors.New("parse SESSION_TTL: invalid duration"), want: "parse"},
		{name: "other", err: errors.New("some other load error"), want: "load"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyLoadError(tc.err); got != tc.want {
				t.Fatalf("ClassifyLoadError()=%q want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeConfigProfile(t *testing.T) {
	if got := normalizeConfigProfile("  ProD  "); got != "prod" {
		t.Fatalf("expected prod, got %q", got)
	}
	if got := normalizeConfigProfile("   "); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func FuzzNormalizeConfigProfileRobustness(f *testing.F) {
	f.Add("  ProD  ")
	f.Add("   ")
	f.Add("")
	f.Add(strings.Repeat("A", 4096))

	f.Fuzz(func(t *testing.T, raw string) {
		if len(raw) > 8192 {
			raw = raw[:8192]
		}
		got := normalizeConfigProfile(raw)
		if got == "" {
			t.Fatal("normalized profile must not be empty")
		}
		if strings.TrimSpace(raw) == "" && got != "unknown" {
			t.Fatalf("expected unknown for empty/whitespace input, got %q", got)
		}
		if !utf8.ValidString(got) && utf8.ValidString(raw) {
			t.Fatalf("normalized profile must stay valid UTF-8: %q", got)
		}
		if again := normalizeConfigProfile(raw); got != again {
			t.Fatalf("normalizeConfigProfile must be deterministic: first=%q second=%q", got, again)
		}
	})
}
