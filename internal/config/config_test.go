package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearHuntEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "APP_ENV", "BASE_URL", "DB_PATH", "ADMIN_API_KEY",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_PHONE_NUMBER",
		"OUTBOUND_QUEUE_SIZE", "OUTBOUND_MAX_RETRIES", "OUTBOUND_RETRY_DELAY",
		"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW",
	} {
		// t.Setenv registers the restore; unset so defaults apply.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearHuntEnv(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.DBPath != "./data/hunt.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false for development env")
	}
	if cfg.Queue.Size != 256 || cfg.Queue.MaxRetries != 3 || cfg.Queue.RetryDelay != 5*time.Second {
		t.Errorf("queue defaults = %+v", cfg.Queue)
	}
	if cfg.RateLimit.Max != 100 || cfg.RateLimit.Window != 15*time.Minute {
		t.Errorf("rate limit defaults = %+v", cfg.RateLimit)
	}
	if cfg.HasTwilioCredentials() {
		t.Error("HasTwilioCredentials() = true with no credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearHuntEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "8080")
	t.Setenv("OUTBOUND_QUEUE_SIZE", "16")
	t.Setenv("OUTBOUND_RETRY_DELAY", "250ms")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Queue.Size != 16 || cfg.Queue.RetryDelay != 250*time.Millisecond {
		t.Errorf("queue = %+v", cfg.Queue)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Errorf("rate limit window = %v", cfg.RateLimit.Window)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	clearHuntEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("OUTBOUND_QUEUE_SIZE", "not-a-number")
	t.Setenv("OUTBOUND_RETRY_DELAY", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Queue.Size != 256 || cfg.Queue.RetryDelay != 5*time.Second {
		t.Errorf("queue = %+v, want defaults", cfg.Queue)
	}
}

func TestValidateProductionRequirements(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:        "3000",
			Env:         "production",
			BaseURL:     "https://hunt.example.com",
			DBPath:      "./data/hunt.db",
			AdminAPIKey: "secret",
			Twilio: TwilioConfig{
				AccountSID: "AC123",
				AuthToken:  "token",
				FromNumber: "+15550000",
			},
			Queue:     QueueConfig{Size: 256, MaxRetries: 3, RetryDelay: 5 * time.Second},
			RateLimit: RateLimitConfig{Max: 100, Window: 15 * time.Minute},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("complete production config invalid: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no admin key", func(c *Config) { c.AdminAPIKey = "" }, "ADMIN_API_KEY"},
		{"no twilio sid", func(c *Config) { c.Twilio.AccountSID = "" }, "TWILIO"},
		{"no twilio token", func(c *Config) { c.Twilio.AuthToken = "" }, "TWILIO"},
		{"no from number", func(c *Config) { c.Twilio.FromNumber = "" }, "TWILIO"},
		{"no base url", func(c *Config) { c.BaseURL = "" }, "BASE_URL"},
		{"empty port", func(c *Config) { c.Port = "" }, "PORT"},
		{"empty db path", func(c *Config) { c.DBPath = "" }, "DB_PATH"},
		{"zero queue size", func(c *Config) { c.Queue.Size = 0 }, "OUTBOUND_QUEUE_SIZE"},
		{"negative retries", func(c *Config) { c.Queue.MaxRetries = -1 }, "OUTBOUND_MAX_RETRIES"},
		{"zero retry delay", func(c *Config) { c.Queue.RetryDelay = 0 }, "OUTBOUND_RETRY_DELAY"},
		{"zero rate limit", func(c *Config) { c.RateLimit.Max = 0 }, "RATE_LIMIT_MAX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDevelopmentIsLenient(t *testing.T) {
	cfg := &Config{
		Port:      "3000",
		Env:       "development",
		DBPath:    "./data/hunt.db",
		Queue:     QueueConfig{Size: 256, MaxRetries: 3, RetryDelay: 5 * time.Second},
		RateLimit: RateLimitConfig{Max: 100, Window: 15 * time.Minute},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("development config without credentials invalid: %v", err)
	}
}
