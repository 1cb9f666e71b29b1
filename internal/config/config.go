// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	Env         string // development, test or production
	BaseURL     string // public URL the carrier signs webhook requests against
	DBPath      string
	AdminAPIKey string
	Twilio      TwilioConfig
	Queue       QueueConfig
	RateLimit   RateLimitConfig
}

// TwilioConfig holds carrier credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// QueueConfig controls the outbound delivery queue.
type QueueConfig struct {
	Size       int
	MaxRetries int
	RetryDelay time.Duration
}

// RateLimitConfig controls the per-IP webhook rate limit.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		Env:         getEnv("APP_ENV", "development"),
		BaseURL:     getEnv("BASE_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/hunt.db"),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		},
		Queue: QueueConfig{
			Size:       getEnvInt("OUTBOUND_QUEUE_SIZE", 256),
			MaxRetries: getEnvInt("OUTBOUND_MAX_RETRIES", 3),
			RetryDelay: getEnvDuration("OUTBOUND_RETRY_DELAY", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			Max:    getEnvInt("RATE_LIMIT_MAX", 100),
			Window: getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Queue.Size <= 0 {
		return fmt.Errorf("OUTBOUND_QUEUE_SIZE must be > 0")
	}
	if c.Queue.MaxRetries < 0 {
		return fmt.Errorf("OUTBOUND_MAX_RETRIES must be >= 0")
	}
	if c.Queue.RetryDelay <= 0 {
		return fmt.Errorf("OUTBOUND_RETRY_DELAY must be > 0")
	}
	if c.RateLimit.Max <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be > 0")
	}

	if !c.IsDevelopment() {
		if c.AdminAPIKey == "" {
			return fmt.Errorf("ADMIN_API_KEY is required outside development")
		}
		if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" || c.Twilio.FromNumber == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER are required outside development")
		}
		if c.BaseURL == "" {
			return fmt.Errorf("BASE_URL is required outside development")
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// HasTwilioCredentials reports whether the carrier is fully configured.
func (c *Config) HasTwilioCredentials() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.FromNumber != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
