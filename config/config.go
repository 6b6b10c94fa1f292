package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
	Identity IdentityConfig
	Stripe   StripeConfig
	CORS     CORSConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// IdentityConfig configures verification of identity-provider ID tokens.
type IdentityConfig struct {
	Secret string
	Issuer string
}

// StripeConfig carries test and live credentials; Environment selects
// which pair is active.
type StripeConfig struct {
	Environment       string // test or live
	SecretKeyTest     string
	SecretKeyLive     string
	WebhookSecretTest string
	WebhookSecretLive string
	SuccessURL        string
	CancelURL         string
}

// SecretKey returns the API key for the active environment
func (s StripeConfig) SecretKey() string {
	if s.Environment == "live" {
		return s.SecretKeyLive
	}
	return s.SecretKeyTest
}

// WebhookSecret returns the webhook signing secret for the active environment
func (s StripeConfig) WebhookSecret() string {
	if s.Environment == "live" {
		return s.WebhookSecretLive
	}
	return s.WebhookSecretTest
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	URL               string
	RequestsPerMinute int
}

// defaultOrigins is the fixed cross-origin allow-list for the vault frontends.
var defaultOrigins = []string{
	"https://rothbardbitcoin.com",
	"https://rothbardbitcoin.web.app",
	"https://api.rothbardbitcoin.com",
	"http://localhost:3001",
	"http://localhost:5173",
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Identity: IdentityConfig{
			Secret: getEnv("IDENTITY_TOKEN_SECRET", ""),
			Issuer: getEnv("IDENTITY_TOKEN_ISSUER", ""),
		},
		Stripe: StripeConfig{
			Environment:       getEnv("STRIPE_ENV", "test"),
			SecretKeyTest:     getEnv("STRIPE_SECRET_KEY_TEST", ""),
			SecretKeyLive:     getEnv("STRIPE_SECRET_KEY_LIVE", ""),
			WebhookSecretTest: getEnv("STRIPE_WEBHOOK_SECRET_TEST", ""),
			WebhookSecretLive: getEnv("STRIPE_WEBHOOK_SECRET_LIVE", ""),
			SuccessURL:        getEnv("STRIPE_CHECKOUT_SUCCESS_URL", "http://localhost:3000/vault?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:         getEnv("STRIPE_CHECKOUT_CANCEL_URL", "http://localhost:3000/vault"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", defaultOrigins),
		},
		Redis: RedisConfig{
			URL:               getEnv("REDIS_URL", ""),
			RequestsPerMinute: getEnvInt("REDIS_REQUESTS_PER_MINUTE", 120),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Stripe.Environment != "test" && c.Stripe.Environment != "live" {
		return fmt.Errorf("invalid stripe environment: %s", c.Stripe.Environment)
	}
	if c.Redis.RequestsPerMinute < 1 {
		return fmt.Errorf("redis requests per minute must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
