// Package config collects every environment setting the API server needs.
// All values come from the process environment so the same binary runs in
// docker compose, CI and production without rebuilds.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultPort        = "8080"
	defaultEnvironment = "development"
	defaultLoginPath   = "/api/auth/login"
	defaultRedisAddr   = "localhost:6379"
)

// Config holds the resolved server configuration.
type Config struct {
	Environment string
	Port        string

	DatabaseURL string
	RedisAddr   string

	SessionSecret string
	SessionIssuer string
	SessionTTL    time.Duration

	LoginPath string

	UploadBaseURL string
	UploadAPIKey  string

	WebhookSecret string

	ImageHosts     []string
	ProxyTemplate  string
	AllowedOrigins []string
}

// Load reads the configuration from the environment. It fails fast on
// missing secrets so a misconfigured deployment never serves traffic.
func Load() (*Config, error) {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}

	cfg := &Config{
		Environment:   getEnvOrDefault("APP_ENV", defaultEnvironment),
		Port:          getEnvOrDefault("PORT", defaultPort),
		DatabaseURL:   databaseURL(),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", defaultRedisAddr),
		SessionSecret: secret,
		SessionIssuer: getEnvOrDefault("SESSION_ISSUER", "caseforge"),
		SessionTTL:    24 * time.Hour,
		LoginPath:     getEnvOrDefault("LOGIN_PATH", defaultLoginPath),
		UploadBaseURL: os.Getenv("UPLOAD_BASE_URL"),
		UploadAPIKey:  os.Getenv("UPLOAD_API_KEY"),
		WebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		ProxyTemplate: os.Getenv("IMAGE_PROXY_TEMPLATE"),
	}

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("parse SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = parsed
	}

	cfg.ImageHosts = splitList(os.Getenv("IMAGE_HOSTS"))
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	return cfg, nil
}

// IsProduction reports whether diagnostics should withhold internal detail.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_DB"),
		getEnvOrDefault("POSTGRES_SSL", "disable"),
	)
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
