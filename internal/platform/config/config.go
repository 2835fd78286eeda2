package config

import (
	"os"
	"time"
)

// Server captures process level configuration. Values come from the
// environment so main stays lean.
type Server struct {
	Addr          string
	Environment   string // "development" or "production"
	DatabaseURL   string
	RedisURL      string
	JWTSigningKey string
	SessionTTL    time.Duration

	// TracingEnabled switches the rate limiter's consume spans from the
	// no-op tracer to the OpenTelemetry adapter.
	TracingEnabled bool

	SMTP SMTP
}

// SMTP holds outbound mail configuration for verification codes.
// An empty Host means codes are logged instead of mailed (development).
type SMTP struct {
	Host string
	Port string
	From string
}

// IsProduction reports whether the process runs with production hardening
// (Secure cookies, real mail dispatch).
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:          getenv("VELOFIT_ADDR", ":8080"),
		Environment:   getenv("VELOFIT_ENV", "development"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:    30 * 24 * time.Hour,

		TracingEnabled: boolenv("VELOFIT_TRACING"),
		SMTP: SMTP{
			Host: os.Getenv("SMTP_HOST"),
			Port: getenv("SMTP_PORT", "587"),
			From: getenv("SMTP_FROM", "no-reply@velofit.example"),
		},
	}

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if duration, err := time.ParseDuration(ttl); err == nil {
			cfg.SessionTTL = duration
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolenv(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
