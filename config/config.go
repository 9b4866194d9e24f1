/*
config.go - Server configuration from the environment

PURPOSE:
  Reads every server setting from environment variables (optionally seeded
  from a .env file) and validates them in one pass, so a misconfigured
  deployment fails at startup with the full list of problems.

SEE ALSO:
  - cmd/server/main.go: the only caller of Load
  - auth/service.go: consumes AuthConfig
*/
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MatheSouzaF/horas-extras/auth"
)

// Environments accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

const minSecretLength = 16

type Config struct {
	Env string

	// HTTP Server
	Port        string
	CORSOrigins []string

	// Database
	DatabasePath string

	// Auth
	JWTSecret           string
	JWTRefreshSecret    string
	JWTExpiresIn        time.Duration
	JWTRefreshExpiresIn time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string

	// Background
	SessionSweepInterval time.Duration

	LogLevel string

	// parse failures found by Load, reported by Validate
	problems []string
}

// Load reads the configuration. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	cfg := &Config{
		Env:          getEnv("APP_ENV", EnvDevelopment),
		Port:         getEnv("PORT", "3333"),
		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		DatabasePath: getEnv("DATABASE_PATH", "horas-extras.db"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "horas-extras"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	cfg.JWTExpiresIn = cfg.getEnvDuration("JWT_EXPIRES_IN", 15*time.Minute)
	cfg.JWTRefreshExpiresIn = cfg.getEnvDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour)
	cfg.SessionSweepInterval = cfg.getEnvDuration("SESSION_SWEEP_INTERVAL", time.Hour)

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string
	errors = append(errors, c.problems...)

	switch c.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		errors = append(errors, fmt.Sprintf("invalid APP_ENV '%s': must be one of development, test, production", c.Env))
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DatabasePath == "" {
		errors = append(errors, "DATABASE_PATH cannot be empty")
	}

	if len(c.JWTSecret) < minSecretLength {
		errors = append(errors, fmt.Sprintf("JWT_SECRET must have at least %d characters", minSecretLength))
	}
	if len(c.JWTRefreshSecret) < minSecretLength {
		errors = append(errors, fmt.Sprintf("JWT_REFRESH_SECRET must have at least %d characters", minSecretLength))
	}
	if c.JWTSecret != "" && c.JWTSecret == c.JWTRefreshSecret {
		errors = append(errors, "JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.JWTExpiresIn <= 0 {
		errors = append(errors, "JWT_EXPIRES_IN must be positive")
	}
	if c.JWTRefreshExpiresIn <= 0 {
		errors = append(errors, "JWT_REFRESH_EXPIRES_IN must be positive")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SessionSweepInterval < time.Second {
		errors = append(errors, "SESSION_SWEEP_INTERVAL must be at least 1s")
	}

	if _, ok := parseLevel(c.LogLevel); !ok {
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// AuthConfig returns the token settings for the credential service.
func (c *Config) AuthConfig() auth.Config {
	return auth.Config{
		AccessSecret:  c.JWTSecret,
		RefreshSecret: c.JWTRefreshSecret,
		AccessTTL:     c.JWTExpiresIn,
		RefreshTTL:    c.JWTRefreshExpiresIn,
	}
}

// SlogLevel returns the configured log level, info when unknown.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// NewLogger builds the process logger: JSON in production, text elsewhere.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	var handler slog.Handler
	if c.Env == EnvProduction {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", "horas-extras")
}

// ParseDuration accepts time.ParseDuration syntax plus a whole-day suffix
// such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// =============================================================================
// HELPERS
// =============================================================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := ParseDuration(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s '%s': %v", key, value, err))
		return defaultValue
	}
	return d
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
