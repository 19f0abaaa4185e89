// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort         string
	CatalogPath        string
	StaticDir          string
	CORSAllowedOrigins string
	EnableHSTS         bool
	ServerDebugMode    bool
	LogFormat          string
	TickInterval       time.Duration
	KeepAliveInterval  time.Duration
	StreamWriteTimeout time.Duration
	RequestTimeout     time.Duration
	VoteRateLimit      string
	StrictBallots      bool
	RedisURL           string
	RabbitMQURL        string
	RabbitMQExchange   string
	OTELEnabled        bool
	OTELEndpoint       string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "3000"),
		CatalogPath:        getEnv("CATALOG_PATH", "data/songs.json"),
		StaticDir:          getEnv("STATIC_DIR", "web"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", false),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "json")),
		VoteRateLimit:      getEnv("VOTE_RATE_LIMIT", ""),
		StrictBallots:      getEnvBool("STRICT_BALLOTS", false),
		RedisURL:           getEnv("REDIS_URL", ""),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:   getEnv("RABBITMQ_EXCHANGE", "poll_events"),
		OTELEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"TICK_INTERVAL", 1 * time.Second, &cfg.TickInterval},
		{"KEEPALIVE_INTERVAL", 15 * time.Second, &cfg.KeepAliveInterval},
		{"STREAM_WRITE_TIMEOUT", 10 * time.Second, &cfg.StreamWriteTimeout},
		{"REQUEST_TIMEOUT", 30 * time.Second, &cfg.RequestTimeout},
	}
	for _, d := range durations {
		v, err := getEnvDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dest = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CatalogPath) == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("SERVER_PORT must be a number, got %q", c.ServerPort)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	for name, d := range map[string]time.Duration{
		"TICK_INTERVAL":        c.TickInterval,
		"KEEPALIVE_INTERVAL":   c.KeepAliveInterval,
		"STREAM_WRITE_TIMEOUT": c.StreamWriteTimeout,
		"REQUEST_TIMEOUT":      c.RequestTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
