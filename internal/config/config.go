// Package config provides centralized configuration management for the
// reconciliation service. It loads configuration from environment variables
// with sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Upload   UploadConfig
	Matching MatchingConfig
	Ingest   IngestConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for ordinary requests (default: 60s).
	// Matching runs use Matching.Timeout instead.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate applies the bundled schema on startup (default: true)
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// RedisConfig holds settings for the distributed run lock.
// When URL is empty matching runs are serialized in-process only.
type RedisConfig struct {
	URL string `env:"REDIS_URL"`

	// LockKey is the key guarding matching runs (default: pricematch:run)
	LockKey string `env:"RUN_LOCK_KEY" default:"pricematch:run"`

	// LockTTL is how long a lock survives without refresh (default: 30s)
	LockTTL time.Duration `env:"RUN_LOCK_TTL" default:"30s"`
}

// UploadConfig holds supplier file upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of parallel uploads (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an upload slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds parsing and persisting a single file (default: 5m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"5m"`
}

// MatchingConfig holds matching engine settings.
type MatchingConfig struct {
	// Threshold is the minimum fuzzy score accepted as a match, 1-100 (default: 80)
	Threshold int `env:"MATCH_THRESHOLD" default:"80"`

	// Workers bounds concurrent fuzzy scoring; 0 uses GOMAXPROCS (default: 0)
	Workers int `env:"MATCH_WORKERS" default:"0"`

	// Timeout bounds a whole matching run (default: 10m)
	Timeout time.Duration `env:"MATCH_TIMEOUT" default:"10m"`
}

// IngestConfig holds supplier file parsing settings.
type IngestConfig struct {
	// SynonymsFile is an optional YAML file overriding header synonyms
	SynonymsFile string `env:"INGEST_SYNONYMS_FILE"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
