package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string
	errs = append(errs, c.Server.validate()...)
	errs = append(errs, c.Database.validate()...)
	errs = append(errs, c.Redis.validate()...)
	errs = append(errs, c.Upload.validate()...)
	errs = append(errs, c.Matching.validate()...)
	errs = append(errs, c.Security.validate()...)
	errs = append(errs, c.Logging.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *ServerConfig) validate() []string {
	var errs []string
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Port))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}
	return errs
}

func (c *DatabaseConfig) validate() []string {
	var errs []string
	if c.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	if c.MaxConns < c.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.MaxConns, c.MinConns))
	}
	return errs
}

func (c *RedisConfig) validate() []string {
	var errs []string
	if c.URL != "" {
		if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, "REDIS_URL must be a redis:// or rediss:// URL")
		}
	}
	if c.LockKey == "" {
		errs = append(errs, "RUN_LOCK_KEY must not be empty")
	}
	if c.LockTTL <= 0 {
		errs = append(errs, "RUN_LOCK_TTL must be positive")
	}
	return errs
}

func (c *UploadConfig) validate() []string {
	var errs []string
	if c.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.MaxConcurrent <= 0 {
		errs = append(errs, "UPLOAD_MAX_CONCURRENT must be positive")
	}
	if c.MaxWaitTime <= 0 {
		errs = append(errs, "UPLOAD_MAX_WAIT_TIME must be positive")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "UPLOAD_TIMEOUT must be positive")
	}
	return errs
}

func (c *MatchingConfig) validate() []string {
	var errs []string
	if c.Threshold < 1 || c.Threshold > 100 {
		errs = append(errs, fmt.Sprintf("MATCH_THRESHOLD (%d) must be 1-100", c.Threshold))
	}
	if c.Workers < 0 {
		errs = append(errs, "MATCH_WORKERS must be non-negative")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "MATCH_TIMEOUT must be positive")
	}
	return errs
}

func (c *SecurityConfig) validate() []string {
	var errs []string
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES entry %q is not a valid CIDR", cidr))
		}
	}
	return errs
}

func (c *LoggingConfig) validate() []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Format))
	}
	return errs
}

// String returns a safe string representation of the config for logging.
// Connection URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Redis: {URL: %s, LockTTL: %s}, ", maskIfSet(c.Redis.URL), c.Redis.LockTTL)
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent)
	fmt.Fprintf(&b, "Matching: {Threshold: %d, Workers: %d}, ", c.Matching.Threshold, c.Matching.Workers)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func maskIfSet(s string) string {
	if s == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
