// Package config loads kwartrack settings from the environment and keeps the
// persisted session snapshot under the kwartrack home directory.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	klog "github.com/caburj/kwartrack/internal/log"
)

// Config holds every environment-driven setting.
type Config struct {
	// Storage
	Home   string
	DBPath string

	// Acting user (name or id) for CLI commands.
	User string

	// Query cache
	CacheMaxEntries int
	CacheTTL        time.Duration

	// AMQP broadcast of invalidations; empty URL disables it.
	AMQPURL      string
	AMQPExchange string

	LogLevel         string
	StrictInvariants bool
}

// DefaultHome returns ~/.kwartrack.
func DefaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".kwartrack"), nil
}

// LoadDotEnv loads the given .env files into the environment. Missing files
// are skipped and variables already set are never overridden.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// Load reads the configuration from the environment.
func Load() *Config {
	home := getEnv("KWARTRACK_HOME", "")
	if home == "" {
		if h, err := DefaultHome(); err == nil {
			home = h
		} else {
			home = ".kwartrack"
		}
	}

	return &Config{
		Home:   home,
		DBPath: getEnv("KWARTRACK_DB_PATH", filepath.Join(home, "kwartrack.db")),
		User:   getEnv("KWARTRACK_USER", ""),

		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 512),
		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kwartrack.invalidations"),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		StrictInvariants: getEnvBool("STRICT_INVARIANTS", false),
	}
}

// SessionPath returns where the selection snapshot is persisted.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Home, "session.json")
}

// AMQPEnabled reports whether invalidations are broadcast.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Home == "" {
		errs = append(errs, "home directory cannot be empty")
	}
	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	}

	if c.CacheMaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheMaxEntries))
	}
	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := klog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
