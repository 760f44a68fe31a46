package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string
	SQLiteDSN   string

	// Seed data
	MockExpenses int
	MockSeed     uint64

	// Import / payment behaviour
	ImportMode     string
	ImportWatchDir string
	PayNowDelay    time.Duration
	RecentLimit    int

	// AMQP notification bus, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Aggregate cache
	CacheTTL  time.Duration
	CacheSize int

	LogLevel string
}

const (
	ImportModeCount = "count"
	ImportModeMerge = "merge"
)

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
		SQLiteDSN:   getEnv("SQLITE_DSN", "file:budgetbook?mode=memory&cache=shared"),

		MockExpenses: getEnvInt("MOCK_EXPENSES", 20),
		MockSeed:     getEnvUint64("MOCK_SEED", 0),

		ImportMode:     getEnv("IMPORT_MODE", ImportModeCount),
		ImportWatchDir: getEnv("IMPORT_WATCH_DIR", ""),
		PayNowDelay:    getEnvDuration("PAY_NOW_DELAY", 2*time.Second),
		RecentLimit:    getEnvInt("RECENT_LIMIT", 5),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgetbook"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		CacheTTL:  getEnvDuration("CACHE_TTL", time.Minute),
		CacheSize: getEnvInt("CACHE_SIZE", 128),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDSN == "" {
			errors = append(errors, "SQLite DSN cannot be empty when using sqlite backend")
		} else if c.SQLiteDSN != ":memory:" && !strings.Contains(c.SQLiteDSN, "mode=memory") {
			errors = append(errors, fmt.Sprintf("SQLite DSN '%s' must be in-memory (mode=memory or :memory:)", c.SQLiteDSN))
		}
	}

	if c.MockExpenses < 0 || c.MockExpenses > 10000 {
		errors = append(errors, fmt.Sprintf("invalid mock expense count %d: must be between 0 and 10000", c.MockExpenses))
	}

	validModes := []string{ImportModeCount, ImportModeMerge}
	if !slices.Contains(validModes, c.ImportMode) {
		errors = append(errors, fmt.Sprintf("invalid import mode '%s': must be one of %v", c.ImportMode, validModes))
	}

	if c.ImportWatchDir != "" {
		if info, err := os.Stat(c.ImportWatchDir); err != nil {
			errors = append(errors, fmt.Sprintf("import watch directory '%s' is not accessible: %v", c.ImportWatchDir, err))
		} else if !info.IsDir() {
			errors = append(errors, fmt.Sprintf("import watch path '%s' is not a directory", c.ImportWatchDir))
		}
	}

	if c.PayNowDelay < 0 || c.PayNowDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid pay now delay %v: must be between 0 and 1 minute", c.PayNowDelay))
	}

	if c.RecentLimit < 1 || c.RecentLimit > 100 {
		errors = append(errors, fmt.Sprintf("invalid recent limit %d: must be between 1 and 100", c.RecentLimit))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
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

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseUint(value, 10, 64); err == nil {
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
