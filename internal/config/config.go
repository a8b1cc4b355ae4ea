package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Backend selection values.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	BlobMemory = "memory"
	BlobGCS    = "gcs"
)

type Config struct {
	// HTTP server
	Port string

	// SiteBaseURL is used only to build the sign-up email-confirmation
	// redirect target.
	SiteBaseURL string

	// Expense store backend
	StoreBackend string
	SQLiteDBPath string
	DatabaseURL  string

	// Sessions
	JWTSecret string

	// Receipt blob storage
	BlobBackend   string
	ReceiptBucket string

	// Events (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Per-owner view-store registry
	SessionCacheSize int
	SessionCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		SiteBaseURL: getEnv("SITE_BASE_URL", "http://localhost:3000"),

		StoreBackend: getEnv("STORE_BACKEND", BackendMemory),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expensedash.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		BlobBackend:   getEnv("BLOB_BACKEND", BlobMemory),
		ReceiptBucket: getEnv("RECEIPT_BUCKET", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expensedash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		SessionCacheSize: getEnvInt("SESSION_CACHE_SIZE", 256),
		SessionCacheTTL:  getEnvDuration("SESSION_CACHE_TTL", 30*time.Minute),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLITE_DB_PATH cannot be empty when using the sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when using the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid store backend '%s': must be one of [%s %s %s]",
			c.StoreBackend, BackendMemory, BackendSQLite, BackendPostgres))
	}

	switch c.BlobBackend {
	case BlobMemory:
	case BlobGCS:
		if c.ReceiptBucket == "" {
			errs = append(errs, "RECEIPT_BUCKET is required when using the gcs blob backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid blob backend '%s': must be one of [%s %s]",
			c.BlobBackend, BlobMemory, BlobGCS))
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	if c.SiteBaseURL != "" {
		if u, err := url.Parse(c.SiteBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("invalid site base URL '%s'", c.SiteBaseURL))
		}
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
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SessionCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid session cache size %d: must be at least 1", c.SessionCacheSize))
	}
	if c.SessionCacheTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session cache TTL %v: must be at least 1 minute", c.SessionCacheTTL))
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
