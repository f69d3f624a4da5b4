// Package config loads service configuration from the environment.
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

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Document identity
	Organization string

	// Store backend selection: jsonbin | sqlite | memory
	StoreBackend string

	// jsonbin
	JSONBinBaseURL string
	JSONBinAPIKey  string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets category source
	GoogleSpreadsheetID     string
	GoogleCategoriesRange   string
	GoogleServiceAccount    string
	GoogleServiceAccountKey string

	// Archive worker
	ArchiveDBPath    string
	ArchiveInterval  time.Duration
	ReconnectRetries int
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		Organization: getEnv("ORGANIZATION_NAME", "Misión Pentecostal de Jesucristo"),

		StoreBackend: getEnv("STORE_BACKEND", "memory"),

		JSONBinBaseURL: getEnv("JSONBIN_BASE_URL", "https://api.jsonbin.io/v3"),
		JSONBinAPIKey:  getEnv("JSONBIN_API_KEY", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/registro.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "registro"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_saved"),

		GoogleSpreadsheetID:     getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleCategoriesRange:   getEnv("GOOGLE_CATEGORIES_RANGE", ""),
		GoogleServiceAccount:    getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountKey: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		ArchiveDBPath:    getEnv("ARCHIVE_DB_PATH", "./data/archive.db"),
		ArchiveInterval:  getEnvDuration("ARCHIVE_INTERVAL", 30*time.Second),
		ReconnectRetries: getEnvInt("AMQP_RECONNECT_RETRIES", 5),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	if c.Organization == "" {
		errors = append(errors, "organization name cannot be empty")
	}

	validBackends := []string{"jsonbin", "sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.StoreBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of %v", c.StoreBackend, validBackends))
	}

	if c.StoreBackend == "jsonbin" {
		if c.JSONBinAPIKey == "" {
			errors = append(errors, "JSONBin API key is required when using jsonbin backend")
		}
		if c.JSONBinBaseURL == "" {
			errors = append(errors, "JSONBin base URL cannot be empty when using jsonbin backend")
		} else if parsed, err := url.Parse(c.JSONBinBaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid JSONBin base URL '%s'", c.JSONBinBaseURL))
		}
	}

	if c.StoreBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
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
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ArchiveInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid archive interval %v: must be at least 1 second", c.ArchiveInterval))
	} else if c.ArchiveInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid archive interval %v: must be at most 24 hours", c.ArchiveInterval))
	}

	if c.ReconnectRetries < 1 || c.ReconnectRetries > 100 {
		errors = append(errors, fmt.Sprintf("invalid reconnect retries %d: must be between 1 and 100", c.ReconnectRetries))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// HasGoogleSheets reports whether a spreadsheet is configured as the
// category source. Without one the service falls back to the file-seeded
// source.
func (c *Config) HasGoogleSheets() bool {
	return c.GoogleSpreadsheetID != ""
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
