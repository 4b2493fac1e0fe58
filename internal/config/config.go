package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"billing/internal/logger"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

type Config struct {
	// Storage Configuration
	StoreBackend string
	StorePath    string
	DatabaseDSN  string

	// Repository Configuration
	IDNode            int64
	RepositoryLatency time.Duration

	// Invoice Configuration
	InvoicePrefix string

	// Reporting Configuration
	ReportTimezone string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		StoreBackend:         strings.ToLower(getEnv("STORE_BACKEND", BackendFile)),
		StorePath:            getEnv("STORE_PATH", "billing_app_data.json"),
		DatabaseDSN:          getEnv("DATABASE_DSN", ""),
		IDNode:               getEnvInt("ID_NODE", 1),
		RepositoryLatency:    getEnvDuration("REPOSITORY_LATENCY", 0),
		InvoicePrefix:        getEnv("INVOICE_PREFIX", "INV-"),
		ReportTimezone:       getEnv("REPORT_TIMEZONE", "Local"),
		GoogleSheetURL:       getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet: getEnv("GOOGLE_SHEET_WORKSHEET", "Invoices"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendFile, BackendSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("STORE_PATH is required for the %s backend", c.StoreBackend)
		}
	case BackendPostgres, BackendMySQL:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s backend", c.StoreBackend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.StoreBackend)
	}
	if c.IDNode < 0 || c.IDNode > 1023 {
		return fmt.Errorf("ID_NODE must be between 0 and 1023, got %d", c.IDNode)
	}
	if c.RepositoryLatency < 0 {
		return fmt.Errorf("REPOSITORY_LATENCY must not be negative")
	}
	if c.InvoicePrefix == "" {
		return fmt.Errorf("INVOICE_PREFIX is required")
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE %q is not a known time zone: %w", c.ReportTimezone, err)
	}
	return nil
}

// Location returns the time zone used for calendar dates in reports.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RequireSheets reports whether the Google Sheets settings are usable.
func (c *Config) RequireSheets() error {
	if c.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL is required")
	}
	return nil
}

// SQLDSN returns the connection string for the SQL backends. For sqlite the
// store path is the database file.
func (c *Config) SQLDSN() string {
	if c.StoreBackend == BackendSQLite {
		return c.StorePath
	}
	return c.DatabaseDSN
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
