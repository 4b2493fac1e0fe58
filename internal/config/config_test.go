package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORE_BACKEND", "STORE_PATH", "DATABASE_DSN", "ID_NODE",
		"REPOSITORY_LATENCY", "INVOICE_PREFIX", "GOOGLE_SHEET_URL",
		"GOOGLE_SHEET_WORKSHEET", "LOG_LEVEL", "LOG_FORMAT",
		"LOG_TIME_FORMAT", "LOG_OUTPUT", "REPORT_TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.StoreBackend)
	assert.Equal(t, "billing_app_data.json", cfg.StorePath)
	assert.Equal(t, int64(1), cfg.IDNode)
	assert.Equal(t, time.Duration(0), cfg.RepositoryLatency)
	assert.Equal(t, "INV-", cfg.InvoicePrefix)
	assert.Equal(t, "Invoices", cfg.GoogleSheetWorksheet)
	assert.Equal(t, "stderr", cfg.LogOutput)
	assert.Equal(t, time.Local, cfg.Location())
	assert.Error(t, cfg.RequireSheets())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("STORE_PATH", "/tmp/billing.db")
	t.Setenv("ID_NODE", "7")
	t.Setenv("REPOSITORY_LATENCY", "500ms")
	t.Setenv("INVOICE_PREFIX", "BILL-")
	t.Setenv("REPORT_TIMEZONE", "UTC")
	t.Setenv("GOOGLE_SHEET_URL", "https://docs.google.com/spreadsheets/d/abc123/edit")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "/tmp/billing.db", cfg.SQLDSN())
	assert.Equal(t, int64(7), cfg.IDNode)
	assert.Equal(t, 500*time.Millisecond, cfg.RepositoryLatency)
	assert.Equal(t, "BILL-", cfg.InvoicePrefix)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.NoError(t, cfg.RequireSheets())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown backend",
			env:  map[string]string{"STORE_BACKEND": "redis"},
		},
		{
			name: "postgres without DSN",
			env:  map[string]string{"STORE_BACKEND": "postgres"},
		},
		{
			name: "mysql without DSN",
			env:  map[string]string{"STORE_BACKEND": "mysql"},
		},
		{
			name: "node out of range",
			env:  map[string]string{"ID_NODE": "4096"},
		},
		{
			name: "unknown time zone",
			env:  map[string]string{"REPORT_TIMEZONE": "Mars/Olympus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestInvalidNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ID_NODE", "abc")
	t.Setenv("REPOSITORY_LATENCY", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.IDNode)
	assert.Equal(t, time.Duration(0), cfg.RepositoryLatency)
}

func TestPostgresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_DSN", "host=localhost user=billing dbname=billing")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "host=localhost user=billing dbname=billing", cfg.SQLDSN())
}
