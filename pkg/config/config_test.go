package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, int64(20<<20), cfg.Server.MaxUploadBytes())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0, cfg.Parser.PendingOrderMaxLines)
	assert.Equal(t, "MXN", cfg.Parser.Currency)
	assert.False(t, cfg.Storage.ArchiveEnabled)
	assert.Equal(t, 30*24*time.Hour, cfg.Storage.Retention())
	assert.Equal(t, slog.LevelInfo, cfg.Observability.LogLevel)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("INVOICE_PENDING_ORDER_MAX_LINES", "4")
	t.Setenv("INVOICE_CURRENCY", "usd")
	t.Setenv("ARCHIVE_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 4, cfg.Parser.PendingOrderMaxLines)
	assert.Equal(t, "USD", cfg.Parser.Currency)
	assert.True(t, cfg.Storage.ArchiveEnabled)
	assert.Equal(t, slog.LevelDebug, cfg.Observability.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"zero upload limit", "MAX_UPLOAD_MB", "0"},
		{"negative expiry", "INVOICE_PENDING_ORDER_MAX_LINES", "-1"},
		{"bad currency", "INVOICE_CURRENCY", "PESOS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MAX_UPLOAD_MB=5\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("MAX_UPLOAD_MB") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Server.MaxUploadMB)
}
