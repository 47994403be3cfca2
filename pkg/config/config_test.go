package config

import (
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
	assert.Equal(t, StorageJSON, cfg.Storage.Backend)
	assert.Equal(t, "overwrite", cfg.Import.Policy)
	assert.Equal(t, 4, cfg.Import.Workers)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("STORAGE_PATH", "/tmp/finance.db")
	t.Setenv("IMPORT_POLICY", "append")
	t.Setenv("IMPORT_SCAN_SCHEDULE", "*/5 * * * *")
	t.Setenv("IMPORT_SCAN_ON_START", "true")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/finance.db", cfg.Storage.Path)
	assert.Equal(t, "append", cfg.Import.Policy)
	assert.Equal(t, "*/5 * * * *", cfg.Import.ScanSchedule)
	assert.True(t, cfg.Import.ScanOnStart)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORAGE_BACKEND", "postgres"},
		{"IMPORT_POLICY", "merge"},
		{"LOG_LEVEL", "trace"},
		{"LOG_FORMAT", "xml"},
		{"SERVER_PORT", "70000"},
		{"IMPORT_WORKERS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("IMPORT_DIR=/srv/extratos\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("IMPORT_DIR") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/extratos", cfg.Import.Dir)
}
