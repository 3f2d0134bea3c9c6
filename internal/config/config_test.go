package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/fiscal/internal/domain"
)

// chdir moves the test into an empty directory so no stray .env file is read.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "fiscal.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, domain.WeekendPostpone, cfg.Scheduling.WeekendPolicy())
	assert.Equal(t, "BR", cfg.Scheduling.Jurisdiction)
	assert.Equal(t, 10, cfg.Scheduling.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Scheduling.BatchDelay)
	assert.Equal(t, 100, cfg.Scheduling.LargeBatchThreshold)
	assert.False(t, cfg.Scheduling.StrictHistory)
	assert.Equal(t, HolidaysEmbedded, cfg.Holidays.Source)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 10*time.Minute, cfg.Redis.LockTTL)
	assert.False(t, cfg.Observability.Enabled)
	assert.Equal(t, "fiscal", cfg.Observability.ServiceName)
}

func TestLoadServerConfig_WithEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FISCAL_HTTP_PORT", "9090")
	t.Setenv("FISCAL_HTTP_CORS_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("FISCAL_DB_DRIVER", "postgres")
	t.Setenv("FISCAL_DB_DSN", "postgres://fiscal:secret@db:5432/fiscal")
	t.Setenv("FISCAL_DB_MAX_OPEN_CONNS", "50")
	t.Setenv("FISCAL_SCHEDULING_DEFAULT_WEEKEND_POLICY", "anticipate")
	t.Setenv("FISCAL_SCHEDULING_STRICT_HISTORY", "true")
	t.Setenv("FISCAL_REDIS_ADDR", "redis:6379")
	t.Setenv("FISCAL_OTEL_ENABLED", "true")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://fiscal:secret@db:5432/fiscal", cfg.Database.DSN)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, domain.WeekendAdvance, cfg.Scheduling.WeekendPolicy())
	assert.True(t, cfg.Scheduling.StrictHistory)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Observability.Enabled)
}

func TestLoadServerConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FISCAL_HOLIDAYS_SOURCE=fs\nFISCAL_HOLIDAYS_DIR=/etc/fiscal/holidays\n"), 0o600))
	chdir(t, dir)
	t.Cleanup(func() {
		os.Unsetenv("FISCAL_HOLIDAYS_SOURCE")
		os.Unsetenv("FISCAL_HOLIDAYS_DIR")
	})

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, HolidaysFS, cfg.Holidays.Source)
	assert.Equal(t, "/etc/fiscal/holidays", cfg.Holidays.Dir)
}

func TestLoadServerConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres without dsn", map[string]string{"FISCAL_DB_DRIVER": "postgres"}, "FISCAL_DB_DSN"},
		{"unknown driver", map[string]string{"FISCAL_DB_DRIVER": "mysql"}, "FISCAL_DB_DRIVER"},
		{"bad weekend policy", map[string]string{"FISCAL_SCHEDULING_DEFAULT_WEEKEND_POLICY": "sometimes"}, "invalid weekend policy"},
		{"fs holidays without dir", map[string]string{"FISCAL_HOLIDAYS_SOURCE": "fs"}, "FISCAL_HOLIDAYS_DIR"},
		{"gcs holidays without bucket", map[string]string{"FISCAL_HOLIDAYS_SOURCE": "gcs"}, "FISCAL_HOLIDAYS_BUCKET"},
		{"zero batch size", map[string]string{"FISCAL_SCHEDULING_BATCH_SIZE": "0"}, "FISCAL_SCHEDULING_BATCH_SIZE"},
		{"negative write concurrency", map[string]string{"FISCAL_SCHEDULING_MAX_CONCURRENT_WRITES": "-1"}, "FISCAL_SCHEDULING_MAX_CONCURRENT_WRITES"},
		{"malformed duration", map[string]string{"FISCAL_HTTP_SHUTDOWN_TIMEOUT": "soon"}, "failed to parse environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadServerConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadWorkerConfig(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FISCAL_WORKER_TICK_INTERVAL", "1h")

	cfg, err := LoadWorkerConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.TickInterval)
	assert.Equal(t, 5*time.Minute, cfg.OperationTimeout)

	t.Setenv("FISCAL_WORKER_TICK_INTERVAL", "-1s")
	_, err = LoadWorkerConfig()
	require.Error(t, err)
}
