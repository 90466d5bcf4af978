package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "./uploads", cfg.Storage.UploadDir)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadSize)
	assert.Equal(t, 20, cfg.Paging.DefaultPageSize)
	assert.True(t, cfg.Server.AutoMigrate)
	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.ValidateConfig())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_PATH", "/tmp/tasks.db")
	t.Setenv("UPLOAD_DIR", "/var/lib/uploads")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("HTTP_BASE_PATH", "/api/")
	t.Setenv("DEFAULT_PAGE_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.HTTPPort)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/tasks.db", cfg.Database.Path)
	assert.Equal(t, "/var/lib/uploads", cfg.Storage.UploadDir)
	assert.False(t, cfg.Server.AutoMigrate)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, 20, cfg.Paging.DefaultPageSize, "unparseable values fall back to default")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "unsupported DB_DRIVER",
		},
		{
			name:    "empty upload dir",
			mutate:  func(c *Config) { c.Storage.UploadDir = "  " },
			wantErr: "UPLOAD_DIR",
		},
		{
			name:    "default page larger than max",
			mutate:  func(c *Config) { c.Paging.DefaultPageSize = 500 },
			wantErr: "DEFAULT_PAGE_SIZE",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Database.Driver = DriverSQLite
				c.Database.Path = ""
			},
			wantErr: "DB_PATH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.ValidateConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
