package config_test

import (
	"os"
	"path/filepath"
	"taskPlanner/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestLoad_Defaults проверяет значения по умолчанию
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PLANNER_REPOSITORY_TYPE", "inmemory")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int32(10), cfg.Database.MaxConnections)
	assert.Equal(t, int32(2), cfg.Database.MinConnections)
	assert.Equal(t, 300*time.Millisecond, cfg.Database.SlowQuery)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionMaxAge)
	assert.Equal(t, "planner_session", cfg.Auth.CookieName)
	assert.Equal(t, "@every 1h", cfg.Housekeeping.Schedule)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.Equal(t, "http://localhost:8080/auth/callback/google", cfg.GoogleRedirectURL())
}

// TestLoad_FileAndEnv проверяет чтение YAML и приоритет окружения
func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
  allowed_origins:
    - https://planner.example.com
database:
  url: postgres://file@localhost/planner
  max_connections: 20
  min_connections: 4
repository:
  type: postgres
cache:
  enabled: true
  ttl: 1m
`)
	t.Setenv("DATABASE_URL", "postgres://env@localhost/planner")
	t.Setenv("PLANNER_SERVER_PORT", "9100")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "postgres://env@localhost/planner", cfg.Database.URL)
	assert.Equal(t, int32(20), cfg.Database.MaxConnections)
	assert.Equal(t, []string{"https://planner.example.com"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "client-id", cfg.Auth.GoogleClientID)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Server:     config.ServerConfig{Port: "8080"},
			Database:   config.DatabaseConfig{URL: "postgres://x", MaxConnections: 10, MinConnections: 2},
			Repository: config.RepositoryConfig{Type: config.RepositoryPostgres},
			Auth:       config.AuthConfig{SessionMaxAge: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "success - valid", mutate: func(*config.Config) {}},
		{
			name:    "error - empty port",
			mutate:  func(c *config.Config) { c.Server.Port = "" },
			wantErr: "server.port",
		},
		{
			name:    "error - postgres without url",
			mutate:  func(c *config.Config) { c.Database.URL = "" },
			wantErr: "database.url",
		},
		{
			name:   "success - inmemory without url",
			mutate: func(c *config.Config) { c.Database.URL = ""; c.Repository.Type = config.RepositoryInMemory },
		},
		{
			name:    "error - unknown repository",
			mutate:  func(c *config.Config) { c.Repository.Type = "mongo" },
			wantErr: "repository.type",
		},
		{
			name:    "error - pool bounds",
			mutate:  func(c *config.Config) { c.Database.MaxConnections = 1 },
			wantErr: "max_connections",
		},
		{
			name:    "error - session max age",
			mutate:  func(c *config.Config) { c.Auth.SessionMaxAge = 0 },
			wantErr: "session_max_age",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
