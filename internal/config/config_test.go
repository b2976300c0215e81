package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
env: prod
http_server:
  address: "localhost:8082"
  request_timeout: 3s
  allowed_origins: ["http://localhost:5173"]
storage:
  driver: sqlite
  path: /tmp/students.db
auth:
  jwt_secret: top-secret
  expires_in: 2h
rate_limit:
  general: 50
  login: 3
  window: 1m
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "localhost:8082", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "/tmp/students.db", cfg.Storage.Path)
	assert.Equal(t, "top-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "2h", cfg.Auth.ExpiresIn)
	assert.Equal(t, "admin", cfg.Auth.AdminUsername)
	assert.Equal(t, 50, cfg.RateLimit.General)
	assert.Equal(t, 3, cfg.RateLimit.Login)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "24h", cfg.Auth.ExpiresIn)
	assert.Equal(t, "admin123", cfg.Auth.AdminPassword)
	assert.Equal(t, 100, cfg.RateLimit.General)
	assert.Equal(t, 5, cfg.RateLimit.Login)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing secret", "env: dev\n"},
		{"bad env", "env: qa\nauth:\n  jwt_secret: s\n"},
		{"unknown driver", "storage:\n  driver: redis\nauth:\n  jwt_secret: s\n"},
		{"postgres without dsn", "storage:\n  driver: postgres\nauth:\n  jwt_secret: s\n"},
		{"mongo without uri", "storage:\n  driver: mongo\nauth:\n  jwt_secret: s\n"},
		{"bad expiry", "auth:\n  jwt_secret: s\n  expires_in: tomorrow\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
