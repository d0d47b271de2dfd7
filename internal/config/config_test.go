package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Maintenance.StaleAfter)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
  request_timeout: 2s
storage:
  driver: Postgres
database:
  host: db
  port: 5433
  user: app
  password: secret
  database: eats
kitchen:
  prep_time: 250ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Kitchen.PrepTime)
	assert.Equal(t, "postgres://app:secret@db:5433/eats?sslmode=disable", cfg.Database.ConnString())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database:\n  host: from-file\n")
	t.Setenv("DB_HOST", "from-env")
	t.Setenv("PORT", "9090")
	t.Setenv("RABBITMQ_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.RabbitMQ.Enabled)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "unknown storage", body: "storage:\n  driver: mongo\n"},
		{name: "bad port", body: "server:\n  port: 70000\n"},
		{name: "bad env int", env: map[string]string{"DB_PORT": "five"}},
		{name: "zero prefetch", body: "kitchen:\n  prefetch: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestRabbitMQURL(t *testing.T) {
	cfg := RabbitMQConfig{Host: "mq", Port: 5672, User: "guest", Password: "guest"}
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.URL())
}
