package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		// Given: a config file without values
		path := writeConfig(t, "redis: {}\n")

		// When: it is loaded
		conf, err := Load(path)

		// Then: every field has its default
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "9091", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.False(t, conf.NATS.Enabled())
		assert.Equal(t, "gomoku.match", conf.NATS.SubjectPrefix)
		assert.Equal(t, []string{"*"}, conf.CORS.AllowedOrigins)
	})

	t.Run("File values", func(t *testing.T) {
		path := writeConfig(t, `
log-level: debug
http-port: "8080"
socket-port: "8081"
redis:
  host: redis
  port: "6380"
nats:
  url: nats://nats:4222
  subject-prefix: arena
cors:
  allowed-origins:
    - https://play.example.com
`)

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "8081", conf.SocketPort)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
		assert.True(t, conf.NATS.Enabled())
		assert.Equal(t, "nats://nats:4222", conf.NATS.URL)
		assert.Equal(t, "arena", conf.NATS.SubjectPrefix)
		assert.Equal(t, []string{"https://play.example.com"}, conf.CORS.AllowedOrigins)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "socket-port: \"8081\"\n")
		t.Setenv("SOCKET_PORT", "7000")
		t.Setenv("NATS_URL", "nats://localhost:4222")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "7000", conf.SocketPort)
		assert.True(t, conf.NATS.Enabled())
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.Error(t, err)
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
