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

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestMustLoad(t *testing.T) {
	t.Run("Applies defaults", func(t *testing.T) {
		// Given: an empty config file
		path := writeConfig(t, "log-level: debug\n")

		// When: it is loaded
		conf := MustLoad(path)

		// Then: every key falls back to its default
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "1024", conf.TCPPort)
		assert.Equal(t, "8080", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Zero(t, conf.Match.ReadyTimeout)
		assert.Zero(t, conf.Match.TurnTimeout)
		assert.Equal(t, 10*time.Second, conf.Match.WriteTimeout)
		assert.Equal(t, 256, conf.Match.MaxLineLength)
		assert.Equal(t, 2*time.Hour, conf.Match.SnapshotTTL)
	})

	t.Run("Reads match limits from yaml", func(t *testing.T) {
		path := writeConfig(t, `
tcp-port: "4000"
redis:
  host: redis
  port: "6380"
match:
  ready-timeout: 30s
  turn-timeout: 1m
  max-line-length: 64
`)

		conf := MustLoad(path)

		assert.Equal(t, "4000", conf.TCPPort)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, 30*time.Second, conf.Match.ReadyTimeout)
		assert.Equal(t, time.Minute, conf.Match.TurnTimeout)
		assert.Equal(t, 64, conf.Match.MaxLineLength)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		t.Setenv("MATCH_TURN_TIMEOUT", "5s")
		t.Setenv("TCP_PORT", "7000")
		path := writeConfig(t, "match:\n  turn-timeout: 1m\n")

		conf := MustLoad(path)

		assert.Equal(t, 5*time.Second, conf.Match.TurnTimeout)
		assert.Equal(t, "7000", conf.TCPPort)
	})

	t.Run("Panics on a missing file", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "absent.yml"))
		})
	})
}

func TestRedis_GetRedisAddr(t *testing.T) {
	assert.Equal(t, "10.0.0.1:6379", (&Redis{Host: "10.0.0.1", Port: "6379"}).GetRedisAddr())
	assert.Empty(t, (&Redis{Port: "6379"}).GetRedisAddr())
}
