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

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":9090"
storage:
  driver: "redis"
  pending_search_ttl_seconds: 600
redis:
  addr: "redis:6379"
kafka:
  brokers: ["kafka:9092"]
  events_topic: "wizard-events"
gateway:
  mode: "rest"
  base_url: "http://flights:8000"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Storage.PendingSearchTTL())
	assert.Equal(t, 30*time.Second, cfg.Storage.LockTTL(), "defaults fill unset keys")
	assert.Equal(t, time.Duration(0), cfg.Storage.SessionTTL())
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, GatewayREST, cfg.Gateway.Mode)
	assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout())
	assert.Equal(t, time.Minute, cfg.Gateway.SearchCacheTTL())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "http: ["))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = LoadConfig(writeConfig(t, "storage:\n  driver: mongo\n"))
	assert.ErrorContains(t, err, `unknown storage driver "mongo"`)

	_, err = LoadConfig(writeConfig(t, "gateway:\n  mode: rest\n"))
	assert.ErrorContains(t, err, "gateway.base_url is required")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "wizard", Password: "secret", Name: "flightwizard", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=wizard password=secret dbname=flightwizard sslmode=disable", d.DSN())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, GatewaySample, cfg.Gateway.Mode)
	assert.Equal(t, 800*time.Millisecond, cfg.Gateway.SampleDelay())
}
