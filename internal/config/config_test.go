package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "GRPC_ADDR", "STORE_DRIVER", "DB_MAX_OPEN_CONNS", "DB_MIGRATE",
		"REDIS_ADDR", "TX_TIMEOUT", "ALLOW_NEGATIVE_STOCK", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, "pgx", cfg.StoreDriver)
	assert.Equal(t, 50, cfg.DBMaxOpenConns)
	assert.True(t, cfg.DBMigrate)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 10*time.Second, cfg.TxTimeout)
	assert.False(t, cfg.AllowNegativeStock)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("DB_MAX_OPEN_CONNS", "8")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TX_TIMEOUT", "2s")
	t.Setenv("ALLOW_NEGATIVE_STOCK", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.StoreDriver)
	assert.Equal(t, 8, cfg.DBMaxOpenConns)
	assert.False(t, cfg.DBMigrate)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2*time.Second, cfg.TxTimeout)
	assert.True(t, cfg.AllowNegativeStock)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "-3")
	t.Setenv("TX_TIMEOUT", "soon")
	t.Setenv("DB_MIGRATE", "maybe")
	t.Setenv("LOG_LEVEL", "chatty")

	cfg := Load()

	assert.Equal(t, 50, cfg.DBMaxOpenConns)
	assert.Equal(t, 10*time.Second, cfg.TxTimeout)
	assert.True(t, cfg.DBMigrate)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_TIMEOUT_MS", "1500")
	t.Setenv("API_TOKEN", "secret")

	cfg := LoadClient()

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, map[string]string{"Authorization": "Bearer secret"}, cfg.Headers())

	t.Setenv("API_TOKEN", "")
	assert.Nil(t, LoadClient().Headers())
}
