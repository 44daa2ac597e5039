package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_ENV", "STORE_DRIVER", "MONGO_DATABASE", "REDIS_ADDR", "STORE_TIMEOUT", "CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "ecommerce", cfg.Mongo.Database)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", DriverMemory)
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("MONGO_CONNECT_RETRIES", "2")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.Timeout)
	assert.Equal(t, 2, cfg.Mongo.ConnectRetries)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MONGO_CONNECT_RETRIES", "many")
	t.Setenv("CACHE_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 5, cfg.Mongo.ConnectRetries)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
}
