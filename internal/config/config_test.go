package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars blanks every variable Load reads so defaults apply.
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "API_KEY", "ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT", "STORAGE_BACKEND",
		"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME", "REDIS_ADDR",
		"INITIAL_PACK_COUNT", "DAILY_PACK_COUNT", "CARDS_PER_PACK", "RARITY_WEIGHTS",
		"GRANT_TIMEZONE", "TX_MAX_RETRIES", "CATALOG_CACHE_TTL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults when no env vars set", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, StorageBackendPostgres, cfg.StorageBackend)
		assert.Equal(t, DefaultInitialPackCount, cfg.InitialPackCount)
		assert.Equal(t, DefaultDailyPackCount, cfg.DailyPackCount)
		assert.Equal(t, DefaultCardsPerPack, cfg.CardsPerPack)
		assert.Equal(t, DefaultRarityWeights, cfg.RarityWeights)
		assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
		assert.False(t, cfg.UsesRedis())
	})

	t.Run("loads config from environment variables", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("PORT", "3000")
		t.Setenv("API_KEY", "custom-api-key")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("STORAGE_BACKEND", "memory")
		t.Setenv("INITIAL_PACK_COUNT", "10")
		t.Setenv("GRANT_TIMEZONE", "America/Sao_Paulo")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("CATALOG_CACHE_TTL", "30s")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, StorageBackendMemory, cfg.StorageBackend)
		assert.Equal(t, 10, cfg.InitialPackCount)
		assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
		assert.True(t, cfg.UsesRedis())

		loc, err := cfg.Location()
		require.NoError(t, err)
		assert.Equal(t, "America/Sao_Paulo", loc.String())
	})

	t.Run("fails without API key", func(t *testing.T) {
		clearEnvVars(t)

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey")
	})

	t.Run("fails on invalid port", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "k")
		t.Setenv("PORT", "not-a-number")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("fails on unknown storage backend", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "k")
		t.Setenv("STORAGE_BACKEND", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "StorageBackend")
	})

	t.Run("fails on unknown timezone", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "k")
		t.Setenv("GRANT_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GRANT_TIMEZONE")
	})
}

func TestWarnings(t *testing.T) {
	cfg := &Config{APIKey: PlaceholderAPIKey, StorageBackend: StorageBackendMemory}
	assert.Len(t, cfg.Warnings(), 2)
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.GetDBConnString())
}
