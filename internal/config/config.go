package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080" validate:"min=1,max=65535"`
	APIKey      string `env:"API_KEY" validate:"required"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"stickerswap"`
	Version     string `env:"VERSION" envDefault:"dev"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error DEBUG INFO WARN ERROR"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=json text"`
	// Client IPs are taken from X-Forwarded-For only behind these proxies
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"postgres" validate:"oneof=postgres memory"`
	DBUser         string        `env:"DB_USER" envDefault:"postgres"`
	DBPassword     string        `env:"DB_PASSWORD" envDefault:"postgres"`
	DBHost         string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort         string        `env:"DB_PORT" envDefault:"5432"`
	DBName         string        `env:"DB_NAME" envDefault:"stickerswap"`
	DBMaxConns     int           `env:"DB_MAX_CONNS" envDefault:"20" validate:"min=1"`
	DBMaxIdle      time.Duration `env:"DB_MAX_IDLE" envDefault:"30m"`
	DBMaxLifetime  time.Duration `env:"DB_MAX_LIFETIME" envDefault:"1h"`

	// Purchase idempotency uses Redis when an address is configured and an
	// in-process store otherwise.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"min=0"`

	InitialPackCount int    `env:"INITIAL_PACK_COUNT" envDefault:"5" validate:"min=1"`
	DailyPackCount   int    `env:"DAILY_PACK_COUNT" envDefault:"3" validate:"min=1"`
	CardsPerPack     int    `env:"CARDS_PER_PACK" envDefault:"4" validate:"min=1"`
	RarityWeights    string `env:"RARITY_WEIGHTS" envDefault:"LEGENDARY:0.05,GOLD:0.20,SILVER:0.75" validate:"required"`
	GrantTimezone    string `env:"GRANT_TIMEZONE" envDefault:"UTC"`
	TxMaxRetries     int    `env:"TX_MAX_RETRIES" envDefault:"3" validate:"min=0,max=10"`

	CatalogCacheTTL        time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
	NotifyWorkers          int           `env:"NOTIFY_WORKERS" envDefault:"4" validate:"min=1"`
	NotifyQueueSize        int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"1024" validate:"min=1"`
	PurchaseIdempotencyTTL time.Duration `env:"PURCHASE_IDEMPOTENCY_TTL" envDefault:"72h"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location resolves GrantTimezone. Daily grant windows follow calendar days in this zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.GrantTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid GRANT_TIMEZONE %q: %w", c.GrantTimezone, err)
	}
	return loc, nil
}

// UsesRedis reports whether a Redis address has been configured.
func (c *Config) UsesRedis() bool {
	return c.RedisAddr != ""
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
