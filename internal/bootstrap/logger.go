package bootstrap

import (
	"log/slog"

	"github.com/osse101/StickerSwap_Go/internal/config"
	"github.com/osse101/StickerSwap_Go/internal/logger"
)

// SetupLogger initializes the default logger from the application config.
// The environment preset decides whether source locations are logged.
func SetupLogger(cfg *config.Config) {
	preset := logger.DefaultConfig()
	switch cfg.Environment {
	case logger.EnvironmentDev:
		preset = logger.DevelopmentConfig()
	case logger.EnvironmentProduction:
		preset = logger.ProductionConfig()
	}

	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		cfg.ServiceName,
		cfg.Version,
		cfg.Environment,
		preset.AddSource,
	))

	slog.Info(LogMsgStarting,
		"environment", cfg.Environment,
		"storage", cfg.StorageBackend,
		"version", cfg.Version)
	slog.Debug(LogMsgConfigurationLoaded,
		"db_host", cfg.DBHost,
		"db_port", cfg.DBPort,
		"db_name", cfg.DBName,
		"redis", cfg.UsesRedis(),
		"port", cfg.Port)
}
