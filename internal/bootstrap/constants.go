package bootstrap

import "time"

// MemorySeedFakerSeed fixes the generated album of the in-memory backend
const MemorySeedFakerSeed = 2026

// ShutdownTimeout bounds the whole graceful shutdown
const ShutdownTimeout = 15 * time.Second

// Log messages
const (
	LogMsgStarting            = "Starting StickerSwap"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgMigrationsApplied   = "Database migrations applied"
	LogMsgMemorySeeded        = "In-memory store seeded with a generated catalog"
	LogMsgIdempotencyBackend  = "Purchase idempotency store ready"
	LogMsgShuttingDownServer  = "Shutting down server..."
	LogMsgServerForcedStop    = "Server forced to shutdown"
	LogMsgNotifierDrainFailed = "Notification queue did not drain"
	LogMsgCloseFailed         = "Failed to close resource"
	LogMsgServerStopped       = "Server stopped"
)

// Readiness dependency names
const (
	ReadinessDatabase = "database"
	ReadinessRedis    = "redis"
)

// JobCatalogRefresh names the scheduled catalog reload
const JobCatalogRefresh = "catalog_refresh"
