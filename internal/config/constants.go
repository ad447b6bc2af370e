package config

// Storage backends
const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

// Default grant sizes
const (
	DefaultInitialPackCount = 5
	DefaultDailyPackCount   = 3
	DefaultCardsPerPack     = 4
	DefaultRarityWeights    = "LEGENDARY:0.05,GOLD:0.20,SILVER:0.75"
)

// Environment names for which the API key placeholder is rejected
const (
	EnvironmentProduction = "prod"
	PlaceholderAPIKey     = "generate_with_openssl_rand_hex_32"
)
