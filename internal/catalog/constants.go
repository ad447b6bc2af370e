package catalog

import "time"

// Cache settings
const (
	// cacheKeyAll keys the single cached snapshot of the whole catalog
	cacheKeyAll = "all"

	// CacheSchemaVersion is bumped when the cached data structure changes
	CacheSchemaVersion = "1.0"

	DefaultCacheTTL = 5 * time.Minute
)

const LogMsgCatalogRefreshed = "Catalog snapshot refreshed"

// Generator defaults
const (
	DefaultGroups          = 8
	DefaultPlayersPerGroup = 12

	// Out of every 20 generated players, one is LEGENDARY and four are GOLD.
	generatedTierSpan      = 20
	generatedLegendarySlot = 0
	generatedGoldSlots     = 4
)

var positions = []string{"Goalkeeper", "Defender", "Midfielder", "Forward"}
