package domain

// InventoryEntry is how many units of one collectible one user owns.
// A quantity of zero is equivalent to absence.
type InventoryEntry struct {
	UserID        string `json:"user_id"`
	CollectibleID string `json:"collectible_id"`
	Quantity      int    `json:"quantity"`
}

// EntryKey identifies a collectible-unit holding: one user, one collectible.
type EntryKey struct {
	UserID        string
	CollectibleID string
}

// Less orders keys by user then collectible. Row locks are always taken in this order.
func (k EntryKey) Less(other EntryKey) bool {
	if k.UserID != other.UserID {
		return k.UserID < other.UserID
	}
	return k.CollectibleID < other.CollectibleID
}

// Holding is an inventory entry joined with its catalog record.
type Holding struct {
	Collectible Collectible `json:"collectible"`
	Quantity    int         `json:"quantity"`
}

// RarityProgress counts distinct collectibles owned against the catalog size of one tier.
type RarityProgress struct {
	Owned int `json:"owned"`
	Total int `json:"total"`
}

// AlbumStats summarizes one user's collection against the catalog.
type AlbumStats struct {
	UserID string `json:"user_id"`
	// Unique counts distinct collectibles held.
	Unique int `json:"unique"`
	// Total sums every unit held.
	Total int `json:"total"`
	// Duplicates counts distinct collectibles held more than once.
	Duplicates      int                       `json:"duplicates"`
	CatalogSize     int                       `json:"catalog_size"`
	CompletedGroups int                       `json:"completed_groups"`
	TotalGroups     int                       `json:"total_groups"`
	ByRarity        map[Rarity]RarityProgress `json:"by_rarity"`
}

// RankingEntry is one holder's position on the leaderboard.
type RankingEntry struct {
	UserID string `json:"user_id"`
	Total  int    `json:"total"`
	Unique int    `json:"unique"`
}
