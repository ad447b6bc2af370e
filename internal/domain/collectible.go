package domain

import (
	"fmt"
	"strings"
)

// Rarity is the tier that drives draw probability.
type Rarity string

const (
	RaritySilver    Rarity = "SILVER"
	RarityGold      Rarity = "GOLD"
	RarityLegendary Rarity = "LEGENDARY"
)

// RaritiesDescending lists tiers from rarest to most common. Pack draws fall back
// along this order when a tier has no collectibles.
var RaritiesDescending = []Rarity{RarityLegendary, RarityGold, RaritySilver}

// Valid reports whether r is a known tier.
func (r Rarity) Valid() bool {
	switch r {
	case RaritySilver, RarityGold, RarityLegendary:
		return true
	}
	return false
}

// ParseRarity parses a tier name case-insensitively.
func ParseRarity(s string) (Rarity, error) {
	r := Rarity(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown rarity %q", ErrInvalidInput, s)
	}
	return r, nil
}

// Collectible is one card of the album. It is owned by the catalog and is
// never created or deleted by inventory or trade operations.
type Collectible struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Name      string `json:"name"`
	Number    int    `json:"number"`
	Position  string `json:"position,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	Rarity    Rarity `json:"rarity"`
}
