package catalog

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// Generate builds a fake album of groups x perGroup collectibles. The same
// faker seed always yields the same album. Tiers are spread so that every
// tier is present whenever the album has at least generatedTierSpan players.
func Generate(f *gofakeit.Faker, groups, perGroup int) []domain.Collectible {
	out := make([]domain.Collectible, 0, groups*perGroup)
	seq := 0
	for g := 1; g <= groups; g++ {
		groupID := fmt.Sprintf("team-%02d", g)
		groupName := f.City() + " FC"
		for n := 1; n <= perGroup; n++ {
			out = append(out, domain.Collectible{
				ID:        fmt.Sprintf("%s-%02d", groupID, n),
				GroupID:   groupID,
				GroupName: groupName,
				Name:      f.Name(),
				Number:    n,
				Position:  positions[f.IntRange(0, len(positions)-1)],
				ImageURL:  f.URL(),
				Rarity:    generatedRarity(seq),
			})
			seq++
		}
	}
	return out
}

func generatedRarity(seq int) domain.Rarity {
	slot := seq % generatedTierSpan
	switch {
	case slot == generatedLegendarySlot:
		return domain.RarityLegendary
	case slot <= generatedGoldSlots:
		return domain.RarityGold
	default:
		return domain.RaritySilver
	}
}
