package packgen

import (
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// tieredPool is the catalog split by rarity, indexed like domain.RaritiesDescending.
type tieredPool [][]domain.Collectible

func splitByTier(pool []domain.Collectible) (tieredPool, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidConfiguration, ErrContextEmptyCatalog)
	}
	tiers := make(tieredPool, len(domain.RaritiesDescending))
	usable := 0
	for _, c := range pool {
		for i, tier := range domain.RaritiesDescending {
			if c.Rarity == tier {
				tiers[i] = append(tiers[i], c)
				usable++
				break
			}
		}
	}
	if usable == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidConfiguration, ErrContextEmptyCatalog)
	}
	return tiers, nil
}

// resolve returns the tier to draw from when sampled is empty: the next
// non-empty tier in descending rarity, else the nearest non-empty rarer one.
func (t tieredPool) resolve(sampled int) int {
	for i := sampled; i < len(t); i++ {
		if len(t[i]) > 0 {
			return i
		}
	}
	for i := sampled - 1; i >= 0; i-- {
		if len(t[i]) > 0 {
			return i
		}
	}
	return -1
}

// Sequence returns a lazy sequence of exactly count draws from pool. Each
// iteration starts from seed, so ranging over it twice yields the same draws.
// It fails with domain.ErrInvalidConfiguration when pool has nothing to draw.
func Sequence(pool []domain.Collectible, weights Weights, count int, seed uint64) (iter.Seq[domain.Collectible], error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrContextNegativeCount)
	}
	if weights.IsZero() {
		return nil, fmt.Errorf("%w: weights not initialised", domain.ErrInvalidConfiguration)
	}
	tiers, err := splitByTier(pool)
	if err != nil {
		return nil, err
	}

	return func(yield func(domain.Collectible) bool) {
		rnd := rand.New(rand.NewPCG(seed, seed^seedStream))
		for i := 0; i < count; i++ {
			tier := tiers.resolve(weights.sampleTier(rnd.Float64()))
			members := tiers[tier]
			if !yield(members[rnd.IntN(len(members))]) {
				return
			}
		}
	}, nil
}
