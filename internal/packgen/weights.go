package packgen

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// Weights is a validated rarity weight table. Weights are exact decimals so a
// table like 0.05/0.20/0.75 sums to exactly one.
type Weights struct {
	exact map[domain.Rarity]decimal.Decimal
	// cumulative thresholds in domain.RaritiesDescending order
	cumul []float64
}

// NewWeights validates a weight table. Tiers left out weigh zero.
func NewWeights(table map[domain.Rarity]decimal.Decimal) (Weights, error) {
	sum := decimal.Zero
	exact := make(map[domain.Rarity]decimal.Decimal, len(domain.RaritiesDescending))
	for tier, w := range table {
		if !tier.Valid() {
			return Weights{}, fmt.Errorf("%w: unknown rarity %q", domain.ErrInvalidConfiguration, tier)
		}
		if w.IsNegative() {
			return Weights{}, fmt.Errorf("%w: %s: %s=%s", domain.ErrInvalidConfiguration, ErrContextWeightNegative, tier, w)
		}
		exact[tier] = w
		sum = sum.Add(w)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		return Weights{}, fmt.Errorf("%w: %s, got %s", domain.ErrInvalidConfiguration, ErrContextWeightsSum, sum)
	}

	cumul := make([]float64, len(domain.RaritiesDescending))
	running := decimal.Zero
	for i, tier := range domain.RaritiesDescending {
		running = running.Add(exact[tier])
		cumul[i] = running.InexactFloat64()
	}
	return Weights{exact: exact, cumul: cumul}, nil
}

// ParseWeights reads a table written as "LEGENDARY:0.05,GOLD:0.20,SILVER:0.75".
func ParseWeights(s string) (Weights, error) {
	table := make(map[domain.Rarity]decimal.Decimal)
	for _, pair := range strings.Split(s, weightPairSeparator) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, weightValueSeparator)
		if !ok {
			return Weights{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidConfiguration, ErrContextWeightSyntax, pair)
		}
		tier, err := domain.ParseRarity(name)
		if err != nil {
			return Weights{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
		}
		if _, dup := table[tier]; dup {
			return Weights{}, fmt.Errorf("%w: %s: %s", domain.ErrInvalidConfiguration, ErrContextDuplicateTier, tier)
		}
		w, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return Weights{}, fmt.Errorf("%w: %s %q: %v", domain.ErrInvalidConfiguration, ErrContextWeightSyntax, pair, err)
		}
		table[tier] = w
	}
	return NewWeights(table)
}

// DefaultWeights is Legendary 5%, Gold 20%, Silver 75%.
func DefaultWeights() Weights {
	w, err := NewWeights(map[domain.Rarity]decimal.Decimal{
		domain.RarityLegendary: decimal.RequireFromString("0.05"),
		domain.RarityGold:      decimal.RequireFromString("0.20"),
		domain.RaritySilver:    decimal.RequireFromString("0.75"),
	})
	if err != nil {
		panic(err)
	}
	return w
}

// Of returns the configured weight of a tier.
func (w Weights) Of(tier domain.Rarity) decimal.Decimal {
	return w.exact[tier]
}

// IsZero reports whether w was never validated.
func (w Weights) IsZero() bool {
	return len(w.cumul) == 0
}

func (w Weights) String() string {
	parts := make([]string, 0, len(domain.RaritiesDescending))
	for _, tier := range domain.RaritiesDescending {
		parts = append(parts, string(tier)+weightValueSeparator+w.exact[tier].String())
	}
	return strings.Join(parts, weightPairSeparator)
}

// sampleTier returns the index into domain.RaritiesDescending chosen by a roll in [0, 1).
func (w Weights) sampleTier(roll float64) int {
	lo, hi := 0, len(w.cumul)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if w.cumul[mid] <= roll {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
