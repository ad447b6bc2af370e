package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// ListCollectibles returns the catalog ordered like the postgres backend
func (s *Store) ListCollectibles(ctx context.Context) ([]domain.Collectible, error) {
	var out []domain.Collectible
	err := s.read(ctx, func() error {
		out = make([]domain.Collectible, 0, len(s.collectibles))
		for _, c := range s.collectibles {
			out = append(out, c)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Collectible) int {
		return cmp.Or(
			cmp.Compare(a.GroupID, b.GroupID),
			cmp.Compare(a.Number, b.Number),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out, err
}

// UpsertCollectibles inserts or replaces catalog records
func (s *Store) UpsertCollectibles(ctx context.Context, collectibles []domain.Collectible) error {
	for _, c := range collectibles {
		if !c.Rarity.Valid() {
			return fmt.Errorf("%w: collectible %s has rarity %q", domain.ErrInvalidInput, c.ID, c.Rarity)
		}
	}
	return s.read(ctx, func() error {
		for _, c := range collectibles {
			s.collectibles[c.ID] = c
		}
		return nil
	})
}
