// Package packgen draws pack contents: a rarity tier by weight, then a
// collectible uniformly inside that tier. Drawing never touches the ledger.
package packgen

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/osse101/StickerSwap_Go/internal/catalog"
	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// Service defines the interface for pack content generation
type Service interface {
	Draw(ctx context.Context, weights Weights, count int) ([]domain.Collectible, error)
}

type service struct {
	catalog catalog.Service
	seed    func() uint64 // For seeding each draw
}

// NewService creates a new generator reading its pool from the catalog
func NewService(catalogSvc catalog.Service) Service {
	return &service{
		catalog: catalogSvc,
		seed:    rand.Uint64,
	}
}

func (s *service) Draw(ctx context.Context, weights Weights, count int) ([]domain.Collectible, error) {
	pool, err := s.catalog.ListCollectibles(ctx, nil)
	if err != nil {
		return nil, err
	}
	seq, err := Sequence(pool, weights, count, s.seed())
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}
