package repository

import (
	"context"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// Catalog is the read side of the collectible feed plus the bulk upsert used by seeding.
type Catalog interface {
	ListCollectibles(ctx context.Context) ([]domain.Collectible, error)
	UpsertCollectibles(ctx context.Context, collectibles []domain.Collectible) error
}
