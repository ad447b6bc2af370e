package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/osse101/StickerSwap_Go/internal/catalog"
	"github.com/osse101/StickerSwap_Go/internal/config"
	"github.com/osse101/StickerSwap_Go/internal/database"
	"github.com/osse101/StickerSwap_Go/internal/database/memory"
	"github.com/osse101/StickerSwap_Go/internal/database/postgres"
	"github.com/osse101/StickerSwap_Go/internal/handler"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

// Repositories holds the storage implementations used by the services.
type Repositories struct {
	Catalog      repository.Catalog
	Inventory    repository.Inventory
	Pack         repository.Pack
	Trade        repository.Trade
	Notification repository.Notification

	// Health is pinged by /readyz
	Health handler.Pinger
	close  func()
}

// Close releases the storage connections
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// InitializeRepositories opens the configured storage backend. The postgres
// backend is migrated before use; the memory backend is seeded with a
// generated album so the service is usable straight away.
func InitializeRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	if cfg.StorageBackend == config.StorageBackendMemory {
		store := memory.NewStore()
		album := catalog.Generate(gofakeit.New(MemorySeedFakerSeed), catalog.DefaultGroups, catalog.DefaultPlayersPerGroup)
		if err := store.UpsertCollectibles(ctx, album); err != nil {
			return nil, fmt.Errorf("seed memory catalog: %w", err)
		}
		slog.Info(LogMsgMemorySeeded, "collectibles", len(album))
		return &Repositories{
			Catalog:      store,
			Inventory:    store,
			Pack:         store,
			Trade:        store,
			Notification: store,
			Health:       store,
		}, nil
	}

	pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxIdle, cfg.DBMaxLifetime)
	if err != nil {
		return nil, err
	}
	applied, err := database.Migrate(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info(LogMsgMigrationsApplied, "applied", applied)

	return &Repositories{
		Catalog:      postgres.NewCatalogRepository(pool),
		Inventory:    postgres.NewInventoryRepository(pool),
		Pack:         postgres.NewPackRepository(pool),
		Trade:        postgres.NewTradeRepository(pool),
		Notification: postgres.NewNotificationRepository(pool),
		Health:       pool,
		close:        pool.Close,
	}, nil
}
