package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

const (
	sqlListCollectibles = `
		SELECT c.collectible_id, c.group_id, g.name, c.name, c.number, c.position, c.image_url, c.rarity
		FROM collectibles c
		JOIN collectible_groups g ON g.group_id = c.group_id
		ORDER BY c.group_id, c.number, c.collectible_id`

	sqlUpsertGroup = `
		INSERT INTO collectible_groups (group_id, name) VALUES ($1, $2)
		ON CONFLICT (group_id) DO UPDATE SET name = EXCLUDED.name`

	sqlUpsertCollectible = `
		INSERT INTO collectibles (collectible_id, group_id, name, number, position, image_url, rarity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (collectible_id) DO UPDATE SET
			group_id = EXCLUDED.group_id, name = EXCLUDED.name, number = EXCLUDED.number,
			position = EXCLUDED.position, image_url = EXCLUDED.image_url, rarity = EXCLUDED.rarity`
)

// CatalogRepository reads the collectible feed tables
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCollectibles returns the whole catalog
func (r *CatalogRepository) ListCollectibles(ctx context.Context) ([]domain.Collectible, error) {
	rows, err := r.db.Query(ctx, sqlListCollectibles)
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListCollectibles)
	}
	collectibles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Collectible, error) {
		var c domain.Collectible
		var rarity string
		err := row.Scan(&c.ID, &c.GroupID, &c.GroupName, &c.Name, &c.Number, &c.Position, &c.ImageURL, &rarity)
		c.Rarity = domain.Rarity(rarity)
		return c, err
	})
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListCollectibles)
	}
	return collectibles, nil
}

// UpsertCollectibles writes groups and collectibles in one batch
func (r *CatalogRepository) UpsertCollectibles(ctx context.Context, collectibles []domain.Collectible) error {
	tx, err := beginTx(ctx, r.db)
	if err != nil {
		return err
	}
	defer repository.SafeRollback(ctx, tx)

	batch := &pgx.Batch{}
	seen := make(map[string]bool)
	for _, c := range collectibles {
		if !seen[c.GroupID] {
			seen[c.GroupID] = true
			batch.Queue(sqlUpsertGroup, c.GroupID, c.GroupName)
		}
	}
	for _, c := range collectibles {
		batch.Queue(sqlUpsertCollectible, c.ID, c.GroupID, c.Name, c.Number, c.Position, c.ImageURL, string(c.Rarity))
	}

	if err := tx.tx.SendBatch(ctx, batch).Close(); err != nil {
		return classify(err, ErrMsgFailedToUpsertCollectibles)
	}
	return tx.Commit(ctx)
}
