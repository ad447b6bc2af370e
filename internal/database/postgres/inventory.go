package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

const (
	sqlCreditEntry = `
		INSERT INTO inventory_entries (user_id, collectible_id, quantity, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, collectible_id)
		DO UPDATE SET quantity = inventory_entries.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING quantity`

	sqlDebitEntry = `
		UPDATE inventory_entries
		SET quantity = quantity - $3, updated_at = NOW()
		WHERE user_id = $1 AND collectible_id = $2 AND quantity >= $3
		RETURNING quantity`

	sqlLockEntry = `
		SELECT quantity FROM inventory_entries
		WHERE user_id = $1 AND collectible_id = $2
		FOR UPDATE`

	sqlGetQuantity = `
		SELECT quantity FROM inventory_entries
		WHERE user_id = $1 AND collectible_id = $2`

	sqlListEntries = `
		SELECT user_id, collectible_id, quantity FROM inventory_entries
		WHERE user_id = $1 AND quantity >= $2
		ORDER BY collectible_id`

	sqlTotalQuantity = `
		SELECT COALESCE(SUM(quantity), 0) FROM inventory_entries
		WHERE collectible_id = $1`

	sqlRanking = `
		SELECT user_id, SUM(quantity) AS total, COUNT(*) AS unique_count
		FROM inventory_entries
		WHERE quantity > 0
		GROUP BY user_id
		ORDER BY total DESC, user_id
		LIMIT $1`

	sqlInsertPurchase = `
		INSERT INTO purchases (payment_ref, user_id, kind, quantity, collectible_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (payment_ref) DO NOTHING
		RETURNING payment_ref`

	sqlGetPurchase = `
		SELECT payment_ref, user_id, kind, quantity, collectible_id, created_at
		FROM purchases WHERE payment_ref = $1`
)

// InventoryRepository implements repository.Inventory for PostgreSQL
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// BeginLedgerTx starts a ledger unit of work
func (r *InventoryRepository) BeginLedgerTx(ctx context.Context) (repository.LedgerTx, error) {
	return beginTx(ctx, r.db)
}

// GetQuantity returns 0 for absent entries
func (r *InventoryRepository) GetQuantity(ctx context.Context, userID, collectibleID string) (int, error) {
	return getQuantity(ctx, r.db, userID, collectibleID)
}

// ListEntries returns the user's entries with at least minQuantity units
func (r *InventoryRepository) ListEntries(ctx context.Context, userID string, minQuantity int) ([]domain.InventoryEntry, error) {
	rows, err := r.db.Query(ctx, sqlListEntries, userID, minQuantity)
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListEntries)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.InventoryEntry, error) {
		var e domain.InventoryEntry
		err := row.Scan(&e.UserID, &e.CollectibleID, &e.Quantity)
		return e, err
	})
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListEntries)
	}
	return entries, nil
}

// TotalQuantity sums one collectible over every holder
func (r *InventoryRepository) TotalQuantity(ctx context.Context, collectibleID string) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, sqlTotalQuantity, collectibleID).Scan(&total); err != nil {
		return 0, classify(err, ErrMsgFailedToSumQuantities)
	}
	return total, nil
}

// Ranking sums every holder's units. A limit of zero or less returns every holder.
func (r *InventoryRepository) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	var bound *int
	if limit > 0 {
		bound = &limit
	}
	rows, err := r.db.Query(ctx, sqlRanking, bound)
	if err != nil {
		return nil, classify(err, ErrMsgFailedToRankHolders)
	}
	ranking, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RankingEntry, error) {
		var e domain.RankingEntry
		err := row.Scan(&e.UserID, &e.Total, &e.Unique)
		return e, err
	})
	if err != nil {
		return nil, classify(err, ErrMsgFailedToRankHolders)
	}
	return ranking, nil
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getQuantity(ctx context.Context, q querier, userID, collectibleID string) (int, error) {
	var qty int
	err := q.QueryRow(ctx, sqlGetQuantity, userID, collectibleID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, classify(err, ErrMsgFailedToGetQuantity)
	}
	return qty, nil
}

// ---- Ledger methods on storeTx ----

// CreditEntry is a single upsert-with-increment so concurrent credits never lose updates.
func (t *storeTx) CreditEntry(ctx context.Context, userID, collectibleID string, amount int) (int, error) {
	var qty int
	if err := t.tx.QueryRow(ctx, sqlCreditEntry, userID, collectibleID, amount).Scan(&qty); err != nil {
		return 0, classify(err, ErrMsgFailedToCreditEntry)
	}
	return qty, nil
}

// DebitEntry decrements only when enough units remain.
func (t *storeTx) DebitEntry(ctx context.Context, userID, collectibleID string, amount int) (int, error) {
	var qty int
	err := t.tx.QueryRow(ctx, sqlDebitEntry, userID, collectibleID, amount).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: user %s holds fewer than %d of %s",
				domain.ErrInsufficientInventory, userID, amount, collectibleID)
		}
		return 0, classify(err, ErrMsgFailedToDebitEntry)
	}
	return qty, nil
}

// LockEntries locks existing rows in EntryKey order. Absent rows are skipped;
// the primary key serializes their concurrent creation.
func (t *storeTx) LockEntries(ctx context.Context, keys []domain.EntryKey) error {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, func(a, b domain.EntryKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	sorted = slices.Compact(sorted)

	for _, k := range sorted {
		var qty int
		err := t.tx.QueryRow(ctx, sqlLockEntry, k.UserID, k.CollectibleID).Scan(&qty)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return classify(err, ErrMsgFailedToLockEntry)
		}
	}
	return nil
}

// GetQuantity reads inside the transaction
func (t *storeTx) GetQuantity(ctx context.Context, userID, collectibleID string) (int, error) {
	return getQuantity(ctx, t.tx, userID, collectibleID)
}

// RecordPurchase inserts the purchase unless its payment reference exists. A
// concurrent insert of the same reference waits on the primary key until the
// first transaction ends, then reads the committed row.
func (t *storeTx) RecordPurchase(ctx context.Context, p domain.Purchase) (domain.Purchase, bool, error) {
	var ref string
	err := t.tx.QueryRow(ctx, sqlInsertPurchase,
		p.PaymentRef, p.UserID, string(p.Kind), p.Quantity, p.CollectibleID, p.CreatedAt).Scan(&ref)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Purchase{}, false, classify(err, ErrMsgFailedToRecordPurchase)
	}

	var stored domain.Purchase
	var kind string
	err = t.tx.QueryRow(ctx, sqlGetPurchase, p.PaymentRef).Scan(
		&stored.PaymentRef, &stored.UserID, &kind, &stored.Quantity, &stored.CollectibleID, &stored.CreatedAt)
	if err != nil {
		return domain.Purchase{}, false, classify(err, ErrMsgFailedToGetPurchase)
	}
	stored.Kind = domain.PurchaseKind(kind)
	return stored, false, nil
}
