package repository

import (
	"context"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// Inventory defines the interface for ledger persistence
type Inventory interface {
	GetQuantity(ctx context.Context, userID, collectibleID string) (int, error)
	// ListEntries returns the user's entries with quantity >= minQuantity, ordered by collectible id.
	ListEntries(ctx context.Context, userID string, minQuantity int) ([]domain.InventoryEntry, error)
	// TotalQuantity sums one collectible's quantity over every holder.
	TotalQuantity(ctx context.Context, collectibleID string) (int, error)
	// Ranking orders holders by total units, then by user id, and returns at most limit rows.
	Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error)
	BeginLedgerTx(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is the set of quantity mutations available inside a unit of work.
// Every component that changes ownership embeds it in its own transaction type.
type LedgerTx interface {
	Tx
	// CreditEntry adds amount to the entry, creating it when absent, and returns the new quantity.
	CreditEntry(ctx context.Context, userID, collectibleID string, amount int) (int, error)
	// DebitEntry subtracts amount only when the entry holds at least amount. Otherwise it
	// returns domain.ErrInsufficientInventory and changes nothing.
	DebitEntry(ctx context.Context, userID, collectibleID string, amount int) (int, error)
	// LockEntries takes row locks on the given entries in EntryKey order.
	LockEntries(ctx context.Context, keys []domain.EntryKey) error
	GetQuantity(ctx context.Context, userID, collectibleID string) (int, error)
	// RecordPurchase stores p unless its payment reference is already recorded. It returns
	// the stored purchase and whether this call created it.
	RecordPurchase(ctx context.Context, p domain.Purchase) (domain.Purchase, bool, error)
}
