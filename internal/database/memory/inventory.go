package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

// BeginLedgerTx starts a ledger unit of work
func (s *Store) BeginLedgerTx(ctx context.Context) (repository.LedgerTx, error) {
	return s.begin(ctx)
}

// GetQuantity returns 0 for absent entries
func (s *Store) GetQuantity(ctx context.Context, userID, collectibleID string) (int, error) {
	var qty int
	err := s.read(ctx, func() error {
		qty = s.inventory[domain.EntryKey{UserID: userID, CollectibleID: collectibleID}]
		return nil
	})
	return qty, err
}

// ListEntries returns the user's entries with at least minQuantity units, by collectible id
func (s *Store) ListEntries(ctx context.Context, userID string, minQuantity int) ([]domain.InventoryEntry, error) {
	var entries []domain.InventoryEntry
	err := s.read(ctx, func() error {
		for k, qty := range s.inventory {
			if k.UserID == userID && qty >= minQuantity {
				entries = append(entries, domain.InventoryEntry{UserID: userID, CollectibleID: k.CollectibleID, Quantity: qty})
			}
		}
		return nil
	})
	slices.SortFunc(entries, func(a, b domain.InventoryEntry) int {
		if a.CollectibleID < b.CollectibleID {
			return -1
		}
		if a.CollectibleID > b.CollectibleID {
			return 1
		}
		return 0
	})
	return entries, err
}

// TotalQuantity sums one collectible over every holder
func (s *Store) TotalQuantity(ctx context.Context, collectibleID string) (int, error) {
	var total int
	err := s.read(ctx, func() error {
		for k, qty := range s.inventory {
			if k.CollectibleID == collectibleID {
				total += qty
			}
		}
		return nil
	})
	return total, err
}

// Ranking sums every holder's units. Ties are broken by user id.
func (s *Store) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	byUser := make(map[string]*domain.RankingEntry)
	err := s.read(ctx, func() error {
		for k, qty := range s.inventory {
			if qty <= 0 {
				continue
			}
			e, ok := byUser[k.UserID]
			if !ok {
				e = &domain.RankingEntry{UserID: k.UserID}
				byUser[k.UserID] = e
			}
			e.Total += qty
			e.Unique++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ranking := make([]domain.RankingEntry, 0, len(byUser))
	for _, e := range byUser {
		ranking = append(ranking, *e)
	}
	slices.SortFunc(ranking, func(a, b domain.RankingEntry) int {
		if a.Total != b.Total {
			return b.Total - a.Total
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// ---- Ledger methods on storeTx ----

// CreditEntry adds amount to the entry, creating it when absent
func (t *storeTx) CreditEntry(ctx context.Context, userID, collectibleID string, amount int) (int, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	if _, ok := t.s.collectibles[collectibleID]; !ok {
		return 0, fmt.Errorf("%w: collectible %s", domain.ErrNotFound, collectibleID)
	}
	k := domain.EntryKey{UserID: userID, CollectibleID: collectibleID}
	t.setQuantity(k, t.s.inventory[k]+amount)
	return t.s.inventory[k], nil
}

// DebitEntry subtracts amount only when enough units remain
func (t *storeTx) DebitEntry(ctx context.Context, userID, collectibleID string, amount int) (int, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	k := domain.EntryKey{UserID: userID, CollectibleID: collectibleID}
	qty, ok := t.s.inventory[k]
	if !ok || qty < amount {
		return 0, fmt.Errorf("%w: user %s holds fewer than %d of %s",
			domain.ErrInsufficientInventory, userID, amount, collectibleID)
	}
	t.setQuantity(k, qty-amount)
	return qty - amount, nil
}

// setQuantity writes a quantity and records how to restore the previous one.
// Entries are never deleted, so a debit to zero keeps the key.
func (t *storeTx) setQuantity(k domain.EntryKey, qty int) {
	prev, existed := t.s.inventory[k]
	t.record(func() {
		if existed {
			t.s.inventory[k] = prev
		} else {
			delete(t.s.inventory, k)
		}
	})
	t.s.inventory[k] = qty
}

// LockEntries is a no-op: the transaction already holds the store lock.
func (t *storeTx) LockEntries(ctx context.Context, keys []domain.EntryKey) error {
	return t.checkOpen()
}

// GetQuantity reads inside the transaction
func (t *storeTx) GetQuantity(ctx context.Context, userID, collectibleID string) (int, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	return t.s.inventory[domain.EntryKey{UserID: userID, CollectibleID: collectibleID}], nil
}

// RecordPurchase keeps the first purchase stored under a payment reference
func (t *storeTx) RecordPurchase(ctx context.Context, p domain.Purchase) (domain.Purchase, bool, error) {
	if err := t.checkOpen(); err != nil {
		return domain.Purchase{}, false, err
	}
	if existing, ok := t.s.purchases[p.PaymentRef]; ok {
		return existing, false, nil
	}
	if p.CollectibleID != nil {
		if _, ok := t.s.collectibles[*p.CollectibleID]; !ok {
			return domain.Purchase{}, false, fmt.Errorf("%w: collectible %s", domain.ErrNotFound, *p.CollectibleID)
		}
	}
	t.s.purchases[p.PaymentRef] = p
	t.record(func() { delete(t.s.purchases, p.PaymentRef) })
	return p, true, nil
}
