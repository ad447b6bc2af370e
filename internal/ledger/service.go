package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/StickerSwap_Go/internal/catalog"
	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/logger"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

// Service defines the interface for inventory ledger operations
type Service interface {
	Credit(ctx context.Context, userID, collectibleID string, amount int) (int, error)
	Debit(ctx context.Context, userID, collectibleID string, amount int) (int, error)
	Transfer(ctx context.Context, fromUserID, toUserID, collectibleID string, amount int) error
	QuantityOf(ctx context.Context, userID, collectibleID string) (int, error)
	// Holdings lists every collectible the user owns at least one of.
	Holdings(ctx context.Context, userID string) ([]domain.Holding, error)
	// Duplicates lists the holdings the user may offer in trades.
	Duplicates(ctx context.Context, userID string) ([]domain.Holding, error)
	// CreditPurchase credits one bought unit and records the payment reference in
	// the same unit of work. A reference already processed for the same order
	// credits nothing and reports duplicate.
	CreditPurchase(ctx context.Context, paymentRef, userID, collectibleID string) (qty int, duplicate bool, err error)
	// Stats summarizes the user's album against the catalog.
	Stats(ctx context.Context, userID string) (*domain.AlbumStats, error)
	// Ranking orders holders by total units held.
	Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error)
}

type service struct {
	repo       repository.Inventory
	catalog    catalog.Service
	maxRetries int
	now        func() time.Time
}

// NewService creates a new ledger service
func NewService(repo repository.Inventory, catalogSvc catalog.Service, maxRetries int) Service {
	return &service{
		repo:       repo,
		catalog:    catalogSvc,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

func (s *service) Credit(ctx context.Context, userID, collectibleID string, amount int) (int, error) {
	var qty int
	err := repository.RunInTx(ctx, OpCredit, s.maxRetries, s.repo.BeginLedgerTx, func(tx repository.LedgerTx) error {
		var err error
		qty, err = CreditTx(ctx, tx, userID, collectibleID, amount)
		return err
	})
	return qty, err
}

func (s *service) Debit(ctx context.Context, userID, collectibleID string, amount int) (int, error) {
	var qty int
	err := repository.RunInTx(ctx, OpDebit, s.maxRetries, s.repo.BeginLedgerTx, func(tx repository.LedgerTx) error {
		var err error
		qty, err = DebitTx(ctx, tx, userID, collectibleID, amount)
		return err
	})
	return qty, err
}

func (s *service) Transfer(ctx context.Context, fromUserID, toUserID, collectibleID string, amount int) error {
	err := repository.RunInTx(ctx, OpTransfer, s.maxRetries, s.repo.BeginLedgerTx, func(tx repository.LedgerTx) error {
		if err := tx.LockEntries(ctx, []domain.EntryKey{
			{UserID: fromUserID, CollectibleID: collectibleID},
			{UserID: toUserID, CollectibleID: collectibleID},
		}); err != nil {
			return err
		}
		return TransferTx(ctx, tx, fromUserID, toUserID, collectibleID, amount)
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Transfer committed",
		"from", fromUserID, "to", toUserID, "collectible_id", collectibleID, "amount", amount)
	return nil
}

func (s *service) QuantityOf(ctx context.Context, userID, collectibleID string) (int, error) {
	return s.repo.GetQuantity(ctx, userID, collectibleID)
}

func (s *service) Holdings(ctx context.Context, userID string) ([]domain.Holding, error) {
	return s.holdings(ctx, userID, 1)
}

func (s *service) Duplicates(ctx context.Context, userID string) ([]domain.Holding, error) {
	return s.holdings(ctx, userID, MinTradeableQuantity)
}

func (s *service) CreditPurchase(ctx context.Context, paymentRef, userID, collectibleID string) (int, bool, error) {
	if err := validate(userID, collectibleID, 1); err != nil {
		return 0, false, err
	}
	p := domain.Purchase{
		PaymentRef:    paymentRef,
		UserID:        userID,
		Kind:          domain.PurchaseCard,
		Quantity:      1,
		CollectibleID: &collectibleID,
		CreatedAt:     s.now().UTC(),
	}

	var qty int
	var duplicate bool
	err := repository.RunInTx(ctx, OpCreditPurchase, s.maxRetries, s.repo.BeginLedgerTx, func(tx repository.LedgerTx) error {
		var err error
		duplicate, err = RecordPurchaseTx(ctx, tx, p)
		if err != nil {
			return err
		}
		if duplicate {
			qty, err = tx.GetQuantity(ctx, userID, collectibleID)
			return err
		}
		qty, err = CreditTx(ctx, tx, userID, collectibleID, 1)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	if !duplicate {
		logger.FromContext(ctx).Info("Purchased collectible credited",
			"payment_ref", paymentRef, "user_id", userID, "collectible_id", collectibleID, "quantity", qty)
	}
	return qty, duplicate, nil
}

func (s *service) Stats(ctx context.Context, userID string) (*domain.AlbumStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	entries, err := s.repo.ListEntries(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	all, err := s.catalog.ListCollectibles(ctx, nil)
	if err != nil {
		return nil, err
	}

	stats := &domain.AlbumStats{
		UserID:      userID,
		CatalogSize: len(all),
		ByRarity:    make(map[domain.Rarity]domain.RarityProgress, len(domain.RaritiesDescending)),
	}
	for _, r := range domain.RaritiesDescending {
		stats.ByRarity[r] = domain.RarityProgress{}
	}

	held := make(map[string]int, len(entries))
	for _, e := range entries {
		held[e.CollectibleID] = e.Quantity
		stats.Unique++
		stats.Total += e.Quantity
		if e.Quantity >= MinTradeableQuantity {
			stats.Duplicates++
		}
	}

	// group id -> every member held so far
	complete := make(map[string]bool)
	for _, c := range all {
		progress := stats.ByRarity[c.Rarity]
		progress.Total++
		whole, seen := complete[c.GroupID]
		if !seen {
			whole = true
		}
		if held[c.ID] > 0 {
			progress.Owned++
		} else {
			whole = false
		}
		complete[c.GroupID] = whole
		stats.ByRarity[c.Rarity] = progress
	}
	stats.TotalGroups = len(complete)
	for _, whole := range complete {
		if whole {
			stats.CompletedGroups++
		}
	}
	return stats, nil
}

func (s *service) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	if limit < 0 || limit > MaxRankingLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d, got %d", domain.ErrInvalidInput, MaxRankingLimit, limit)
	}
	if limit == 0 {
		limit = DefaultRankingLimit
	}
	ranking, err := s.repo.Ranking(ctx, limit)
	if err != nil {
		return nil, err
	}
	if ranking == nil {
		ranking = []domain.RankingEntry{}
	}
	return ranking, nil
}

func (s *service) holdings(ctx context.Context, userID string, minQuantity int) ([]domain.Holding, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	entries, err := s.repo.ListEntries(ctx, userID, minQuantity)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []domain.Holding{}, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.CollectibleID
	}
	records, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Holding, 0, len(entries))
	for _, e := range entries {
		c, ok := records[e.CollectibleID]
		if !ok {
			continue
		}
		out = append(out, domain.Holding{Collectible: c, Quantity: e.Quantity})
	}
	return out, nil
}

// resolve looks ids up in the catalog. A miss reloads the snapshot once; ids
// still unknown after the reload are logged and left out of the result.
func (s *service) resolve(ctx context.Context, ids []string) (map[string]domain.Collectible, error) {
	records, err := s.catalog.GetCollectibles(ctx, ids)
	if !errors.Is(err, domain.ErrNotFound) {
		return records, err
	}

	s.catalog.Invalidate()
	records, err = s.catalog.GetCollectibles(ctx, ids)
	if !errors.Is(err, domain.ErrNotFound) {
		return records, err
	}

	all, err := s.catalog.ListCollectibles(ctx, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Collectible, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	records = make(map[string]domain.Collectible, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			logger.FromContext(ctx).Warn(LogMsgUnknownCollectible, "collectible_id", id)
			continue
		}
		records[id] = c
	}
	return records, nil
}
