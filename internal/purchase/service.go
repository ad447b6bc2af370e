// Package purchase turns payment confirmations into purchased goods exactly
// once per payment reference. The reference is recorded in the same unit of
// work that delivers the goods; the idempotency store only answers
// redeliveries early.
package purchase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/logger"
	"github.com/osse101/StickerSwap_Go/internal/metrics"
)

// Granter creates purchased packs. pack.Service satisfies it.
type Granter interface {
	GrantPurchasedPacks(ctx context.Context, paymentRef, userID string, quantity int) (int, bool, error)
}

// CardCrediter credits one bought collectible. ledger.Service satisfies it.
type CardCrediter interface {
	CreditPurchase(ctx context.Context, paymentRef, userID, collectibleID string) (int, bool, error)
}

// CollectibleLookup resolves collectible ids. catalog.Service satisfies it.
type CollectibleLookup interface {
	GetCollectibles(ctx context.Context, ids []string) (map[string]domain.Collectible, error)
}

// Receipt describes the outcome of one confirmation
type Receipt struct {
	PaymentRef string              `json:"payment_ref"`
	UserID     string              `json:"user_id"`
	Kind       domain.PurchaseKind `json:"kind"`
	Granted    int                 `json:"granted"`
	// Collectible is the chosen card of a single-card purchase.
	Collectible *domain.Collectible `json:"collectible,omitempty"`
	// Duplicate is set when the reference had already been processed and nothing was granted.
	Duplicate bool `json:"duplicate"`
}

// Service defines the interface for purchase confirmation
type Service interface {
	// Confirm grants quantity purchased packs.
	Confirm(ctx context.Context, paymentRef, userID string, quantity int) (*Receipt, error)
	// ConfirmCard credits one unit of the chosen collectible. A non-nil tier
	// must match the collectible's rarity.
	ConfirmCard(ctx context.Context, paymentRef, userID, collectibleID string, tier *domain.Rarity) (*Receipt, error)
}

type service struct {
	store   IdempotencyStore
	granter Granter
	cards   CardCrediter
	catalog CollectibleLookup
}

// NewService creates a new purchase service
func NewService(store IdempotencyStore, granter Granter, cards CardCrediter, catalog CollectibleLookup) Service {
	return &service{store: store, granter: granter, cards: cards, catalog: catalog}
}

func (s *service) Confirm(ctx context.Context, paymentRef, userID string, quantity int) (*Receipt, error) {
	if paymentRef == "" || userID == "" {
		return nil, fmt.Errorf("%w: payment reference and user id are required", domain.ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidInput, quantity)
	}

	receipt := &Receipt{PaymentRef: paymentRef, UserID: userID, Kind: domain.PurchasePacks}
	order := orderKey(domain.PurchasePacks, userID, strconv.Itoa(quantity))
	if s.seen(ctx, paymentRef, order) {
		return s.duplicate(ctx, receipt), nil
	}

	n, dup, err := s.granter.GrantPurchasedPacks(ctx, paymentRef, userID, quantity)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, paymentRef, order)
	if dup {
		return s.duplicate(ctx, receipt), nil
	}

	metrics.PurchasesConfirmed.Inc()
	logger.FromContext(ctx).Info(LogMsgPurchaseConfirmed, "payment_ref", paymentRef, "user_id", userID, "packs", n)
	receipt.Granted = n
	return receipt, nil
}

func (s *service) ConfirmCard(ctx context.Context, paymentRef, userID, collectibleID string, tier *domain.Rarity) (*Receipt, error) {
	if paymentRef == "" || userID == "" || collectibleID == "" {
		return nil, fmt.Errorf("%w: payment reference, user id and collectible id are required", domain.ErrInvalidInput)
	}
	if tier != nil && !tier.Valid() {
		return nil, fmt.Errorf("%w: unknown rarity %q", domain.ErrInvalidInput, *tier)
	}
	records, err := s.catalog.GetCollectibles(ctx, []string{collectibleID})
	if err != nil {
		return nil, err
	}
	c := records[collectibleID]
	if tier != nil && c.Rarity != *tier {
		return nil, fmt.Errorf("%w: collectible %s is %s, not %s", domain.ErrInvalidInput, collectibleID, c.Rarity, *tier)
	}

	receipt := &Receipt{PaymentRef: paymentRef, UserID: userID, Kind: domain.PurchaseCard, Collectible: &c}
	order := orderKey(domain.PurchaseCard, userID, collectibleID)
	if s.seen(ctx, paymentRef, order) {
		return s.duplicate(ctx, receipt), nil
	}

	_, dup, err := s.cards.CreditPurchase(ctx, paymentRef, userID, collectibleID)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, paymentRef, order)
	if dup {
		return s.duplicate(ctx, receipt), nil
	}

	metrics.PurchasesConfirmed.Inc()
	logger.FromContext(ctx).Info(LogMsgCardPurchaseConfirmed, "payment_ref", paymentRef, "user_id", userID, "collectible_id", collectibleID)
	receipt.Granted = 1
	return receipt, nil
}

// orderKey identifies what a payment bought, so a reused reference for a
// different order is not answered from the store.
func orderKey(kind domain.PurchaseKind, userID, item string) string {
	return strings.Join([]string{string(kind), userID, item}, orderKeySeparator)
}

// seen reports whether the store remembers ref for this exact order. Store
// failures fall through to the database check.
func (s *service) seen(ctx context.Context, ref, order string) bool {
	stored, found, err := s.store.Lookup(ctx, ref)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgStoreUnavailable, "payment_ref", ref, "error", err)
		return false
	}
	return found && stored == order
}

func (s *service) remember(ctx context.Context, ref, order string) {
	if err := s.store.Remember(context.WithoutCancel(ctx), ref, order); err != nil {
		logger.FromContext(ctx).Warn(LogMsgStoreUnavailable, "payment_ref", ref, "error", err)
	}
}

func (s *service) duplicate(ctx context.Context, receipt *Receipt) *Receipt {
	metrics.PurchasesDuplicate.Inc()
	logger.FromContext(ctx).Info(LogMsgPurchaseDuplicate, "payment_ref", receipt.PaymentRef, "user_id", receipt.UserID)
	receipt.Duplicate = true
	return receipt
}
