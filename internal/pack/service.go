// Package pack manages pack entitlements: granting them once per eligibility
// window and opening each exactly once.
package pack

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/issuance"
	"github.com/osse101/StickerSwap_Go/internal/ledger"
	"github.com/osse101/StickerSwap_Go/internal/logger"
	"github.com/osse101/StickerSwap_Go/internal/metrics"
	"github.com/osse101/StickerSwap_Go/internal/notify"
	"github.com/osse101/StickerSwap_Go/internal/packgen"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

// Service defines the interface for pack operations
type Service interface {
	// GrantInitialPacks creates the signup packs once per user. It returns how
	// many packs this call created.
	GrantInitialPacks(ctx context.Context, userID string) (int, error)
	// GrantDailyPacks creates the daily packs once per calendar day.
	GrantDailyPacks(ctx context.Context, userID string) (int, error)
	// GrantPurchasedPacks creates quantity packs with no window check and records
	// paymentRef in the same unit of work. A reference already processed for the
	// same order creates nothing and reports duplicate.
	GrantPurchasedPacks(ctx context.Context, paymentRef, userID string, quantity int) (granted int, duplicate bool, err error)
	// Open draws the pack's contents and credits them to its owner.
	Open(ctx context.Context, packID, userID string) ([]domain.Collectible, error)
	GetPack(ctx context.Context, packID, userID string) (*domain.Pack, error)
	ListPacks(ctx context.Context, userID string, opened *bool) ([]domain.Pack, error)
}

// Config holds the grant sizes and draw settings
type Config struct {
	InitialPackCount int
	DailyPackCount   int
	CardsPerPack     int
	Weights          packgen.Weights
	// Location decides where a calendar day starts for daily grants
	Location   *time.Location
	MaxRetries int
}

type service struct {
	repo     repository.Pack
	gen      packgen.Service
	dedup    *issuance.Deduplicator
	notifier notify.Notifier
	cfg      Config
	now      func() time.Time
}

// NewService creates a new pack service
func NewService(repo repository.Pack, gen packgen.Service, dedup *issuance.Deduplicator, notifier notify.Notifier, cfg Config) Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &service{
		repo:     repo,
		gen:      gen,
		dedup:    dedup,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *service) GrantInitialPacks(ctx context.Context, userID string) (int, error) {
	return s.grantWindowed(ctx, userID, domain.SourceInitialGrant, s.cfg.InitialPackCount)
}

func (s *service) GrantDailyPacks(ctx context.Context, userID string) (int, error) {
	return s.grantWindowed(ctx, userID, domain.SourceDailyGrant, s.cfg.DailyPackCount)
}

func (s *service) GrantPurchasedPacks(ctx context.Context, paymentRef, userID string, quantity int) (int, bool, error) {
	if paymentRef == "" || userID == "" {
		return 0, false, fmt.Errorf("%w: payment reference and user id are required", domain.ErrInvalidInput)
	}
	if quantity <= 0 || quantity > MaxPurchaseQuantity {
		return 0, false, fmt.Errorf("%w: quantity must be between 1 and %d, got %d", domain.ErrInvalidInput, MaxPurchaseQuantity, quantity)
	}
	purchase := domain.Purchase{
		PaymentRef: paymentRef,
		UserID:     userID,
		Kind:       domain.PurchasePacks,
		Quantity:   quantity,
		CreatedAt:  s.now().UTC(),
	}

	var duplicate bool
	err := repository.RunInTx(ctx, OpGrantPurchase, s.cfg.MaxRetries, s.repo.BeginPackTx, func(tx repository.PackTx) error {
		var err error
		duplicate, err = ledger.RecordPurchaseTx(ctx, tx, purchase)
		if err != nil || duplicate {
			return err
		}
		return tx.CreatePacks(ctx, s.newPacks(userID, domain.SourcePurchased, quantity))
	})
	if err != nil {
		return 0, false, err
	}
	if duplicate {
		logger.FromContext(ctx).Debug(LogMsgPurchaseAlreadyGranted, "payment_ref", paymentRef, "user_id", userID)
		return 0, true, nil
	}
	s.granted(ctx, userID, domain.SourcePurchased, quantity)
	return quantity, false, nil
}

// grantWindowed coalesces concurrent callers in this process, then checks and
// creates under the store's grant lock so other processes are covered too.
func (s *service) grantWindowed(ctx context.Context, userID string, kind domain.SourceKind, count int) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: %s grant size is %d", domain.ErrInvalidConfiguration, kind, count)
	}

	res, err := s.dedup.RunExclusive(ctx, issuance.Key(userID, kind), func(opCtx context.Context) (int, error) {
		return s.grantOnce(opCtx, userID, kind, count)
	})
	if err != nil {
		return 0, err
	}
	if res.Joined {
		metrics.GrantsCoalesced.WithLabelValues(string(kind)).Inc()
		logger.FromContext(ctx).Debug(LogMsgGrantCoalesced, "user_id", userID, "source", kind)
	}
	return res.Created, nil
}

func (s *service) grantOnce(ctx context.Context, userID string, kind domain.SourceKind, count int) (int, error) {
	created := 0
	op := OpGrantInitial
	if kind == domain.SourceDailyGrant {
		op = OpGrantDaily
	}

	err := repository.RunInTx(ctx, op, s.cfg.MaxRetries, s.repo.BeginPackTx, func(tx repository.PackTx) error {
		created = 0
		if err := tx.LockGrantWindow(ctx, userID, kind); err != nil {
			return err
		}
		existing, err := tx.CountPacks(ctx, userID, kind, s.windowStart(kind))
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		if err := tx.CreatePacks(ctx, s.newPacks(userID, kind, count)); err != nil {
			return err
		}
		created = count
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created == 0 {
		logger.FromContext(ctx).Debug(LogMsgGrantSkipped, "user_id", userID, "source", kind)
		return 0, nil
	}
	s.granted(ctx, userID, kind, created)
	return created, nil
}

// windowStart returns the start of the eligibility window; nil means ever.
func (s *service) windowStart(kind domain.SourceKind) *time.Time {
	if kind != domain.SourceDailyGrant {
		return nil
	}
	local := s.now().In(s.cfg.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.cfg.Location)
	return &start
}

func (s *service) newPacks(userID string, kind domain.SourceKind, n int) []domain.Pack {
	now := s.now().UTC()
	packs := make([]domain.Pack, n)
	for i := range packs {
		packs[i] = domain.Pack{
			ID:         uuid.NewString(),
			OwnerID:    userID,
			SourceKind: kind,
			CreatedAt:  now,
		}
	}
	return packs
}

func (s *service) granted(ctx context.Context, userID string, kind domain.SourceKind, n int) {
	metrics.PacksGranted.WithLabelValues(string(kind)).Add(float64(n))
	logger.FromContext(ctx).Info(LogMsgPacksGranted, "user_id", userID, "source", kind, "count", n)
	s.notifier.Notify(ctx, userID, domain.NotifyPacksGranted, map[string]any{
		notify.PayloadPackCount:  n,
		notify.PayloadSourceKind: string(kind),
	})
}

func (s *service) Open(ctx context.Context, packID, userID string) ([]domain.Collectible, error) {
	log := logger.FromContext(ctx)

	// Fail fast without drawing; the checks are repeated under the row lock.
	current, err := s.repo.GetPack(ctx, packID)
	if err != nil {
		return nil, err
	}
	if err := checkOpenable(current, packID, userID); err != nil {
		return nil, err
	}

	drawn, err := s.gen.Draw(ctx, s.cfg.Weights, s.cfg.CardsPerPack)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(drawn))
	contents := make([]string, len(drawn))
	for i, c := range drawn {
		counts[c.ID]++
		contents[i] = c.ID
	}
	ids := make([]string, 0, len(counts))
	keys := make([]domain.EntryKey, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		keys = append(keys, domain.EntryKey{UserID: userID, CollectibleID: id})
	}

	err = repository.RunInTx(ctx, OpOpen, s.cfg.MaxRetries, s.repo.BeginPackTx, func(tx repository.PackTx) error {
		p, err := tx.GetPackForUpdate(ctx, packID)
		if err != nil {
			return err
		}
		if err := checkOpenable(p, packID, userID); err != nil {
			return err
		}
		if err := tx.LockEntries(ctx, keys); err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := ledger.CreditTx(ctx, tx, userID, id, counts[id]); err != nil {
				return err
			}
		}
		return tx.MarkPackOpened(ctx, packID, contents, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	metrics.PacksOpened.Inc()
	for _, c := range drawn {
		metrics.CollectiblesDrawn.WithLabelValues(string(c.Rarity)).Inc()
	}
	log.Info(LogMsgPackOpened, "pack_id", packID, "user_id", userID, "collectibles", len(drawn))
	return drawn, nil
}

func checkOpenable(p *domain.Pack, packID, userID string) error {
	if p == nil {
		return fmt.Errorf("%w: pack %s", domain.ErrNotFound, packID)
	}
	if p.OwnerID != userID {
		return fmt.Errorf("%w: pack %s belongs to another user", domain.ErrForbidden, packID)
	}
	if p.Opened {
		return fmt.Errorf("%w: pack %s is already opened", domain.ErrInvalidState, packID)
	}
	return nil
}

// GetPack returns the pack when it belongs to userID
func (s *service) GetPack(ctx context.Context, packID, userID string) (*domain.Pack, error) {
	p, err := s.repo.GetPack(ctx, packID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: pack %s", domain.ErrNotFound, packID)
	}
	if p.OwnerID != userID {
		return nil, fmt.Errorf("%w: pack %s belongs to another user", domain.ErrForbidden, packID)
	}
	return p, nil
}

func (s *service) ListPacks(ctx context.Context, userID string, opened *bool) ([]domain.Pack, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	packs, err := s.repo.ListPacks(ctx, userID, opened)
	if err != nil {
		return nil, err
	}
	if packs == nil {
		packs = []domain.Pack{}
	}
	return packs, nil
}
