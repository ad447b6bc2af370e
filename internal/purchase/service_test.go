package purchase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/StickerSwap_Go/internal/catalog"
	"github.com/osse101/StickerSwap_Go/internal/database/memory"
	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/issuance"
	"github.com/osse101/StickerSwap_Go/internal/ledger"
	"github.com/osse101/StickerSwap_Go/internal/notify"
	"github.com/osse101/StickerSwap_Go/internal/pack"
	"github.com/osse101/StickerSwap_Go/internal/packgen"
)

type MockGranter struct {
	mock.Mock
}

func (m *MockGranter) GrantPurchasedPacks(ctx context.Context, paymentRef, userID string, quantity int) (int, bool, error) {
	args := m.Called(ctx, paymentRef, userID, quantity)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type failingStore struct{}

func (failingStore) Lookup(ctx context.Context, ref string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (failingStore) Remember(ctx context.Context, ref, order string) error {
	return errors.New("connection refused")
}

var album = []domain.Collectible{
	{ID: "s1", GroupID: "g", Name: "S1", Number: 1, Rarity: domain.RaritySilver},
	{ID: "g1", GroupID: "g", Name: "G1", Number: 2, Rarity: domain.RarityGold},
	{ID: "l1", GroupID: "g", Name: "L1", Number: 3, Rarity: domain.RarityLegendary},
}

type backend struct {
	db    *memory.Store
	packs pack.Service
	cards ledger.Service
	cat   catalog.Service
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	db := memory.NewStore()
	require.NoError(t, db.UpsertCollectibles(context.Background(), album))
	cat := catalog.NewService(db, time.Minute)
	return &backend{
		db: db,
		packs: pack.NewService(db, packgen.NewService(cat), issuance.New(), notify.Nop{}, pack.Config{
			InitialPackCount: 1,
			DailyPackCount:   1,
			CardsPerPack:     2,
			Weights:          packgen.DefaultWeights(),
			MaxRetries:       3,
		}),
		cards: ledger.NewService(db, cat, 3),
		cat:   cat,
	}
}

func (b *backend) service(store IdempotencyStore) Service {
	return NewService(store, b.packs, b.cards, b.cat)
}

func (b *backend) packCount(t *testing.T, userID string) int {
	t.Helper()
	packs, err := b.packs.ListPacks(context.Background(), userID, nil)
	require.NoError(t, err)
	return len(packs)
}

func TestConfirm_GrantsOncePerReference(t *testing.T) {
	granter := new(MockGranter)
	granter.On("GrantPurchasedPacks", mock.Anything, "pay-1", "alice", 3).Return(3, false, nil).Once()
	svc := NewService(NewMemoryStore(10, time.Hour), granter, nil, nil)
	ctx := context.Background()

	r, err := svc.Confirm(ctx, "pay-1", "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Granted)
	assert.Equal(t, domain.PurchasePacks, r.Kind)
	assert.False(t, r.Duplicate)

	r, err = svc.Confirm(ctx, "pay-1", "alice", 3)
	require.NoError(t, err)
	assert.True(t, r.Duplicate, "answered from the store without another grant")
	assert.Zero(t, r.Granted)

	granter.AssertExpectations(t)
}

func TestConfirm_ConcurrentRedeliveriesGrantOnce(t *testing.T) {
	b := newBackend(t)
	svc := b.service(NewMemoryStore(10, time.Hour))

	var wg sync.WaitGroup
	var granted, duplicates atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := svc.Confirm(context.Background(), "pay-7", "alice", 2)
			if !assert.NoError(t, err) {
				return
			}
			granted.Add(int32(r.Granted))
			if r.Duplicate {
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), granted.Load())
	assert.Equal(t, int32(19), duplicates.Load())
	assert.Equal(t, 2, b.packCount(t, "alice"))
}

// blockingGranter holds its first call until released, then fails it.
type blockingGranter struct {
	next    Granter
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *blockingGranter) GrantPurchasedPacks(ctx context.Context, paymentRef, userID string, quantity int) (int, bool, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
		return 0, false, domain.ErrTransient
	}
	return g.next.GrantPurchasedPacks(ctx, paymentRef, userID, quantity)
}

func TestConfirm_RedeliveryDuringFailingGrantIsNotLost(t *testing.T) {
	b := newBackend(t)
	granter := &blockingGranter{next: b.packs, entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(NewMemoryStore(10, time.Hour), granter, b.cards, b.cat)
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Confirm(ctx, "pay-2", "alice", 1)
		firstErr <- err
	}()
	<-granter.entered

	r, err := svc.Confirm(ctx, "pay-2", "alice", 1)
	require.NoError(t, err)
	assert.False(t, r.Duplicate, "an in-flight delivery does not make the redelivery a duplicate")
	assert.Equal(t, 1, r.Granted)

	close(granter.release)
	assert.ErrorIs(t, <-firstErr, domain.ErrTransient)

	r, err = svc.Confirm(ctx, "pay-2", "alice", 1)
	require.NoError(t, err)
	assert.True(t, r.Duplicate)
	assert.Equal(t, 1, b.packCount(t, "alice"))
}

func TestConfirm_FailedGrantLeavesReferenceOpen(t *testing.T) {
	granter := new(MockGranter)
	granter.On("GrantPurchasedPacks", mock.Anything, "pay-2", "alice", 1).Return(0, false, domain.ErrTransient).Once()
	granter.On("GrantPurchasedPacks", mock.Anything, "pay-2", "alice", 1).Return(1, false, nil).Once()
	svc := NewService(NewMemoryStore(10, time.Hour), granter, nil, nil)
	ctx := context.Background()

	_, err := svc.Confirm(ctx, "pay-2", "alice", 1)
	assert.ErrorIs(t, err, domain.ErrTransient)

	r, err := svc.Confirm(ctx, "pay-2", "alice", 1)
	require.NoError(t, err, "the redelivery is processed after a failure")
	assert.Equal(t, 1, r.Granted)
	granter.AssertExpectations(t)
}

func TestConfirm_RecordedReferenceMissingFromStore(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	r, err := b.service(NewMemoryStore(10, time.Hour)).Confirm(ctx, "pay-3", "alice", 2)
	require.NoError(t, err)
	require.False(t, r.Duplicate)

	// a fresh store, as after an eviction or a restart
	r, err = b.service(NewMemoryStore(10, time.Hour)).Confirm(ctx, "pay-3", "alice", 2)
	require.NoError(t, err)
	assert.True(t, r.Duplicate)
	assert.Equal(t, 2, b.packCount(t, "alice"))
}

func TestConfirm_ReferenceReusedForAnotherOrder(t *testing.T) {
	b := newBackend(t)
	svc := b.service(NewMemoryStore(10, time.Hour))
	ctx := context.Background()

	_, err := svc.Confirm(ctx, "pay-4", "alice", 2)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, "pay-4", "bob", 2)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = svc.Confirm(ctx, "pay-4", "alice", 5)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = svc.ConfirmCard(ctx, "pay-4", "alice", "s1", nil)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, b.packCount(t, "bob"))
}

func TestConfirm_Validation(t *testing.T) {
	granter := new(MockGranter)
	svc := NewService(NewMemoryStore(10, time.Hour), granter, nil, nil)

	tests := []struct {
		name     string
		ref      string
		user     string
		quantity int
	}{
		{"missing reference", "", "alice", 1},
		{"missing user", "pay", "", 1},
		{"zero quantity", "pay", "alice", 0},
		{"negative quantity", "pay", "alice", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Confirm(context.Background(), tt.ref, tt.user, tt.quantity)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	granter.AssertNotCalled(t, "GrantPurchasedPacks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_StoreUnavailableFallsBackToRecord(t *testing.T) {
	b := newBackend(t)
	svc := b.service(failingStore{})
	ctx := context.Background()

	r, err := svc.Confirm(ctx, "pay-5", "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Granted)

	r, err = svc.Confirm(ctx, "pay-5", "alice", 1)
	require.NoError(t, err)
	assert.True(t, r.Duplicate)
	assert.Equal(t, 1, b.packCount(t, "alice"))
}

func TestConfirmCard(t *testing.T) {
	b := newBackend(t)
	svc := b.service(NewMemoryStore(10, time.Hour))
	ctx := context.Background()
	gold := domain.RarityGold

	r, err := svc.ConfirmCard(ctx, "card-1", "alice", "g1", &gold)
	require.NoError(t, err)
	assert.False(t, r.Duplicate)
	assert.Equal(t, 1, r.Granted)
	assert.Equal(t, domain.PurchaseCard, r.Kind)
	require.NotNil(t, r.Collectible)
	assert.Equal(t, "G1", r.Collectible.Name)

	r, err = svc.ConfirmCard(ctx, "card-1", "alice", "g1", &gold)
	require.NoError(t, err)
	assert.True(t, r.Duplicate)
	assert.Zero(t, r.Granted)

	qty, err := b.cards.QuantityOf(ctx, "alice", "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	// any tier when none is requested
	r, err = svc.ConfirmCard(ctx, "card-2", "alice", "l1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Granted)
}

func TestConfirmCard_Rejections(t *testing.T) {
	b := newBackend(t)
	svc := b.service(NewMemoryStore(10, time.Hour))
	ctx := context.Background()
	silver := domain.RaritySilver
	bronze := domain.Rarity("BRONZE")

	_, err := svc.ConfirmCard(ctx, "card-3", "alice", "g1", &silver)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tier must match the chosen collectible")
	_, err = svc.ConfirmCard(ctx, "card-3", "alice", "g1", &bronze)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.ConfirmCard(ctx, "card-3", "alice", "nope", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.ConfirmCard(ctx, "card-3", "", "g1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	qty, err := b.cards.QuantityOf(ctx, "alice", "g1")
	require.NoError(t, err)
	assert.Zero(t, qty)

	// the reference was never recorded, so it is still usable
	r, err := svc.ConfirmCard(ctx, "card-3", "alice", "s1", &silver)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Granted)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(10, 50*time.Millisecond)
	ctx := context.Background()

	_, found, err := store.Lookup(ctx, "ref")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Remember(ctx, "ref", "order"))
	order, found, err := store.Lookup(ctx, "ref")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "order", order)

	assert.Eventually(t, func() bool {
		_, found, _ := store.Lookup(ctx, "ref")
		return !found
	}, time.Second, 20*time.Millisecond)
}
