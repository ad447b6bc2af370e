package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/StickerSwap_Go/internal/catalog"
	"github.com/osse101/StickerSwap_Go/internal/database/postgres"
	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/issuance"
	"github.com/osse101/StickerSwap_Go/internal/ledger"
	"github.com/osse101/StickerSwap_Go/internal/notify"
	"github.com/osse101/StickerSwap_Go/internal/pack"
	"github.com/osse101/StickerSwap_Go/internal/packgen"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

func recordPurchase(t *testing.T, pool repositoryPool, p domain.Purchase) (domain.Purchase, bool, error) {
	t.Helper()
	ctx := context.Background()
	tx, err := pool.BeginLedgerTx(ctx)
	require.NoError(t, err)
	defer repository.SafeRollback(ctx, tx)
	stored, created, err := tx.RecordPurchase(ctx, p)
	if err != nil {
		return stored, created, err
	}
	require.NoError(t, tx.Commit(ctx))
	return stored, created, nil
}

type repositoryPool interface {
	BeginLedgerTx(ctx context.Context) (repository.LedgerTx, error)
}

func TestPurchase_RecordKeepsFirstOrder(t *testing.T) {
	pool := requireDB(t)
	repo := postgres.NewInventoryRepository(pool)
	c := seedCollectibles(t, pool, 1, domain.RarityGold)[0]
	user := newUserID()
	now := time.Now().UTC().Truncate(time.Microsecond)
	ref := "pay-" + uuid.NewString()

	first := domain.Purchase{PaymentRef: ref, UserID: user, Kind: domain.PurchaseCard, Quantity: 1, CollectibleID: &c.ID, CreatedAt: now}
	stored, created, err := recordPurchase(t, repo, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first, stored)

	again := first
	again.UserID = newUserID()
	again.CreatedAt = now.Add(time.Minute)
	stored, created, err = recordPurchase(t, repo, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user, stored.UserID, "the stored order wins")
	require.NotNil(t, stored.CollectibleID)
	assert.Equal(t, c.ID, *stored.CollectibleID)
	assert.True(t, stored.CreatedAt.Equal(now))
}

func TestPurchase_RecordUnknownCollectible(t *testing.T) {
	pool := requireDB(t)
	missing := "missing-" + uuid.NewString()
	_, _, err := recordPurchase(t, postgres.NewInventoryRepository(pool), domain.Purchase{
		PaymentRef: "pay-" + uuid.NewString(), UserID: newUserID(), Kind: domain.PurchaseCard,
		Quantity: 1, CollectibleID: &missing, CreatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPurchase_RolledBackRecordFreesReference(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	repo := postgres.NewInventoryRepository(pool)
	p := domain.Purchase{PaymentRef: "pay-" + uuid.NewString(), UserID: newUserID(), Kind: domain.PurchasePacks, Quantity: 2, CreatedAt: time.Now().UTC()}

	tx, err := repo.BeginLedgerTx(ctx)
	require.NoError(t, err)
	_, created, err := tx.RecordPurchase(ctx, p)
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, tx.Rollback(ctx))

	_, created, err = recordPurchase(t, repo, p)
	require.NoError(t, err)
	assert.True(t, created, "a failed delivery leaves the reference unused")
}

func newPostgresPackService(t *testing.T) pack.Service {
	t.Helper()
	pool := requireDB(t)
	cat := catalog.NewService(postgres.NewCatalogRepository(pool), time.Minute)
	return pack.NewService(postgres.NewPackRepository(pool), packgen.NewService(cat), issuance.New(), notify.Nop{}, pack.Config{
		InitialPackCount: 1,
		DailyPackCount:   1,
		CardsPerPack:     3,
		Weights:          packgen.DefaultWeights(),
		MaxRetries:       5,
	})
}

func TestPurchase_ConcurrentRedeliveriesGrantOnce(t *testing.T) {
	svc := newPostgresPackService(t)
	ctx := context.Background()
	user := newUserID()
	ref := "pay-" + uuid.NewString()

	const deliveries = 20
	var wg sync.WaitGroup
	var fresh, granted atomic.Int32
	start := make(chan struct{})
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			n, dup, err := svc.GrantPurchasedPacks(ctx, ref, user, 4)
			if !assert.NoError(t, err) {
				return
			}
			granted.Add(int32(n))
			if !dup {
				fresh.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), fresh.Load())
	assert.Equal(t, int32(4), granted.Load())
	packs, err := svc.ListPacks(ctx, user, nil)
	require.NoError(t, err)
	assert.Len(t, packs, 4)
}

func TestPurchase_CardCreditedOnce(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	c := seedCollectibles(t, pool, 1, domain.RarityLegendary)[0]
	cat := catalog.NewService(postgres.NewCatalogRepository(pool), time.Minute)
	svc := ledger.NewService(postgres.NewInventoryRepository(pool), cat, 5)
	user := newUserID()
	ref := "card-" + uuid.NewString()

	var wg sync.WaitGroup
	var fresh atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup, err := svc.CreditPurchase(ctx, ref, user, c.ID)
			if assert.NoError(t, err) && !dup {
				fresh.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fresh.Load())
	qty, err := svc.QuantityOf(ctx, user, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)
}

func TestInventory_Ranking(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	cs := seedCollectibles(t, pool, 2, domain.RaritySilver)
	top, second := newUserID(), newUserID()
	credit(t, pool, top, cs[0].ID, 1_000_000)
	credit(t, pool, second, cs[0].ID, 900_000)
	credit(t, pool, second, cs[1].ID, 1)

	ranking, err := postgres.NewInventoryRepository(pool).Ranking(ctx, 2)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, domain.RankingEntry{UserID: top, Total: 1_000_000, Unique: 1}, ranking[0])
	assert.Equal(t, domain.RankingEntry{UserID: second, Total: 900_001, Unique: 2}, ranking[1])
}
