package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
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
	"github.com/osse101/StickerSwap_Go/internal/purchase"
)

// collectionRouter wires the pack, inventory and catalog endpoints over an
// in-memory store seeded with a small album.
func collectionRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.UpsertCollectibles(context.Background(), []domain.Collectible{
		{ID: "s1", GroupID: "g", Name: "S1", Number: 1, Rarity: domain.RaritySilver},
		{ID: "g1", GroupID: "g", Name: "G1", Number: 2, Rarity: domain.RarityGold},
		{ID: "l1", GroupID: "g", Name: "L1", Number: 3, Rarity: domain.RarityLegendary},
	}))
	catalogSvc := catalog.NewService(store, time.Minute)
	packSvc := pack.NewService(store, packgen.NewService(catalogSvc), issuance.New(), notify.Nop{}, pack.Config{
		InitialPackCount: 2,
		DailyPackCount:   1,
		CardsPerPack:     3,
		Weights:          packgen.DefaultWeights(),
		MaxRetries:       3,
	})
	ledgerSvc := ledger.NewService(store, catalogSvc, 3)

	r := chi.NewRouter()
	r.Post("/packs/initial", HandleGrantInitialPacks(packSvc))
	r.Post("/packs/daily", HandleGrantDailyPacks(packSvc))
	r.Get("/packs", HandleListPacks(packSvc))
	r.Get("/packs/{packID}", HandleGetPack(packSvc))
	r.Post("/packs/{packID}/open", HandleOpenPack(packSvc))
	r.Get("/inventory", HandleGetInventory(ledgerSvc))
	r.Get("/inventory/duplicates", HandleGetDuplicates(ledgerSvc))
	r.Get("/inventory/stats", HandleGetAlbumStats(ledgerSvc))
	r.Get("/ranking", HandleGetRanking(ledgerSvc))
	r.Get("/catalog", HandleListCatalog(catalogSvc))
	return r
}

func TestPackEndpoints_GrantOpenInventory(t *testing.T) {
	h := collectionRouter(t)

	w := doRequest(h, http.MethodPost, "/packs/initial", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"granted":2}`, w.Body.String())

	w = doRequest(h, http.MethodPost, "/packs/initial", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"granted":0}`, w.Body.String())

	w = doRequest(h, http.MethodGet, "/packs?opened=false", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var packs []domain.Pack
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &packs))
	require.Len(t, packs, 2)

	w = doRequest(h, http.MethodPost, "/packs/"+packs[0].ID+"/open", "bob", "")
	assert.Equal(t, http.StatusForbidden, w.Code, "only the owner opens a pack")

	w = doRequest(h, http.MethodPost, "/packs/"+packs[0].ID+"/open", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var opened OpenPackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	assert.Len(t, opened.Collectibles, 3)

	w = doRequest(h, http.MethodPost, "/packs/"+packs[0].ID+"/open", "alice", "")
	assert.Equal(t, http.StatusConflict, w.Code, "a pack opens once")

	w = doRequest(h, http.MethodGet, "/packs/"+packs[0].ID, "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stored domain.Pack
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.True(t, stored.Opened)
	assert.Len(t, stored.Contents, 3)

	w = doRequest(h, http.MethodGet, "/inventory", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var holdings []domain.Holding
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &holdings))
	total := 0
	for _, hd := range holdings {
		total += hd.Quantity
	}
	assert.Equal(t, 3, total)
}

func TestPackEndpoints_Errors(t *testing.T) {
	h := collectionRouter(t)

	assert.Equal(t, http.StatusNotFound, doRequest(h, http.MethodPost, "/packs/nope/open", "alice", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(h, http.MethodGet, "/packs/nope", "alice", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h, http.MethodGet, "/packs?opened=maybe", "alice", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(h, http.MethodPost, "/packs/daily", "", "").Code)

	w := doRequest(h, http.MethodGet, "/inventory/duplicates", "nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandleListCatalog(t *testing.T) {
	h := collectionRouter(t)

	w := doRequest(h, http.MethodGet, "/catalog?rarity=gold", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.Collectible
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "g1", list[0].ID)

	assert.Equal(t, http.StatusBadRequest, doRequest(h, http.MethodGet, "/catalog?rarity=bronze", "", "").Code)
}

type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Confirm(ctx context.Context, paymentRef, userID string, quantity int) (*purchase.Receipt, error) {
	args := m.Called(ctx, paymentRef, userID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Receipt), args.Error(1)
}

func (m *MockPurchaseService) ConfirmCard(ctx context.Context, paymentRef, userID, collectibleID string, tier *domain.Rarity) (*purchase.Receipt, error) {
	args := m.Called(ctx, paymentRef, userID, collectibleID, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Receipt), args.Error(1)
}

func TestHandleConfirmPurchase(t *testing.T) {
	svc := new(MockPurchaseService)
	svc.On("Confirm", mock.Anything, "pay-1", "alice", 2).
		Return(&purchase.Receipt{PaymentRef: "pay-1", UserID: "alice", Granted: 2}, nil)
	svc.On("Confirm", mock.Anything, "pay-down", "alice", 1).
		Return(nil, fmt.Errorf("%w: redis", domain.ErrTransient))
	h := HandleConfirmPurchase(svc)

	w := doRequest(h, http.MethodPost, "/purchases/confirm", "", `{"payment_ref":"pay-1","user_id":"alice","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"granted":2`)

	w = doRequest(h, http.MethodPost, "/purchases/confirm", "", `{"payment_ref":"pay-down","user_id":"alice","quantity":1}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doRequest(h, http.MethodPost, "/purchases/confirm", "", `{"payment_ref":"pay-2","user_id":"alice","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestHandleConfirmCardPurchase(t *testing.T) {
	svc := new(MockPurchaseService)
	gold := domain.RarityGold
	svc.On("ConfirmCard", mock.Anything, "card-1", "alice", "g1", &gold).
		Return(&purchase.Receipt{PaymentRef: "card-1", UserID: "alice", Kind: domain.PurchaseCard, Granted: 1}, nil)
	svc.On("ConfirmCard", mock.Anything, "card-2", "alice", "g1", (*domain.Rarity)(nil)).
		Return(nil, fmt.Errorf("%w: payment reference card-2", domain.ErrConflict))
	h := HandleConfirmCardPurchase(svc)

	w := doRequest(h, http.MethodPost, "/purchases/card/confirm", "",
		`{"payment_ref":"card-1","user_id":"alice","collectible_id":"g1","rarity":"gold"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"CARD"`)
	assert.Contains(t, w.Body.String(), `"granted":1`)

	w = doRequest(h, http.MethodPost, "/purchases/card/confirm", "",
		`{"payment_ref":"card-2","user_id":"alice","collectible_id":"g1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(h, http.MethodPost, "/purchases/card/confirm", "",
		`{"payment_ref":"card-3","user_id":"alice","collectible_id":"g1","rarity":"bronze"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodPost, "/purchases/card/confirm", "", `{"payment_ref":"card-4","user_id":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestInventoryEndpoints_StatsAndRanking(t *testing.T) {
	h := collectionRouter(t)

	w := doRequest(h, http.MethodPost, "/packs/initial", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var packs []domain.Pack
	w = doRequest(h, http.MethodGet, "/packs", "alice", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &packs))
	for _, p := range packs {
		require.Equal(t, http.StatusOK, doRequest(h, http.MethodPost, "/packs/"+p.ID+"/open", "alice", "").Code)
	}

	w = doRequest(h, http.MethodGet, "/inventory/stats", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.AlbumStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 6, stats.Total, "two packs of three")
	assert.Equal(t, 3, stats.CatalogSize)
	assert.Equal(t, 1, stats.TotalGroups)
	assert.Equal(t, http.StatusUnauthorized, doRequest(h, http.MethodGet, "/inventory/stats", "", "").Code)

	w = doRequest(h, http.MethodGet, "/ranking?limit=10", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ranking []domain.RankingEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranking))
	require.Len(t, ranking, 1)
	assert.Equal(t, domain.RankingEntry{UserID: "alice", Total: 6, Unique: stats.Unique}, ranking[0])

	assert.Equal(t, http.StatusBadRequest, doRequest(h, http.MethodGet, "/ranking?limit=ten", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h, http.MethodGet, "/ranking?limit=-1", "", "").Code)
}
