package trade

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/StickerSwap_Go/internal/database/memory"
	"github.com/osse101/StickerSwap_Go/internal/domain"
)

type sent struct {
	userID string
	kind   domain.NotificationKind
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *recordingNotifier) Notify(ctx context.Context, userID string, kind domain.NotificationKind, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{userID: userID, kind: kind})
}

func (n *recordingNotifier) has(userID string, kind domain.NotificationKind) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.sent {
		if s.userID == userID && s.kind == kind {
			return true
		}
	}
	return false
}

var album = []domain.Collectible{
	{ID: "x", GroupID: "g", Name: "X", Number: 1, Rarity: domain.RaritySilver},
	{ID: "y", GroupID: "g", Name: "Y", Number: 2, Rarity: domain.RaritySilver},
	{ID: "z", GroupID: "g", Name: "Z", Number: 3, Rarity: domain.RarityGold},
	{ID: "w", GroupID: "g", Name: "W", Number: 4, Rarity: domain.RarityLegendary},
}

type fixture struct {
	svc      Service
	store    *memory.Store
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.UpsertCollectibles(context.Background(), album))
	n := &recordingNotifier{}
	return &fixture{svc: NewService(store, n, 3), store: store, notifier: n}
}

func (f *fixture) give(t *testing.T, userID, collectibleID string, amount int) {
	t.Helper()
	ctx := context.Background()
	tx, err := f.store.BeginLedgerTx(ctx)
	require.NoError(t, err)
	_, err = tx.CreditEntry(ctx, userID, collectibleID, amount)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
}

func (f *fixture) take(t *testing.T, userID, collectibleID string, amount int) {
	t.Helper()
	ctx := context.Background()
	tx, err := f.store.BeginLedgerTx(ctx)
	require.NoError(t, err)
	_, err = tx.DebitEntry(ctx, userID, collectibleID, amount)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
}

func (f *fixture) qty(t *testing.T, userID, collectibleID string) int {
	t.Helper()
	q, err := f.store.GetQuantity(context.Background(), userID, collectibleID)
	require.NoError(t, err)
	return q
}

// A holds 3 of X, B holds 2 of Y. A offers X, B counters with Y, A accepts.
func TestTrade_ProposeCounterAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 3)
	f.give(t, "B", "y", 2)

	p, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)
	assert.Equal(t, domain.TradePending, p.Status)
	assert.False(t, p.IsCountered())
	assert.True(t, f.notifier.has("A", domain.NotifyTradeListed))

	p, err = f.svc.Counter(ctx, p.ID, "B", "y")
	require.NoError(t, err)
	require.True(t, p.IsCountered())
	assert.Equal(t, "B", *p.ResponderID)
	assert.Equal(t, "y", *p.RequestedCollectibleID)
	assert.True(t, f.notifier.has("A", domain.NotifyTradeCountered))

	res, err := f.svc.Accept(ctx, p.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, domain.TradeAccepted, res.Proposal.Status)
	assert.Empty(t, res.Cancelled)
	assert.True(t, f.notifier.has("B", domain.NotifyTradeAccepted))

	assert.Equal(t, 2, f.qty(t, "A", "x"))
	assert.Equal(t, 1, f.qty(t, "A", "y"))
	assert.Equal(t, 1, f.qty(t, "B", "x"))
	assert.Equal(t, 1, f.qty(t, "B", "y"))

	stored, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeAccepted, stored.Status)
}

func TestPropose_RequiresDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 1)

	_, err := f.svc.Propose(ctx, "A", "x")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.Propose(ctx, "A", "y")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.Propose(ctx, "", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	open, err := f.store.ListOpenProposals(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestPropose_UnitAlreadyPromised(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 4)

	first, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)

	_, err = f.svc.Propose(ctx, "A", "x")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.Withdraw(ctx, first.ID, "A")
	require.NoError(t, err)

	_, err = f.svc.Propose(ctx, "A", "x")
	assert.NoError(t, err, "withdrawing frees the unit")
}

func TestCounter_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 2)
	f.give(t, "A", "y", 2)
	f.give(t, "B", "y", 2)
	f.give(t, "B", "x", 2)
	f.give(t, "C", "z", 1)
	f.give(t, "D", "w", 2)

	p, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)

	_, err = f.svc.Counter(ctx, "missing", "B", "y")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Counter(ctx, p.ID, "A", "y")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Counter(ctx, p.ID, "C", "z")
	assert.ErrorIs(t, err, domain.ErrConflict, "a single copy cannot be traded")

	_, err = f.svc.Counter(ctx, p.ID, "B", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Counter(ctx, p.ID, "B", "y")
	require.NoError(t, err)

	_, err = f.svc.Counter(ctx, p.ID, "D", "w")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "only one counter-offer per proposal")

	stored, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", *stored.ResponderID)
}

func TestCounter_RequestedUnitAlreadyPromised(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 2)
	f.give(t, "C", "z", 2)
	f.give(t, "B", "y", 3)

	p1, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)
	p2, err := f.svc.Propose(ctx, "C", "z")
	require.NoError(t, err)

	_, err = f.svc.Counter(ctx, p1.ID, "B", "y")
	require.NoError(t, err)
	_, err = f.svc.Counter(ctx, p2.ID, "B", "y")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAccept_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 2)
	f.give(t, "B", "y", 2)

	_, err := f.svc.Accept(ctx, "missing", "A")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, p.ID, "A")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "nothing to accept before a counter")

	_, err = f.svc.Counter(ctx, p.ID, "B", "y")
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, p.ID, "B")
	assert.ErrorIs(t, err, domain.ErrForbidden, "only the proposer decides")

	_, err = f.svc.Accept(ctx, p.ID, "A")
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, p.ID, "A")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.svc.Reject(ctx, p.ID, "A")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.svc.Withdraw(ctx, p.ID, "A")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// Accepting one proposal cancels every other open proposal promising either
// traded collectible, on either side.
func TestAccept_CascadesToConflictingProposals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 3)
	f.give(t, "B", "y", 2)
	f.give(t, "C", "x", 2)
	f.give(t, "D", "z", 2)
	f.give(t, "E", "y", 2)
	f.give(t, "G", "w", 2)

	p1, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)
	p2, err := f.svc.Propose(ctx, "C", "x")
	require.NoError(t, err)
	p3, err := f.svc.Propose(ctx, "D", "z")
	require.NoError(t, err)
	unrelated, err := f.svc.Propose(ctx, "G", "w")
	require.NoError(t, err)

	_, err = f.svc.Counter(ctx, p1.ID, "B", "y")
	require.NoError(t, err)
	_, err = f.svc.Counter(ctx, p3.ID, "E", "y")
	require.NoError(t, err)

	res, err := f.svc.Accept(ctx, p1.ID, "A")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{p2.ID, p3.ID}, res.Cancelled)

	for _, id := range []string{p2.ID, p3.ID} {
		p, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.TradeCancelled, p.Status)
	}
	p, err := f.svc.Get(ctx, unrelated.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TradePending, p.Status)

	_, err = f.svc.Accept(ctx, p2.ID, "C")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.True(t, f.notifier.has("C", domain.NotifyTradeCancelled))
	assert.True(t, f.notifier.has("D", domain.NotifyTradeCancelled))
	assert.True(t, f.notifier.has("E", domain.NotifyTradeCancelled))

	// Cancelled proposals release their units.
	_, err = f.svc.Propose(ctx, "C", "x")
	assert.NoError(t, err)
}

func TestAccept_InsufficientInventoryChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 3)
	f.give(t, "B", "y", 2)

	p, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)
	_, err = f.svc.Counter(ctx, p.ID, "B", "y")
	require.NoError(t, err)

	f.take(t, "B", "y", 2)

	_, err = f.svc.Accept(ctx, p.ID, "A")
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	assert.Equal(t, 3, f.qty(t, "A", "x"))
	assert.Equal(t, 0, f.qty(t, "B", "x"))
	assert.Equal(t, 0, f.qty(t, "A", "y"))

	stored, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TradePending, stored.Status)
	assert.True(t, stored.IsCountered())
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 2)
	f.give(t, "C", "z", 2)
	f.give(t, "B", "y", 2)

	p, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)
	_, err = f.svc.Counter(ctx, p.ID, "B", "y")
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, p.ID, "B")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	rejected, err := f.svc.Reject(ctx, p.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, domain.TradeRejected, rejected.Status)
	assert.True(t, f.notifier.has("B", domain.NotifyTradeRejected))

	// Both units are free again.
	other, err := f.svc.Propose(ctx, "C", "z")
	require.NoError(t, err)
	_, err = f.svc.Counter(ctx, other.ID, "B", "y")
	assert.NoError(t, err)
	_, err = f.svc.Propose(ctx, "A", "x")
	assert.NoError(t, err)

	assert.Equal(t, 2, f.qty(t, "A", "x"))
	assert.Equal(t, 2, f.qty(t, "B", "y"))
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 2)
	f.give(t, "A", "z", 2)
	f.give(t, "B", "y", 2)

	p, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)

	_, err = f.svc.Withdraw(ctx, p.ID, "B")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	withdrawn, err := f.svc.Withdraw(ctx, p.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, domain.TradeCancelled, withdrawn.Status)

	stored, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err, "withdrawn proposals stay in history")
	assert.Equal(t, domain.TradeCancelled, stored.Status)

	countered, err := f.svc.Propose(ctx, "A", "z")
	require.NoError(t, err)
	_, err = f.svc.Counter(ctx, countered.ID, "B", "y")
	require.NoError(t, err)
	_, err = f.svc.Withdraw(ctx, countered.ID, "A")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.svc.Withdraw(ctx, "missing", "A")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOpenAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 2)
	f.give(t, "B", "y", 2)
	f.give(t, "C", "z", 2)
	f.give(t, "D", "w", 2)

	mine, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)
	open, err := f.svc.Propose(ctx, "C", "z")
	require.NoError(t, err)
	taken, err := f.svc.Propose(ctx, "D", "w")
	require.NoError(t, err)
	_, err = f.svc.Counter(ctx, taken.ID, "B", "y")
	require.NoError(t, err)

	listing, err := f.svc.ListOpen(ctx, "A")
	require.NoError(t, err)
	require.Len(t, listing.Mine, 1)
	assert.Equal(t, mine.ID, listing.Mine[0].ID)
	require.Len(t, listing.Others, 1, "countered proposals are no longer on offer")
	assert.Equal(t, open.ID, listing.Others[0].ID)

	listing, err = f.svc.ListOpen(ctx, "B")
	require.NoError(t, err)
	require.Len(t, listing.Mine, 1)
	assert.Equal(t, taken.ID, listing.Mine[0].ID)

	history, err := f.svc.History(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

// Two proposals share collectible X; accepting both at once lets exactly one through.
func TestAccept_ConcurrentConflictingAccepts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.give(t, "A", "x", 2)
	f.give(t, "B", "y", 2)
	f.give(t, "C", "x", 2)
	f.give(t, "D", "z", 2)

	p1, err := f.svc.Propose(ctx, "A", "x")
	require.NoError(t, err)
	p2, err := f.svc.Propose(ctx, "C", "x")
	require.NoError(t, err)
	_, err = f.svc.Counter(ctx, p1.ID, "B", "y")
	require.NoError(t, err)
	_, err = f.svc.Counter(ctx, p2.ID, "D", "z")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, accept := range []struct{ id, user string }{{p1.ID, "A"}, {p2.ID, "C"}} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Accept(ctx, accept.id, accept.user)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidState)
		}
	}
	assert.Equal(t, 1, succeeded)

	for id, want := range map[string]int{"x": 4, "y": 2, "z": 2} {
		total, err := f.store.TotalQuantity(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, total, id)
	}
}
