// Package trade runs the two-party proposal state machine. A proposal is
// PENDING until the proposer accepts or rejects it, or withdraws it while no
// one has countered. Accepting swaps both units in one unit of work and
// cancels every other open proposal promising either traded collectible.
package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/ledger"
	"github.com/osse101/StickerSwap_Go/internal/logger"
	"github.com/osse101/StickerSwap_Go/internal/metrics"
	"github.com/osse101/StickerSwap_Go/internal/notify"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

// AcceptResult is the accepted proposal and the ids cascaded to CANCELLED
type AcceptResult struct {
	Proposal  domain.TradeProposal `json:"proposal"`
	Cancelled []string             `json:"cancelled"`
}

// Service defines the interface for trade operations
type Service interface {
	Propose(ctx context.Context, proposerID, offeredCollectibleID string) (*domain.TradeProposal, error)
	Counter(ctx context.Context, proposalID, responderID, requestedCollectibleID string) (*domain.TradeProposal, error)
	Accept(ctx context.Context, proposalID, actingUserID string) (*AcceptResult, error)
	Reject(ctx context.Context, proposalID, actingUserID string) (*domain.TradeProposal, error)
	Withdraw(ctx context.Context, proposalID, actingUserID string) (*domain.TradeProposal, error)
	Get(ctx context.Context, proposalID string) (*domain.TradeProposal, error)
	// ListOpen returns the user's own open proposals and the open offers of
	// other users that are still waiting for a counter.
	ListOpen(ctx context.Context, userID string) (*domain.TradeListing, error)
	// History returns every proposal the user took part in.
	History(ctx context.Context, userID string) ([]domain.TradeProposal, error)
}

type service struct {
	repo       repository.Trade
	notifier   notify.Notifier
	maxRetries int
	now        func() time.Time
}

// NewService creates a new trade service
func NewService(repo repository.Trade, notifier notify.Notifier, maxRetries int) Service {
	return &service{
		repo:       repo,
		notifier:   notifier,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

func requireIDs(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: user, proposal and collectible ids are required", domain.ErrInvalidInput)
		}
	}
	return nil
}

// requireDuplicate checks the duplicates-only rule: one unit always stays with the owner.
func requireDuplicate(ctx context.Context, tx repository.TradeTx, userID, collectibleID string) error {
	qty, err := tx.GetQuantity(ctx, userID, collectibleID)
	if err != nil {
		return err
	}
	if qty < ledger.MinTradeableQuantity {
		return fmt.Errorf("%w: user %s holds %d of %s, only duplicates can be traded",
			domain.ErrConflict, userID, qty, collectibleID)
	}
	return nil
}

// loadForUpdate locks the proposal and rejects missing or finished ones.
func loadForUpdate(ctx context.Context, tx repository.TradeTx, proposalID string) (*domain.TradeProposal, error) {
	p, err := tx.GetProposalForUpdate(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: proposal %s", domain.ErrNotFound, proposalID)
	}
	if p.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: proposal %s is %s", domain.ErrInvalidState, proposalID, p.Status)
	}
	return p, nil
}

func requireProposer(p *domain.TradeProposal, actingUserID string) error {
	if p.ProposerID != actingUserID {
		return fmt.Errorf("%w: only the proposer may decide proposal %s", domain.ErrForbidden, p.ID)
	}
	return nil
}

func (s *service) Propose(ctx context.Context, proposerID, offeredCollectibleID string) (*domain.TradeProposal, error) {
	if err := requireIDs(proposerID, offeredCollectibleID); err != nil {
		return nil, err
	}

	var p *domain.TradeProposal
	err := repository.RunInTx(ctx, OpPropose, s.maxRetries, s.repo.BeginTradeTx, func(tx repository.TradeTx) error {
		if err := tx.LockEntries(ctx, []domain.EntryKey{{UserID: proposerID, CollectibleID: offeredCollectibleID}}); err != nil {
			return err
		}
		if err := requireDuplicate(ctx, tx, proposerID, offeredCollectibleID); err != nil {
			return err
		}
		now := s.now().UTC()
		p = &domain.TradeProposal{
			ID:                   uuid.NewString(),
			ProposerID:           proposerID,
			OfferedCollectibleID: offeredCollectibleID,
			Status:               domain.TradePending,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := tx.CreateProposal(ctx, p); err != nil {
			return err
		}
		return tx.Reserve(ctx, domain.Reservation{
			ProposalID:    p.ID,
			UserID:        proposerID,
			CollectibleID: offeredCollectibleID,
			Side:          domain.SideOffered,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.TradeTransitions.WithLabelValues(OpPropose).Inc()
	logger.FromContext(ctx).Info(LogMsgProposalCreated, "proposal_id", p.ID, "user_id", proposerID, "collectible_id", offeredCollectibleID)
	s.notifier.Notify(ctx, proposerID, domain.NotifyTradeListed, map[string]any{
		notify.PayloadProposalID:    p.ID,
		notify.PayloadCollectibleID: offeredCollectibleID,
	})
	return p, nil
}

func (s *service) Counter(ctx context.Context, proposalID, responderID, requestedCollectibleID string) (*domain.TradeProposal, error) {
	if err := requireIDs(proposalID, responderID, requestedCollectibleID); err != nil {
		return nil, err
	}

	var p *domain.TradeProposal
	err := repository.RunInTx(ctx, OpCounter, s.maxRetries, s.repo.BeginTradeTx, func(tx repository.TradeTx) error {
		var err error
		p, err = loadForUpdate(ctx, tx, proposalID)
		if err != nil {
			return err
		}
		if p.IsCountered() {
			return fmt.Errorf("%w: proposal %s already has a counter-offer", domain.ErrInvalidState, proposalID)
		}
		if p.ProposerID == responderID {
			return fmt.Errorf("%w: cannot counter your own proposal", domain.ErrForbidden)
		}
		if p.OfferedCollectibleID == requestedCollectibleID {
			return fmt.Errorf("%w: a trade must exchange two different collectibles", domain.ErrInvalidInput)
		}
		if err := tx.LockEntries(ctx, []domain.EntryKey{{UserID: responderID, CollectibleID: requestedCollectibleID}}); err != nil {
			return err
		}
		if err := requireDuplicate(ctx, tx, responderID, requestedCollectibleID); err != nil {
			return err
		}
		if err := tx.Reserve(ctx, domain.Reservation{
			ProposalID:    p.ID,
			UserID:        responderID,
			CollectibleID: requestedCollectibleID,
			Side:          domain.SideRequested,
		}); err != nil {
			return err
		}
		p.ResponderID = &responderID
		p.RequestedCollectibleID = &requestedCollectibleID
		p.UpdatedAt = s.now().UTC()
		return tx.UpdateProposal(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	metrics.TradeTransitions.WithLabelValues(OpCounter).Inc()
	logger.FromContext(ctx).Info(LogMsgProposalCountered, "proposal_id", p.ID, "user_id", responderID, "collectible_id", requestedCollectibleID)
	s.notifier.Notify(ctx, p.ProposerID, domain.NotifyTradeCountered, map[string]any{
		notify.PayloadProposalID:    p.ID,
		notify.PayloadCounterpartID: responderID,
		notify.PayloadRequestedID:   requestedCollectibleID,
	})
	return p, nil
}

func (s *service) Accept(ctx context.Context, proposalID, actingUserID string) (*AcceptResult, error) {
	if err := requireIDs(proposalID, actingUserID); err != nil {
		return nil, err
	}

	var p *domain.TradeProposal
	var cancelled []domain.TradeProposal
	err := repository.RunInTx(ctx, OpAccept, s.maxRetries, s.repo.BeginTradeTx, func(tx repository.TradeTx) error {
		var err error
		p, err = loadForUpdate(ctx, tx, proposalID)
		if err != nil {
			return err
		}
		if err := requireProposer(p, actingUserID); err != nil {
			return err
		}
		if !p.IsCountered() {
			return fmt.Errorf("%w: proposal %s has no counter-offer to accept", domain.ErrInvalidState, proposalID)
		}
		responderID, requestedID := *p.ResponderID, *p.RequestedCollectibleID

		if err := tx.LockEntries(ctx, []domain.EntryKey{
			{UserID: p.ProposerID, CollectibleID: p.OfferedCollectibleID},
			{UserID: responderID, CollectibleID: p.OfferedCollectibleID},
			{UserID: responderID, CollectibleID: requestedID},
			{UserID: p.ProposerID, CollectibleID: requestedID},
		}); err != nil {
			return err
		}
		if err := ledger.TransferTx(ctx, tx, p.ProposerID, responderID, p.OfferedCollectibleID, 1); err != nil {
			return err
		}
		if err := ledger.TransferTx(ctx, tx, responderID, p.ProposerID, requestedID, 1); err != nil {
			return err
		}

		now := s.now().UTC()
		p.Status = domain.TradeAccepted
		p.UpdatedAt = now
		if err := tx.UpdateProposal(ctx, p); err != nil {
			return err
		}
		if err := tx.ReleaseReservations(ctx, p.ID); err != nil {
			return err
		}

		cancelled, err = s.cascade(ctx, tx, p, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(cancelled))
	for i, c := range cancelled {
		ids[i] = c.ID
	}
	metrics.TradeTransitions.WithLabelValues(OpAccept).Inc()
	metrics.TradesCascaded.Add(float64(len(cancelled)))
	logger.FromContext(ctx).Info(LogMsgProposalAccepted, "proposal_id", p.ID, "user_id", actingUserID, "cancelled", len(ids))

	s.notifier.Notify(ctx, *p.ResponderID, domain.NotifyTradeAccepted, map[string]any{
		notify.PayloadProposalID:    p.ID,
		notify.PayloadCounterpartID: p.ProposerID,
		notify.PayloadCollectibleID: p.OfferedCollectibleID,
		notify.PayloadRequestedID:   *p.RequestedCollectibleID,
	})
	for _, c := range cancelled {
		for _, party := range c.Parties() {
			s.notifier.Notify(ctx, party, domain.NotifyTradeCancelled, map[string]any{
				notify.PayloadProposalID:  c.ID,
				notify.PayloadCancelledBy: p.ID,
			})
		}
	}
	return &AcceptResult{Proposal: *p, Cancelled: ids}, nil
}

// cascade cancels every other open proposal holding a reservation on either
// collectible the accepted proposal traded.
func (s *service) cascade(ctx context.Context, tx repository.TradeTx, accepted *domain.TradeProposal, now time.Time) ([]domain.TradeProposal, error) {
	affected, err := tx.LockProposalsReserving(ctx,
		[]string{accepted.OfferedCollectibleID, *accepted.RequestedCollectibleID}, accepted.ID)
	if err != nil {
		return nil, err
	}
	for i := range affected {
		affected[i].Status = domain.TradeCancelled
		affected[i].UpdatedAt = now
		if err := tx.UpdateProposal(ctx, &affected[i]); err != nil {
			return nil, err
		}
		if err := tx.ReleaseReservations(ctx, affected[i].ID); err != nil {
			return nil, err
		}
	}
	return affected, nil
}

func (s *service) Reject(ctx context.Context, proposalID, actingUserID string) (*domain.TradeProposal, error) {
	p, err := s.close(ctx, OpReject, proposalID, actingUserID, domain.TradeRejected, nil)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgProposalRejected, "proposal_id", p.ID, "user_id", actingUserID)
	if p.ResponderID != nil {
		s.notifier.Notify(ctx, *p.ResponderID, domain.NotifyTradeRejected, map[string]any{
			notify.PayloadProposalID:    p.ID,
			notify.PayloadCounterpartID: p.ProposerID,
		})
	}
	return p, nil
}

func (s *service) Withdraw(ctx context.Context, proposalID, actingUserID string) (*domain.TradeProposal, error) {
	p, err := s.close(ctx, OpWithdraw, proposalID, actingUserID, domain.TradeCancelled, func(p *domain.TradeProposal) error {
		if p.IsCountered() {
			return fmt.Errorf("%w: proposal %s was already countered", domain.ErrInvalidState, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgProposalWithdrawn, "proposal_id", p.ID, "user_id", actingUserID)
	return p, nil
}

// close moves an open proposal to a terminal status on behalf of its proposer
// and frees its reservations. The row is kept for history.
func (s *service) close(ctx context.Context, op, proposalID, actingUserID string, status domain.TradeStatus, check func(*domain.TradeProposal) error) (*domain.TradeProposal, error) {
	if err := requireIDs(proposalID, actingUserID); err != nil {
		return nil, err
	}

	var p *domain.TradeProposal
	err := repository.RunInTx(ctx, op, s.maxRetries, s.repo.BeginTradeTx, func(tx repository.TradeTx) error {
		var err error
		p, err = loadForUpdate(ctx, tx, proposalID)
		if err != nil {
			return err
		}
		if err := requireProposer(p, actingUserID); err != nil {
			return err
		}
		if check != nil {
			if err := check(p); err != nil {
				return err
			}
		}
		p.Status = status
		p.UpdatedAt = s.now().UTC()
		if err := tx.UpdateProposal(ctx, p); err != nil {
			return err
		}
		return tx.ReleaseReservations(ctx, p.ID)
	})
	if err != nil {
		return nil, err
	}
	metrics.TradeTransitions.WithLabelValues(op).Inc()
	return p, nil
}

func (s *service) Get(ctx context.Context, proposalID string) (*domain.TradeProposal, error) {
	p, err := s.repo.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: proposal %s", domain.ErrNotFound, proposalID)
	}
	return p, nil
}

func (s *service) ListOpen(ctx context.Context, userID string) (*domain.TradeListing, error) {
	if err := requireIDs(userID); err != nil {
		return nil, err
	}
	open, err := s.repo.ListOpenProposals(ctx)
	if err != nil {
		return nil, err
	}
	listing := &domain.TradeListing{Mine: []domain.TradeProposal{}, Others: []domain.TradeProposal{}}
	for _, p := range open {
		switch {
		case p.ProposerID == userID || (p.ResponderID != nil && *p.ResponderID == userID):
			listing.Mine = append(listing.Mine, p)
		case !p.IsCountered():
			listing.Others = append(listing.Others, p)
		}
	}
	return listing, nil
}

func (s *service) History(ctx context.Context, userID string) ([]domain.TradeProposal, error) {
	if err := requireIDs(userID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListProposalsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.TradeProposal{}
	}
	return list, nil
}
