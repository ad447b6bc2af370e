package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

// BeginTradeTx starts a trade unit of work
func (s *Store) BeginTradeTx(ctx context.Context) (repository.TradeTx, error) {
	return s.begin(ctx)
}

// GetProposal returns nil, nil when the proposal does not exist
func (s *Store) GetProposal(ctx context.Context, proposalID string) (*domain.TradeProposal, error) {
	var out *domain.TradeProposal
	err := s.read(ctx, func() error {
		if p, ok := s.proposals[proposalID]; ok {
			out = cloneProposal(p)
		}
		return nil
	})
	return out, err
}

// ListOpenProposals returns every PENDING proposal ordered by creation time
func (s *Store) ListOpenProposals(ctx context.Context) ([]domain.TradeProposal, error) {
	return s.listProposals(ctx, func(p *domain.TradeProposal) bool {
		return p.Status == domain.TradePending
	})
}

// ListProposalsByUser returns proposals where the user is either party
func (s *Store) ListProposalsByUser(ctx context.Context, userID string) ([]domain.TradeProposal, error) {
	return s.listProposals(ctx, func(p *domain.TradeProposal) bool {
		return p.ProposerID == userID || (p.ResponderID != nil && *p.ResponderID == userID)
	})
}

func (s *Store) listProposals(ctx context.Context, keep func(*domain.TradeProposal) bool) ([]domain.TradeProposal, error) {
	var out []domain.TradeProposal
	err := s.read(ctx, func() error {
		for _, p := range s.proposals {
			if keep(p) {
				out = append(out, *cloneProposal(p))
			}
		}
		return nil
	})
	sortProposals(out)
	return out, err
}

func sortProposals(ps []domain.TradeProposal) {
	slices.SortFunc(ps, func(a, b domain.TradeProposal) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
}

func cloneProposal(p *domain.TradeProposal) *domain.TradeProposal {
	c := *p
	if p.ResponderID != nil {
		v := *p.ResponderID
		c.ResponderID = &v
	}
	if p.RequestedCollectibleID != nil {
		v := *p.RequestedCollectibleID
		c.RequestedCollectibleID = &v
	}
	return &c
}

// ---- Trade methods on storeTx ----

// CreateProposal inserts a new proposal
func (t *storeTx) CreateProposal(ctx context.Context, p *domain.TradeProposal) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if _, exists := t.s.proposals[p.ID]; exists {
		return fmt.Errorf("proposal %s already exists", p.ID)
	}
	if err := t.requireCollectible(p.OfferedCollectibleID); err != nil {
		return err
	}
	id := p.ID
	t.s.proposals[id] = cloneProposal(p)
	t.record(func() { delete(t.s.proposals, id) })
	return nil
}

// GetProposalForUpdate returns nil, nil when the proposal does not exist
func (t *storeTx) GetProposalForUpdate(ctx context.Context, proposalID string) (*domain.TradeProposal, error) {
	if err := t.checkOpen(); err != nil {
		return nil, err
	}
	p, ok := t.s.proposals[proposalID]
	if !ok {
		return nil, nil
	}
	return cloneProposal(p), nil
}

// UpdateProposal persists the mutable fields of a proposal
func (t *storeTx) UpdateProposal(ctx context.Context, p *domain.TradeProposal) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	prev, ok := t.s.proposals[p.ID]
	if !ok {
		return fmt.Errorf("%w: proposal %s", domain.ErrNotFound, p.ID)
	}
	if p.RequestedCollectibleID != nil {
		if err := t.requireCollectible(*p.RequestedCollectibleID); err != nil {
			return err
		}
	}
	id := p.ID
	t.record(func() { t.s.proposals[id] = prev })

	next := cloneProposal(prev)
	next.ResponderID = p.ResponderID
	next.RequestedCollectibleID = p.RequestedCollectibleID
	next.Status = p.Status
	next.UpdatedAt = p.UpdatedAt
	t.s.proposals[id] = cloneProposal(next)
	return nil
}

func (t *storeTx) requireCollectible(id string) error {
	if _, ok := t.s.collectibles[id]; !ok {
		return fmt.Errorf("%w: collectible %s", domain.ErrNotFound, id)
	}
	return nil
}

// Reserve binds a collectible-unit to a proposal
func (t *storeTx) Reserve(ctx context.Context, r domain.Reservation) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	k := r.Key()
	if _, taken := t.s.reservations[k]; taken {
		return fmt.Errorf("%w: %s is already promised in another open proposal", domain.ErrConflict, r.CollectibleID)
	}
	t.s.reservations[k] = r
	t.record(func() { delete(t.s.reservations, k) })
	return nil
}

// ReleaseReservations drops every reservation held by the proposal
func (t *storeTx) ReleaseReservations(ctx context.Context, proposalID string) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	for k, r := range t.s.reservations {
		if r.ProposalID != proposalID {
			continue
		}
		saved := r
		t.record(func() { t.s.reservations[saved.Key()] = saved })
		delete(t.s.reservations, k)
	}
	return nil
}

// LockProposalsReserving returns every PENDING proposal other than exclude holding
// a reservation on any of the collectibles, in id order
func (t *storeTx) LockProposalsReserving(ctx context.Context, collectibleIDs []string, exclude string) ([]domain.TradeProposal, error) {
	if err := t.checkOpen(); err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	for _, r := range t.s.reservations {
		if r.ProposalID != exclude && slices.Contains(collectibleIDs, r.CollectibleID) {
			ids[r.ProposalID] = true
		}
	}
	var out []domain.TradeProposal
	for id := range ids {
		if p, ok := t.s.proposals[id]; ok && p.Status == domain.TradePending {
			out = append(out, *cloneProposal(p))
		}
	}
	slices.SortFunc(out, func(a, b domain.TradeProposal) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}
