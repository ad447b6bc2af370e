package repository

import (
	"context"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// Trade defines the interface for trade proposal persistence
type Trade interface {
	GetProposal(ctx context.Context, proposalID string) (*domain.TradeProposal, error)
	// ListOpenProposals returns every PENDING proposal ordered by creation time.
	ListOpenProposals(ctx context.Context) ([]domain.TradeProposal, error)
	ListProposalsByUser(ctx context.Context, userID string) ([]domain.TradeProposal, error)
	BeginTradeTx(ctx context.Context) (TradeTx, error)
}

// TradeTx defines the interface for trade transactions
type TradeTx interface {
	LedgerTx
	CreateProposal(ctx context.Context, p *domain.TradeProposal) error
	// GetProposalForUpdate returns nil, nil when the proposal does not exist.
	GetProposalForUpdate(ctx context.Context, proposalID string) (*domain.TradeProposal, error)
	UpdateProposal(ctx context.Context, p *domain.TradeProposal) error
	// Reserve binds a collectible-unit to a proposal. It fails with domain.ErrConflict when
	// the unit is already reserved by another open proposal.
	Reserve(ctx context.Context, r domain.Reservation) error
	ReleaseReservations(ctx context.Context, proposalID string) error
	// LockProposalsReserving returns, locked, every PENDING proposal other than exclude
	// holding a reservation on any of the collectibles.
	LockProposalsReserving(ctx context.Context, collectibleIDs []string, exclude string) ([]domain.TradeProposal, error)
}
