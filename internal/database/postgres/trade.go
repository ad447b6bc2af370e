package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

const (
	proposalColumns = `proposal_id, proposer_id, offered_collectible_id, responder_id,
		requested_collectible_id, status, created_at, updated_at`

	sqlInsertProposal = `
		INSERT INTO trade_proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	sqlGetProposal = `SELECT ` + proposalColumns + ` FROM trade_proposals WHERE proposal_id = $1`

	sqlGetProposalForUpdate = sqlGetProposal + ` FOR UPDATE`

	sqlUpdateProposal = `
		UPDATE trade_proposals
		SET responder_id = $2, requested_collectible_id = $3, status = $4, updated_at = $5
		WHERE proposal_id = $1`

	sqlListOpenProposals = `
		SELECT ` + proposalColumns + ` FROM trade_proposals
		WHERE status = 'PENDING'
		ORDER BY created_at, proposal_id`

	sqlListProposalsByUser = `
		SELECT ` + proposalColumns + ` FROM trade_proposals
		WHERE proposer_id = $1 OR responder_id = $1
		ORDER BY created_at, proposal_id`

	sqlReserve = `
		INSERT INTO trade_reservations (user_id, collectible_id, proposal_id, side)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, collectible_id) DO NOTHING`

	sqlReleaseReservations = `DELETE FROM trade_reservations WHERE proposal_id = $1`

	sqlLockProposalsReserving = `
		SELECT ` + proposalColumns + ` FROM trade_proposals
		WHERE proposal_id IN (
			SELECT proposal_id FROM trade_reservations WHERE collectible_id = ANY($1)
		)
		AND proposal_id <> $2 AND status = 'PENDING'
		ORDER BY proposal_id
		FOR UPDATE`
)

// TradeRepository implements repository.Trade for PostgreSQL
type TradeRepository struct {
	db *pgxpool.Pool
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{db: db}
}

// BeginTradeTx starts a trade unit of work
func (r *TradeRepository) BeginTradeTx(ctx context.Context) (repository.TradeTx, error) {
	return beginTx(ctx, r.db)
}

// GetProposal returns nil, nil when the proposal does not exist
func (r *TradeRepository) GetProposal(ctx context.Context, proposalID string) (*domain.TradeProposal, error) {
	return getProposal(ctx, r.db, sqlGetProposal, proposalID)
}

// ListOpenProposals returns every PENDING proposal
func (r *TradeRepository) ListOpenProposals(ctx context.Context) ([]domain.TradeProposal, error) {
	return listProposals(ctx, r.db, sqlListOpenProposals)
}

// ListProposalsByUser returns proposals where the user is either party
func (r *TradeRepository) ListProposalsByUser(ctx context.Context, userID string) ([]domain.TradeProposal, error) {
	return listProposals(ctx, r.db, sqlListProposalsByUser, userID)
}

type rowsQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listProposals(ctx context.Context, q rowsQuerier, query string, args ...any) ([]domain.TradeProposal, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListProposals)
	}
	proposals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TradeProposal, error) {
		p, err := scanProposal(row)
		if err != nil {
			return domain.TradeProposal{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListProposals)
	}
	return proposals, nil
}

func getProposal(ctx context.Context, q querier, query, proposalID string) (*domain.TradeProposal, error) {
	p, err := scanProposal(q.QueryRow(ctx, query, proposalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err, ErrMsgFailedToGetProposal)
	}
	return p, nil
}

func scanProposal(row pgx.Row) (*domain.TradeProposal, error) {
	var p domain.TradeProposal
	var status string
	err := row.Scan(&p.ID, &p.ProposerID, &p.OfferedCollectibleID, &p.ResponderID,
		&p.RequestedCollectibleID, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = domain.TradeStatus(status)
	return &p, nil
}

// ---- Trade methods on storeTx ----

// CreateProposal inserts a new proposal
func (t *storeTx) CreateProposal(ctx context.Context, p *domain.TradeProposal) error {
	_, err := t.tx.Exec(ctx, sqlInsertProposal, p.ID, p.ProposerID, p.OfferedCollectibleID,
		p.ResponderID, p.RequestedCollectibleID, string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return classify(err, ErrMsgFailedToCreateProposal)
	}
	return nil
}

// GetProposalForUpdate locks the proposal row until the transaction ends
func (t *storeTx) GetProposalForUpdate(ctx context.Context, proposalID string) (*domain.TradeProposal, error) {
	return getProposal(ctx, t.tx, sqlGetProposalForUpdate, proposalID)
}

// UpdateProposal persists the mutable columns of a proposal
func (t *storeTx) UpdateProposal(ctx context.Context, p *domain.TradeProposal) error {
	tag, err := t.tx.Exec(ctx, sqlUpdateProposal, p.ID, p.ResponderID, p.RequestedCollectibleID,
		string(p.Status), p.UpdatedAt)
	if err != nil {
		return classify(err, ErrMsgFailedToUpdateProposal)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: proposal %s", domain.ErrNotFound, p.ID)
	}
	return nil
}

// Reserve uses ON CONFLICT DO NOTHING so a lost race surfaces as ErrConflict
// without aborting the transaction.
func (t *storeTx) Reserve(ctx context.Context, r domain.Reservation) error {
	tag, err := t.tx.Exec(ctx, sqlReserve, r.UserID, r.CollectibleID, r.ProposalID, string(r.Side))
	if err != nil {
		return classify(err, ErrMsgFailedToReserve)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s is already promised in another open proposal", domain.ErrConflict, r.CollectibleID)
	}
	return nil
}

// ReleaseReservations drops every reservation held by the proposal
func (t *storeTx) ReleaseReservations(ctx context.Context, proposalID string) error {
	if _, err := t.tx.Exec(ctx, sqlReleaseReservations, proposalID); err != nil {
		return classify(err, ErrMsgFailedToRelease)
	}
	return nil
}

// LockProposalsReserving finds open proposals through the reservation index and locks them in id order
func (t *storeTx) LockProposalsReserving(ctx context.Context, collectibleIDs []string, exclude string) ([]domain.TradeProposal, error) {
	if len(collectibleIDs) == 0 {
		return nil, nil
	}
	proposals, err := listProposals(ctx, t.tx, sqlLockProposalsReserving, collectibleIDs, exclude)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLockReserving, err)
	}
	return proposals, nil
}
