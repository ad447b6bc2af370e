package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

const (
	sqlAdvisoryLock = `SELECT pg_advisory_xact_lock($1)`

	sqlCountPacksSince = `
		SELECT COUNT(*) FROM packs
		WHERE owner_id = $1 AND source_kind = $2 AND created_at >= $3`

	sqlCountPacksEver = `
		SELECT COUNT(*) FROM packs
		WHERE owner_id = $1 AND source_kind = $2`

	packColumns = `pack_id, owner_id, source_kind, opened, created_at, opened_at, contents`

	sqlGetPack = `SELECT ` + packColumns + ` FROM packs WHERE pack_id = $1`

	sqlGetPackForUpdate = sqlGetPack + ` FOR UPDATE`

	sqlListPacks = `
		SELECT ` + packColumns + ` FROM packs
		WHERE owner_id = $1 AND ($2::boolean IS NULL OR opened = $2)
		ORDER BY created_at, pack_id`

	sqlMarkPackOpened = `
		UPDATE packs SET opened = TRUE, opened_at = $2, contents = $3
		WHERE pack_id = $1 AND opened = FALSE`
)

// PackRepository implements repository.Pack for PostgreSQL
type PackRepository struct {
	db *pgxpool.Pool
}

// NewPackRepository creates a new PackRepository
func NewPackRepository(db *pgxpool.Pool) *PackRepository {
	return &PackRepository{db: db}
}

// BeginPackTx starts a pack unit of work
func (r *PackRepository) BeginPackTx(ctx context.Context) (repository.PackTx, error) {
	return beginTx(ctx, r.db)
}

// GetPack returns nil, nil when the pack does not exist
func (r *PackRepository) GetPack(ctx context.Context, packID string) (*domain.Pack, error) {
	return getPack(ctx, r.db, sqlGetPack, packID)
}

// ListPacks lists a user's packs, optionally filtered by opened state
func (r *PackRepository) ListPacks(ctx context.Context, ownerID string, opened *bool) ([]domain.Pack, error) {
	rows, err := r.db.Query(ctx, sqlListPacks, ownerID, opened)
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListPacks)
	}
	packs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Pack, error) {
		p, err := scanPack(row)
		if err != nil {
			return domain.Pack{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, classify(err, ErrMsgFailedToListPacks)
	}
	return packs, nil
}

func getPack(ctx context.Context, q querier, query, packID string) (*domain.Pack, error) {
	p, err := scanPack(q.QueryRow(ctx, query, packID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err, ErrMsgFailedToGetPack)
	}
	return p, nil
}

func scanPack(row pgx.Row) (*domain.Pack, error) {
	var p domain.Pack
	var kind string
	if err := row.Scan(&p.ID, &p.OwnerID, &kind, &p.Opened, &p.CreatedAt, &p.OpenedAt, &p.Contents); err != nil {
		return nil, err
	}
	p.SourceKind = domain.SourceKind(kind)
	if len(p.Contents) == 0 {
		p.Contents = nil
	}
	return &p, nil
}

// ---- Pack methods on storeTx ----

// LockGrantWindow takes a transaction-scoped advisory lock keyed by user and kind.
// Advisory locks work even when no pack row exists yet, unlike SELECT FOR UPDATE.
func (t *storeTx) LockGrantWindow(ctx context.Context, userID string, kind domain.SourceKind) error {
	if _, err := t.tx.Exec(ctx, sqlAdvisoryLock, hashUserKind(userID, kind)); err != nil {
		return classify(err, ErrMsgFailedToLockGrantWindow)
	}
	return nil
}

// CountPacks counts packs of kind created at or after since
func (t *storeTx) CountPacks(ctx context.Context, userID string, kind domain.SourceKind, since *time.Time) (int, error) {
	var n int
	var err error
	if since == nil {
		err = t.tx.QueryRow(ctx, sqlCountPacksEver, userID, string(kind)).Scan(&n)
	} else {
		err = t.tx.QueryRow(ctx, sqlCountPacksSince, userID, string(kind), *since).Scan(&n)
	}
	if err != nil {
		return 0, classify(err, ErrMsgFailedToCountPacks)
	}
	return n, nil
}

// CreatePacks bulk-inserts unopened packs with COPY
func (t *storeTx) CreatePacks(ctx context.Context, packs []domain.Pack) error {
	if len(packs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(packs))
	for _, p := range packs {
		rows = append(rows, []any{p.ID, p.OwnerID, string(p.SourceKind), p.Opened, p.CreatedAt})
	}
	n, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"packs"},
		[]string{"pack_id", "owner_id", "source_kind", "opened", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return classify(err, ErrMsgFailedToCreatePacks)
	}
	if int(n) != len(packs) {
		return fmt.Errorf("%s: inserted %d of %d", ErrMsgFailedToCreatePacks, n, len(packs))
	}
	return nil
}

// GetPackForUpdate locks the pack row until the transaction ends
func (t *storeTx) GetPackForUpdate(ctx context.Context, packID string) (*domain.Pack, error) {
	return getPack(ctx, t.tx, sqlGetPackForUpdate, packID)
}

// MarkPackOpened flips the pack to opened and records what it contained
func (t *storeTx) MarkPackOpened(ctx context.Context, packID string, contents []string, openedAt time.Time) error {
	tag, err := t.tx.Exec(ctx, sqlMarkPackOpened, packID, openedAt, contents)
	if err != nil {
		return classify(err, ErrMsgFailedToMarkPackOpened)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pack %s already opened", domain.ErrInvalidState, packID)
	}
	return nil
}
