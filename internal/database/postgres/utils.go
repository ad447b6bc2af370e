package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// storeTx is the single transaction type behind every repository Tx interface.
// Ledger, pack and trade methods live in the file of their repository.
type storeTx struct {
	tx pgx.Tx
}

// beginTx starts a new READ COMMITTED transaction. Row locks and conditional
// updates provide the isolation each operation needs.
func beginTx(ctx context.Context, db *pgxpool.Pool) (*storeTx, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, classify(err, ErrMsgFailedToBeginTransaction)
	}
	return &storeTx{tx: tx}, nil
}

// Commit commits the transaction
func (t *storeTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return classify(err, ErrMsgFailedToCommitTransaction)
	}
	return nil
}

// Rollback rolls back the transaction. Rolling back a finished transaction is a no-op.
func (t *storeTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// classify wraps a driver error, mapping serialization failures and deadlocks
// to domain.ErrContention so units of work can retry them.
func classify(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case PgErrorCodeSerializationFailure, PgErrorCodeDeadlockDetected, PgErrorCodeLockNotAvailable:
			return fmt.Errorf("%w: %s: %v", domain.ErrContention, msg, err)
		case PgErrorCodeForeignKeyViolation:
			return fmt.Errorf("%w: %s: %v", domain.ErrNotFound, msg, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// hashUserKind creates a consistent int64 hash from userID + kind for advisory locking
func hashUserKind(userID string, kind domain.SourceKind) int64 {
	h := sha256.Sum256([]byte(userID + HashSeparator + string(kind)))
	// first 8 bytes, MSB masked to keep the key positive
	return int64(binary.BigEndian.Uint64(h[:8]) & HashMaskPositiveInt64)
}
