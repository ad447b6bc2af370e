package repository

import (
	"context"
	"time"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// Pack defines the interface for pack persistence
type Pack interface {
	GetPack(ctx context.Context, packID string) (*domain.Pack, error)
	ListPacks(ctx context.Context, ownerID string, opened *bool) ([]domain.Pack, error)
	BeginPackTx(ctx context.Context) (PackTx, error)
}

// PackTx defines the interface for pack transactions
type PackTx interface {
	LedgerTx
	// LockGrantWindow serializes grant checks for one user and source kind across
	// every process sharing the store. The lock is released when the transaction ends.
	LockGrantWindow(ctx context.Context, userID string, kind domain.SourceKind) error
	// CountPacks counts the user's packs of kind created at or after since; a nil since counts all.
	CountPacks(ctx context.Context, userID string, kind domain.SourceKind, since *time.Time) (int, error)
	CreatePacks(ctx context.Context, packs []domain.Pack) error
	// GetPackForUpdate returns nil, nil when the pack does not exist.
	GetPackForUpdate(ctx context.Context, packID string) (*domain.Pack, error)
	MarkPackOpened(ctx context.Context, packID string, contents []string, openedAt time.Time) error
}
