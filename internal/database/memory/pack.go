package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

// BeginPackTx starts a pack unit of work
func (s *Store) BeginPackTx(ctx context.Context) (repository.PackTx, error) {
	return s.begin(ctx)
}

// GetPack returns nil, nil when the pack does not exist
func (s *Store) GetPack(ctx context.Context, packID string) (*domain.Pack, error) {
	var out *domain.Pack
	err := s.read(ctx, func() error {
		if p, ok := s.packs[packID]; ok {
			out = clonePack(p)
		}
		return nil
	})
	return out, err
}

// ListPacks lists a user's packs, optionally filtered by opened state
func (s *Store) ListPacks(ctx context.Context, ownerID string, opened *bool) ([]domain.Pack, error) {
	var out []domain.Pack
	err := s.read(ctx, func() error {
		for _, p := range s.packs {
			if p.OwnerID != ownerID || (opened != nil && p.Opened != *opened) {
				continue
			}
			out = append(out, *clonePack(p))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Pack) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, err
}

func clonePack(p *domain.Pack) *domain.Pack {
	c := *p
	c.Contents = slices.Clone(p.Contents)
	if p.OpenedAt != nil {
		at := *p.OpenedAt
		c.OpenedAt = &at
	}
	return &c
}

// ---- Pack methods on storeTx ----

// LockGrantWindow is a no-op: the transaction already holds the store lock.
func (t *storeTx) LockGrantWindow(ctx context.Context, userID string, kind domain.SourceKind) error {
	return t.checkOpen()
}

// CountPacks counts packs of kind created at or after since
func (t *storeTx) CountPacks(ctx context.Context, userID string, kind domain.SourceKind, since *time.Time) (int, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	n := 0
	for _, p := range t.s.packs {
		if p.OwnerID != userID || p.SourceKind != kind {
			continue
		}
		if since != nil && p.CreatedAt.Before(*since) {
			continue
		}
		n++
	}
	return n, nil
}

// CreatePacks stores new packs
func (t *storeTx) CreatePacks(ctx context.Context, packs []domain.Pack) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	for _, p := range packs {
		if _, exists := t.s.packs[p.ID]; exists {
			return fmt.Errorf("pack %s already exists", p.ID)
		}
	}
	for _, p := range packs {
		id := p.ID
		t.s.packs[id] = clonePack(&p)
		t.record(func() { delete(t.s.packs, id) })
	}
	return nil
}

// GetPackForUpdate returns nil, nil when the pack does not exist
func (t *storeTx) GetPackForUpdate(ctx context.Context, packID string) (*domain.Pack, error) {
	if err := t.checkOpen(); err != nil {
		return nil, err
	}
	p, ok := t.s.packs[packID]
	if !ok {
		return nil, nil
	}
	return clonePack(p), nil
}

// MarkPackOpened flips the pack to opened and records what it contained
func (t *storeTx) MarkPackOpened(ctx context.Context, packID string, contents []string, openedAt time.Time) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	p, ok := t.s.packs[packID]
	if !ok || p.Opened {
		return fmt.Errorf("%w: pack %s already opened", domain.ErrInvalidState, packID)
	}
	prev := clonePack(p)
	t.record(func() { t.s.packs[packID] = prev })

	next := clonePack(p)
	next.Opened = true
	next.OpenedAt = &openedAt
	next.Contents = slices.Clone(contents)
	t.s.packs[packID] = next
	return nil
}
