// Package catalog is the read-only collectible feed. Snapshots are cached
// in-process and concurrent misses share a single load.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/logger"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

// Service defines the interface for catalog reads
type Service interface {
	// ListCollectibles returns the catalog, restricted to one tier when tier is non-nil.
	ListCollectibles(ctx context.Context, tier *domain.Rarity) ([]domain.Collectible, error)
	// GetCollectibles resolves ids to records. Unknown ids fail with domain.ErrNotFound.
	GetCollectibles(ctx context.Context, ids []string) (map[string]domain.Collectible, error)
	// Invalidate drops the cached snapshot.
	Invalidate()
}

type service struct {
	repo  repository.Catalog
	cache *snapshotCache
	group singleflight.Group
}

// NewService creates a new catalog service. A ttl <= 0 uses DefaultCacheTTL.
func NewService(repo repository.Catalog, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &service{
		repo:  repo,
		cache: newSnapshotCache(ttl),
	}
}

func (s *service) ListCollectibles(ctx context.Context, tier *domain.Rarity) ([]domain.Collectible, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return slices.Clone(all), nil
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: unknown rarity %q", domain.ErrInvalidInput, *tier)
	}
	var out []domain.Collectible
	for _, c := range all {
		if c.Rarity == *tier {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *service) GetCollectibles(ctx context.Context, ids []string) (map[string]domain.Collectible, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Collectible, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	out := make(map[string]domain.Collectible, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: collectible %s", domain.ErrNotFound, id)
		}
		out[id] = c
	}
	return out, nil
}

func (s *service) Invalidate() {
	s.cache.Clear()
}

// snapshot returns the cached catalog, loading it once for all concurrent misses.
// The shared load runs detached from any one caller's cancellation; a caller
// whose ctx ends stops waiting without failing the others.
func (s *service) snapshot(ctx context.Context) ([]domain.Collectible, error) {
	if cached, ok := s.cache.Get(); ok {
		return cached, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(cacheKeyAll, func() (any, error) {
		all, err := s.repo.ListCollectibles(loadCtx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(all)
		logger.FromContext(loadCtx).Debug("Catalog snapshot loaded", "collectibles", len(all))
		return all, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", res.Err)
		}
		return res.Val.([]domain.Collectible), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RefreshJob reloads the catalog snapshot so reads after a catalog update
// do not wait out the cache TTL.
type RefreshJob struct {
	svc Service
}

// NewRefreshJob creates a job for the scheduler
func NewRefreshJob(svc Service) *RefreshJob {
	return &RefreshJob{svc: svc}
}

// Process drops the cached snapshot and loads a fresh one
func (j *RefreshJob) Process(ctx context.Context) error {
	j.svc.Invalidate()
	all, err := j.svc.ListCollectibles(ctx, nil)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug(LogMsgCatalogRefreshed, "collectibles", len(all))
	return nil
}
