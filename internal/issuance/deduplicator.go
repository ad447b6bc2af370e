// Package issuance coalesces concurrent grant attempts per key. The first
// caller for a key runs the operation; callers arriving while it is in flight
// wait for and share its outcome. The in-flight record is cleared when the
// operation finishes, successfully or not.
//
// This only covers one process. Grant operations pair it with a
// transaction-scoped advisory lock in the shared store.
package issuance

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/logger"
)

// Result is what one caller of RunExclusive observes.
type Result struct {
	// Created is the operation's count for the caller that ran it and 0 for
	// callers that joined an in-flight run, so summing Created across every
	// caller counts each grant once.
	Created int
	// Joined reports whether the caller waited on another caller's run.
	Joined bool
}

// Deduplicator is safe for concurrent use. The zero value is ready to use.
type Deduplicator struct {
	group singleflight.Group
}

// New creates a Deduplicator
func New() *Deduplicator {
	return &Deduplicator{}
}

// Key identifies one grant window: user and source kind.
func Key(userID string, kind domain.SourceKind) string {
	return userID + ":" + string(kind)
}

// CancelGrace is how long a caller whose ctx ended keeps waiting for the
// in-flight run. A run that commits within it is still reported to the caller.
var CancelGrace = 500 * time.Millisecond

// RunExclusive runs op unless one is already in flight for key, in which case
// it waits for that one. op runs detached from the caller's cancellation so an
// abandoned wait never aborts a grant other callers share.
//
// When ctx ends first the caller waits up to CancelGrace more. Past that it
// returns ctx.Err() while op may still commit; such a grant is in the store
// but is not counted in any caller's Result.
func (d *Deduplicator) RunExclusive(ctx context.Context, key string, op func(context.Context) (int, error)) (Result, error) {
	var ran atomic.Bool
	ch := d.group.DoChan(key, func() (any, error) {
		ran.Store(true)
		return op(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return d.result(ctx, key, res, ran.Load())
	case <-ctx.Done():
	}

	timer := time.NewTimer(CancelGrace)
	defer timer.Stop()
	select {
	case res := <-ch:
		return d.result(ctx, key, res, ran.Load())
	case <-timer.C:
		logger.FromContext(ctx).Warn("Caller gave up on in-flight grant", "key", key, "error", ctx.Err())
		return Result{}, ctx.Err()
	}
}

func (d *Deduplicator) result(ctx context.Context, key string, res singleflight.Result, ran bool) (Result, error) {
	if res.Err != nil {
		return Result{}, res.Err
	}
	if !ran {
		logger.FromContext(ctx).Debug("Joined in-flight grant", "key", key)
		return Result{Joined: true}, nil
	}
	return Result{Created: res.Val.(int)}, nil
}
