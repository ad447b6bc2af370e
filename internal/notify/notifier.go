// Package notify delivers best-effort user notifications. Producers call
// Notify after their transaction commits; delivery happens on a worker pool
// and a failure is logged and counted, never returned.
package notify

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/logger"
	"github.com/osse101/StickerSwap_Go/internal/metrics"
	"github.com/osse101/StickerSwap_Go/internal/worker"
)

// Notifier is the fire-and-forget notification sink consumed by the engine.
type Notifier interface {
	Notify(ctx context.Context, userID string, kind domain.NotificationKind, payload map[string]any)
}

// Sink performs the actual delivery of one notification.
type Sink interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// Dispatcher is a Notifier that hands notifications to a worker pool.
type Dispatcher struct {
	pool *worker.Pool
	sink Sink
	now  func() time.Time
}

// NewDispatcher creates a dispatcher over a started pool
func NewDispatcher(pool *worker.Pool, sink Sink) *Dispatcher {
	return &Dispatcher{pool: pool, sink: sink, now: time.Now}
}

// Notify queues a notification without blocking. A full queue drops it.
func (d *Dispatcher) Notify(ctx context.Context, userID string, kind domain.NotificationKind, payload map[string]any) {
	n := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Payload:   maps.Clone(payload),
		CreatedAt: d.now().UTC(),
	}
	if id, ok := payload[PayloadProposalID].(string); ok && id != "" {
		n.ProposalID = &id
	}

	job := &deliveryJob{sink: d.sink, n: n, requestID: logger.GetRequestID(ctx)}
	if !d.pool.TryEnqueue(job) {
		metrics.NotificationsDropped.WithLabelValues(string(kind)).Inc()
		logger.FromContext(ctx).Warn(LogMsgNotificationDropped, "user_id", userID, "kind", kind)
	}
}

type deliveryJob struct {
	sink      Sink
	n         domain.Notification
	requestID string
}

func (j *deliveryJob) Process(ctx context.Context) error {
	if j.requestID != "" {
		ctx = logger.WithRequestID(ctx, j.requestID)
	}
	if err := j.sink.Deliver(ctx, j.n); err != nil {
		metrics.NotificationsFailed.WithLabelValues(string(j.n.Kind)).Inc()
		return fmt.Errorf("%s: user %s kind %s: %w", LogMsgNotificationFailed, j.n.UserID, j.n.Kind, err)
	}
	return nil
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, string, domain.NotificationKind, map[string]any) {}
