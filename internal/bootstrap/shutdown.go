package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/StickerSwap_Go/internal/server"
)

// GracefulShutdown stops accepting requests, drains queued notifications and
// then closes the storage connections.
func GracefulShutdown(ctx context.Context, srv *server.Server, app *App) {
	slog.Info(LogMsgShuttingDownServer)

	if err := srv.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedStop, "error", err)
	}

	app.Scheduler.Stop()
	if err := app.NotifyPool.Stop(ctx); err != nil {
		slog.Warn(LogMsgNotifierDrainFailed, "error", err)
	}

	if app.redisStore != nil {
		if err := app.redisStore.Close(); err != nil {
			slog.Warn(LogMsgCloseFailed, "resource", ReadinessRedis, "error", err)
		}
	}
	app.repos.Close()

	slog.Info(LogMsgServerStopped)
}
