package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/StickerSwap_Go/internal/catalog"
	"github.com/osse101/StickerSwap_Go/internal/config"
	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/handler"
	"github.com/osse101/StickerSwap_Go/internal/issuance"
	"github.com/osse101/StickerSwap_Go/internal/ledger"
	"github.com/osse101/StickerSwap_Go/internal/notify"
	"github.com/osse101/StickerSwap_Go/internal/pack"
	"github.com/osse101/StickerSwap_Go/internal/packgen"
	"github.com/osse101/StickerSwap_Go/internal/purchase"
	"github.com/osse101/StickerSwap_Go/internal/scheduler"
	"github.com/osse101/StickerSwap_Go/internal/server"
	"github.com/osse101/StickerSwap_Go/internal/trade"
	"github.com/osse101/StickerSwap_Go/internal/worker"
)

// App is the wired application: the HTTP services plus everything that has
// to be released on shutdown.
type App struct {
	Services   server.Services
	Readiness  map[string]handler.Pinger
	NotifyPool *worker.Pool
	Scheduler  *scheduler.Scheduler

	repos      *Repositories
	redisStore *purchase.RedisStore
}

// InitializeServices builds every service over the given repositories. The
// background pool is started before it is returned; it delivers notifications
// and runs the catalog refresh.
func InitializeServices(ctx context.Context, cfg *config.Config, repos *Repositories) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	weights, err := packgen.ParseWeights(cfg.RarityWeights)
	if err != nil {
		return nil, err
	}

	notifyPool := worker.NewPool(cfg.NotifyWorkers, cfg.NotifyQueueSize)
	notifyPool.Start()
	inbox := notify.NewInbox(repos.Notification)
	notifier := notify.NewDispatcher(notifyPool, inbox)

	catalogSvc := catalog.NewService(repos.Catalog, cfg.CatalogCacheTTL)
	ledgerSvc := ledger.NewService(repos.Inventory, catalogSvc, cfg.TxMaxRetries)
	packSvc := pack.NewService(repos.Pack, packgen.NewService(catalogSvc), issuance.New(), notifier, pack.Config{
		InitialPackCount: cfg.InitialPackCount,
		DailyPackCount:   cfg.DailyPackCount,
		CardsPerPack:     cfg.CardsPerPack,
		Weights:          weights,
		Location:         loc,
		MaxRetries:       cfg.TxMaxRetries,
	})
	tradeSvc := trade.NewService(repos.Trade, notifier, cfg.TxMaxRetries)

	sched := scheduler.New(notifyPool)
	if cfg.CatalogCacheTTL > 0 {
		sched.Schedule(JobCatalogRefresh, cfg.CatalogCacheTTL, catalog.NewRefreshJob(catalogSvc))
	}

	app := &App{
		NotifyPool: notifyPool,
		Scheduler:  sched,
		repos:      repos,
		Readiness:  map[string]handler.Pinger{ReadinessDatabase: repos.Health},
	}

	var idempotency purchase.IdempotencyStore
	if cfg.UsesRedis() {
		rs, err := purchase.NewRedisStore(ctx, purchase.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.PurchaseIdempotencyTTL,
		})
		if err != nil {
			sched.Stop()
			_ = notifyPool.Stop(ctx)
			return nil, err
		}
		app.redisStore = rs
		app.Readiness[ReadinessRedis] = rs
		idempotency = rs
		slog.Info(LogMsgIdempotencyBackend, "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		idempotency = purchase.NewMemoryStore(purchase.DefaultMemoryStoreSize, cfg.PurchaseIdempotencyTTL)
		slog.Info(LogMsgIdempotencyBackend, "backend", "memory")
	}

	app.Services = server.Services{
		Catalog:   catalogSvc,
		Ledger:    ledgerSvc,
		Packs:     packSvc,
		Trades:    tradeSvc,
		Inbox:     inbox,
		Purchases: purchase.NewService(idempotency, packSvc, ledgerSvc, catalogSvc),
	}
	return app, nil
}
