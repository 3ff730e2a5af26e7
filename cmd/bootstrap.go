package cmd

import (
	"context"
	"fmt"
	"time"

	"ticket-reconciler/core/config"
	"ticket-reconciler/core/database"
	"ticket-reconciler/core/lock"
	"ticket-reconciler/core/logger"
	"ticket-reconciler/core/notify"
	"ticket-reconciler/core/reconcile"
	"ticket-reconciler/core/redis"
	"ticket-reconciler/core/storage"
	"ticket-reconciler/feature/platforms"
	"ticket-reconciler/feature/reconciliation"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services holds everything built from the configuration.
type services struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	storage storage.Client
	service *reconciliation.Service
	rdb     *goredis.Client
}

// bootstrap loads the configuration and wires the reconciliation service.
// Redis and object storage are optional: without them runs use an in-process
// lock, alerts are only logged and reports are not archived.
func bootstrap(ctx context.Context, migrate bool) (*services, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rcfg, err := cfg.Reconcile.ToConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid reconcile settings: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logg.Info("Connected to ledger database", zap.String("driver", db.Dialector.Name()))

	if migrate {
		if err := reconciliation.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	rt := &services{cfg: cfg, logger: logg, db: db}

	var locker lock.Locker = lock.NewLocal()
	var notifier reconcile.Notifier = notify.NewLog(logg)
	if cfg.Redis.Enabled {
		if rdb, err := redis.Connect(cfg.Redis); err != nil {
			logg.Warn("Redis unavailable, using in-process locks", zap.Error(err))
		} else {
			rt.rdb = rdb
			locker = lock.NewRedis(rdb, time.Duration(cfg.Reconcile.LockTTLSeconds)*time.Second)
			notifier = notify.NewRedisStream(rdb, cfg.Redis.AlertStream)
			logg.Info("Connected to redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var archive *reconciliation.Archive
	if client, err := storage.NewClient(cfg.Storage); err != nil {
		logg.Warn("Failed to create storage client, archiving disabled", zap.Error(err))
	} else {
		rt.storage = client
		bctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Storage.TimeoutSeconds)*time.Second)
		err := storage.EnsureBucket(bctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
		cancel()
		if err != nil {
			logg.Warn("Archive bucket unavailable, archiving disabled",
				zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		} else {
			archive = reconciliation.NewArchive(client, cfg.Storage.Bucket, logg)
		}
	}

	opts := []reconcile.Option{
		reconcile.WithLocker(locker),
		reconcile.WithNotifier(notifier),
		reconcile.WithStatsCache(time.Duration(cfg.Reconcile.StatsCacheSeconds) * time.Second),
		reconcile.WithStatsWindow(time.Duration(cfg.Reconcile.StatsWindowDays) * 24 * time.Hour),
		reconcile.WithConcurrency(cfg.Reconcile.Concurrency),
	}
	if archive != nil {
		opts = append(opts, reconcile.WithArchiver(archive))
	}

	store := reconciliation.NewStore(db)
	registry := platforms.NewDefaultRegistry(cfg.Platforms, logg)
	engine := reconcile.NewEngine(store, registry, logg, opts...)
	rt.service = reconciliation.NewService(engine, store, archive, rcfg, logg)

	return rt, nil
}

// Close releases connections opened by bootstrap.
func (rt *services) Close() {
	if rt.rdb != nil {
		_ = rt.rdb.Close()
	}
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rt.logger.Sync()
}
