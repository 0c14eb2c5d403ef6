package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/commerce-kit/internal/adapter/handler"
	"github.com/rl1809/commerce-kit/internal/adapter/storage"
	"github.com/rl1809/commerce-kit/internal/config"
	"github.com/rl1809/commerce-kit/internal/core/service"
	"github.com/rl1809/commerce-kit/internal/port"
)

// App is the wired service graph shared by the server and Lambda binaries.
type App struct {
	API *handler.API

	db  *sql.DB
	rdb *redis.Client
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	store, err := a.openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var cache port.CacheRepository
	if cfg.RedisAddr != "" {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr)
		cache = storage.NewRedisAdapter(a.rdb, cfg.IdempotencyTTL, cfg.CacheTTL)
	} else {
		logger.Info("redis disabled, idempotency keys and status cache are off")
	}

	opts := service.Options{TxTimeout: cfg.TxTimeout, AllowNegativeStock: cfg.AllowNegativeStock}
	a.API = handler.NewAPI(
		service.NewFulfillmentService(store, cache, opts, logger),
		service.NewCatalogService(store, opts, logger),
		logger,
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.DatabaseRepository, error) {
	if cfg.StoreDriver == "memory" {
		store := storage.NewMemoryAdapter()
		store.SeedDemoData()
		logger.Warn("running on the in-memory store with demo data")
		return store, nil
	}

	db, dialect, err := storage.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, storage.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect store: %w", err)
	}
	a.db = db
	logger.Info("connected to store", "driver", cfg.StoreDriver, "dialect", dialect.String())

	store := storage.NewSQLAdapter(db, dialect)
	if cfg.DBMigrate {
		if err := store.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		logger.Info("schema migrated")
	}
	return store, nil
}

func (a *App) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
