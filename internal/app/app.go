// Package app builds the mapping store, cache and service described by a Config.
package app

import (
	"context"
	"errors"
	"fmt"

	"shorturl/internal/config"
	"shorturl/internal/repository"
	"shorturl/internal/repository/bolt"
	"shorturl/internal/repository/postgres"
	"shorturl/internal/repository/redis"
	"shorturl/internal/repository/sqlite"
	"shorturl/internal/service"
	"shorturl/pkg/logger"
)

// App owns the long-lived resources behind the URL service
type App struct {
	Service *service.URLService

	store repository.MappingStore
	cache *redis.Cache
}

// OpenStore initializes the mapping store selected by cfg.Driver
func OpenStore(ctx context.Context, cfg config.StorageConfig) (repository.MappingStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case config.DriverBolt:
		return bolt.Open(cfg.BoltPath)
	case config.DriverPostgres:
		db := cfg.Postgres
		return postgres.Open(ctx, db.DatabaseDSN(), db.MaxOpenConns, db.MaxIdleConns, db.ConnMaxLifetime)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// New opens the store (and Redis when enabled) and builds the service
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Info("Mapping store ready", "driver", cfg.Storage.Driver)

	a := &App{store: store}

	var cache service.Cache
	if cfg.Redis.Enabled {
		client, err := redis.InitRedis(ctx, cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			store.Close()
			return nil, err
		}
		a.cache = redis.NewCache(client, cfg.Redis.CacheTTL)
		cache = a.cache
		log.Info("Redis cache enabled", "addr", cfg.Redis.RedisAddr(), "ttl", cfg.Redis.CacheTTL)
	}

	a.Service = service.NewURLService(store, cache, log, service.Options{
		IDLength:    cfg.App.ShortCodeLength,
		MaxAttempts: cfg.App.MaxAttempts,
	})

	return a, nil
}

// Close releases the cache client and the store
func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
