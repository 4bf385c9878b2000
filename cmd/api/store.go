package main

import (
	"context"
	"fmt"

	"github.com/gestfood/digital-menu/api/controllers"
	"github.com/gestfood/digital-menu/pkg/config"
	"github.com/gestfood/digital-menu/pkg/db"
	"github.com/gestfood/digital-menu/pkg/kvstore"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/migrate"
	"github.com/gestfood/digital-menu/pkg/redis"
)

// localStore is the persistence backend selected by GESTFOOD_STORE_DRIVER.
type localStore struct {
	kv     kvstore.Store
	pinger controllers.Pinger
	close  func() error
}

func openStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*localStore, error) {
	ctx = logg.WithField(ctx, "store_driver", cfg.Store.Driver)

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logg.Warn(ctx, "memory store selected, state will not survive restarts")
		return &localStore{kv: kvstore.NewMemory(), close: func() error { return nil }}, nil

	case config.StoreDriverSQLite, config.StoreDriverPostgres:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			_ = dbClient.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		kv, err := kvstore.NewSQL(dbClient.DB(), cfg.Device.ID)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		return &localStore{kv: kv, pinger: dbClient, close: dbClient.Close}, nil

	case config.StoreDriverRedis:
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		kv, err := kvstore.NewRedis(redisClient, cfg.Device.ID)
		if err != nil {
			_ = redisClient.Close()
			return nil, err
		}
		return &localStore{kv: kv, pinger: redisClient, close: redisClient.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
