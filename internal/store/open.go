package store

import (
	"context"
	"fmt"

	"article-catalog/internal/config"

	"go.uber.org/zap"
)

// Open builds the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case config.DriverBadger:
		st, err = NewBadgerStore(cfg.BadgerPath, logger)
	case config.DriverRedis:
		st, err = NewRedisStore(ctx, cfg.RedisAddr)
	case config.DriverPostgres:
		st, err = NewPostgresStore(ctx, cfg.PostgresDSN)
	case config.DriverMongo:
		st, err = NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDBName)
	case config.DriverMemory:
		st = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("article store opened", zap.String("driver", cfg.Driver))
	return st, nil
}
