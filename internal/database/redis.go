package database

import (
	"context"
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 5 * time.Second

// ConnectRedis opens the rate-limit counter store.
func ConnectRedis(cfg config.RedisCfg, logger *zap.SugaredLogger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Errorf("redis ping failed: %v", err)
		return nil, err
	}

	logger.Infow("redis connected", "addr", cfg.Addr)
	return rdb, nil
}
