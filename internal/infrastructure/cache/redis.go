package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-system/internal/config"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 10 * time.Second

var ErrRedisAddrMissing = errors.New("redis address (addr) is not configured")

// NewRedisClient connects and pings. The caller owns the returned client.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrRedisAddrMissing
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis client connected", "addr", cfg.Addr, "db", cfg.DB)
	return rdb, nil
}

func Close(rdb *redis.Client, logger *slog.Logger) {
	if rdb == nil {
		logger.Info("Redis client was not initialized, skipping close.")
		return
	}
	if err := rdb.Close(); err != nil {
		logger.Error("Failed to close Redis client gracefully", "error", err)
		return
	}
	logger.Info("Redis client closed.")
}
