package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds Redis connection settings.
type Config struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int // 0 keeps the go-redis default
	DialTimeout time.Duration
}

// Client wraps the go-redis client shared by the catalog cache and the job queue.
type Client struct {
	*redis.Client
}

func (c Config) options() *redis.Options {
	opts := &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
	}
	if c.DialTimeout > 0 {
		opts.DialTimeout = c.DialTimeout
	}
	return opts
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(cfg.options())

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis client connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &Client{Client: rdb}, nil
}
