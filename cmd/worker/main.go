// Package main runs the background job worker that stores queued analytics events.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shoppable-video/backend/config"
	"github.com/shoppable-video/backend/internal/analytics"
	"github.com/shoppable-video/backend/internal/worker"
	"github.com/shoppable-video/backend/pkg/database"
	"github.com/shoppable-video/backend/pkg/logger"
	"github.com/shoppable-video/backend/pkg/queue"
	"github.com/shoppable-video/backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config(cfg.Log))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, database.PoolConfig{
		DSN:             cfg.Database.DSN(),
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	}, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, redis.Config{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: cfg.Redis.DialTimeout,
	}, log)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, log)
	processor := worker.NewAnalyticsProcessor(analytics.NewRepository(pool), jobQueue, log)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	log.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(queue.PollTimeout + 2*time.Second):
	}
	log.Info("worker stopped")
}
