// Package main runs the shoppable video HTTP server: catalog and analytics API,
// the embed player WebSocket gateway and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoppable-video/backend/config"
	"github.com/shoppable-video/backend/internal/analytics"
	"github.com/shoppable-video/backend/internal/catalog"
	"github.com/shoppable-video/backend/internal/geoip"
	"github.com/shoppable-video/backend/internal/metrics"
	"github.com/shoppable-video/backend/internal/middleware"
	"github.com/shoppable-video/backend/internal/realtime"
	"github.com/shoppable-video/backend/internal/worker"
	"github.com/shoppable-video/backend/pkg/database"
	"github.com/shoppable-video/backend/pkg/logger"
	"github.com/shoppable-video/backend/pkg/queue"
	"github.com/shoppable-video/backend/pkg/redis"
	"github.com/shoppable-video/backend/pkg/response"
	"github.com/shoppable-video/backend/pkg/storage"
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

	if err := database.Migrate(ctx, pool, log); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

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

	var media catalog.ObjectResolver
	if cfg.AWS.Region != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			MediaBucket:          cfg.AWS.MediaBucket,
			PublicRead:           cfg.AWS.MediaPublicRead,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, log)
		if err != nil {
			log.Warn("s3 disabled", zap.Error(err))
		} else {
			media = s3Client
		}
	}

	geo := geoip.New(cfg.GeoIP.DBPath, log)
	defer geo.Close()

	// Catalog (read-only, Redis cached)
	catalogStore := catalog.NewCachedStore(catalog.NewRepository(pool), rdb.Client, cfg.Catalog.CacheTTL, log)
	catalogHandler := catalog.NewHandler(catalogStore, media, cfg.Server.BaseURL, log)

	// Analytics ingest; storage happens in the queue processor
	jobQueue := queue.NewQueue(rdb.Client, log)
	eventRepo := analytics.NewRepository(pool)
	analyticsHandler := analytics.NewHandler(jobQueue, eventRepo, catalogStore, geo, log)
	processor := worker.NewAnalyticsProcessor(eventRepo, jobQueue, log)

	// Embed player sessions
	hub := realtime.NewHub(log)
	gateway := realtime.NewGateway(hub, realtime.GatewayConfig{
		AllowedAPIURLs:   cfg.Player.AllowedAPIURLs,
		FetchTimeout:     cfg.Player.FetchTimeout,
		AnalyticsTimeout: cfg.Player.AnalyticsTimeout,
		EndOfVideoTail:   cfg.Player.EndOfVideoTail,
	}, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(log, "/health", "/metrics"))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok", "sessions": hub.Count()}) })
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	catalogHandler.RegisterRoutes(api)
	analyticsHandler.RegisterRoutes(api)

	router.GET("/embed/ws", realtime.ServeWs(gateway, log))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go processor.Run(workerCtx)
	log.Info("analytics worker started")

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Error("player sessions shutdown", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
