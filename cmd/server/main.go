package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"studyhall/internal/archive"
	"studyhall/internal/auth"
	"studyhall/internal/cache"
	"studyhall/internal/config"
	"studyhall/internal/content"
	"studyhall/internal/engine"
	"studyhall/internal/record"
	"studyhall/internal/transport/rest"
	"studyhall/internal/transport/ws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()

	// Redis is optional: without it the cumulative leaderboard is off
	// but live sessions work normally.
	var leaderboard cache.Leaderboard
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, leaderboard disabled", zap.Error(err))
			rdb.Close()
			rdb = nil
		} else {
			leaderboard = cache.NewLeaderboard(rdb)
			logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		}
		cancel()
	} else {
		logger.Warn("REDIS_ADDR not set, leaderboard disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Mongo is optional too; without it closed sessions are not
	// archived.
	var archiveRepo archive.Repo
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = mongoClient.Ping(pingCtx, nil)
			cancel()
		}
		if err != nil {
			logger.Warn("mongodb unreachable, archive disabled", zap.Error(err))
		} else {
			archiveRepo = archive.NewRepo(mongoClient, cfg.MongoDatabase)
			defer mongoClient.Disconnect(ctx)
			logger.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
		}
	} else {
		logger.Warn("MONGO_URI not set, archive disabled")
	}

	authSvc := auth.NewService(auth.Config{
		HostUsername: cfg.HostUsername,
		HostPassword: cfg.HostPassword,
		JWTSecret:    cfg.JWTSecret,
	})

	adapter := content.NewClient(content.ClientConfig{
		BaseURL: cfg.ContentBaseURL,
		APIKey:  cfg.ContentAPIKey,
		Model:   cfg.ContentModel,
	}, logger)

	hub := ws.NewHub(logger)
	recorder := record.New(logger, archiveRepo, leaderboard, adapter, hub)

	eng := engine.New(logger, engine.Options{
		IdleThreshold:   cfg.IdleThreshold,
		JanitorInterval: cfg.JanitorInterval,
	}, hub, recorder)
	defer eng.Close()

	router := rest.NewRouter(&rest.Container{
		AuthService: authSvc,
		Engine:      eng,
		Adapter:     adapter,
		Leaderboard: leaderboard,
		Archive:     archiveRepo,
		WSHub:       hub,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
