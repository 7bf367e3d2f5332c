package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deskshop/internal/config"
	"deskshop/internal/db"
	"deskshop/internal/logger"
	"deskshop/internal/seed"
	"deskshop/internal/server"
)

func main() {
	cfg, cfgErr := config.Load()

	log := logger.NewForEnvironment(cfg.IsProduction(), cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfgErr != nil {
		log.Warn("malformed configuration; using defaults for invalid values", zap.Error(cfgErr))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := db.Connect(ctx, db.Config{
		URL:            cfg.DatabaseURL,
		Name:           cfg.DatabaseName,
		ConnectTimeout: cfg.ConnectTimeout,
	}, log)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	var seedOpts []seed.Option
	if cfg.RedisURL != "" {
		rdb, err := seed.NewRedisClient(ctx, seed.RedisConfig{URL: cfg.RedisURL, DialTimeout: cfg.ConnectTimeout})
		if err != nil {
			log.Warn("redis unavailable; seed lock is process-local", zap.Error(err))
		} else {
			defer rdb.Close()
			seedOpts = append(seedOpts, seed.WithLocker(seed.NewRedisLocker(rdb)))
		}
	}
	seeder := seed.New(store, log.Named("seed"), seedOpts...)

	// seed up front; listings still re-check in case the collection is emptied later
	res := seeder.Ensure(ctx)
	log.Info("startup seed", zap.String("status", string(res.Status)), zap.Int("inserted", res.Inserted))

	h := server.NewHandler(store, seeder, cfg.DatabaseURL != "")
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewRouter(h, log, cfg.AllowedOrigins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
