// Package main is the entry point for the TrackIQ background worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trackiq/internal/app"
	"trackiq/internal/config"
	"trackiq/internal/infrastructure/lock"
	"trackiq/internal/infrastructure/notify"
	"trackiq/internal/scheduler"
	"trackiq/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "path to an env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		Service:     "trackiq-worker",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx := context.Background()
	log.Info("starting trackiq worker")

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	// Without Redis every replica scans; with it one replica per tick does.
	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisURL != "" {
		rl, err := lock.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalw("invalid REDIS_URL", "error", err)
		}
		if err := rl.Ping(ctx); err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer rl.Close()
		locker = rl
		log.Info("redis lock enabled")
	}

	var notifier scheduler.Notifier
	if cfg.LowStockWebhook != "" {
		notifier = notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:        cfg.LowStockWebhook,
			RetryCount: 2,
			Secret:     cfg.LowStockSecret,
		})
	} else {
		log.Warn("LOW_STOCK_WEBHOOK_URL is not set; low-stock alerts will only be logged")
	}

	sched := scheduler.New(scheduler.Config{LowStockSpec: cfg.LowStockCron},
		a.Services.Reports, notifier, locker, log)
	if err := sched.Start(); err != nil {
		log.Fatalw("failed to start scheduler", "error", err)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	sched.Stop(stopCtx)

	log.Info("worker stopped")
}
