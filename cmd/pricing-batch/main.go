package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/partsdesk/partpricer/internal/batch"
	"github.com/partsdesk/partpricer/internal/catalog"
	"github.com/partsdesk/partpricer/internal/config"
	"github.com/partsdesk/partpricer/internal/database"
	"github.com/partsdesk/partpricer/internal/events"
	"github.com/partsdesk/partpricer/internal/scraper"
)

// pricing-batch runs one pass over all items due a price check and exits.
// Schedule it externally (cron or similar); it does not loop.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	client := catalog.NewHTTPClient(cfg.Catalog.HTTPTimeout)
	fetcher := catalog.NewFetcher(client, cfg.Catalog.BaseURL, cfg.Catalog.UserAgent, logger)
	service := scraper.NewService(fetcher, logger, &scraper.Options{
		PageDelay: cfg.Catalog.PageDelay,
	})

	runner := batch.NewRunner(
		service,
		database.NewItemStore(db),
		events.NewPublisher(redisClient, cfg.Redis.Stream, logger),
		cfg.Batch.ItemDelay,
		cfg.Batch.MaxAge,
		cfg.Batch.BatchSize,
		logger,
	)

	stats, err := runner.Run(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("batch run complete",
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed)
}
