package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/wealth_tracker/config"
	"github.com/KotFed0t/wealth_tracker/data"
	redisCache "github.com/KotFed0t/wealth_tracker/data/cache"
	"github.com/KotFed0t/wealth_tracker/data/repository/memory"
	"github.com/KotFed0t/wealth_tracker/data/repository/postgres"
	"github.com/KotFed0t/wealth_tracker/internal/cache"
	"github.com/KotFed0t/wealth_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/wealth_tracker/internal/externalApi/yahooApi"
	"github.com/KotFed0t/wealth_tracker/internal/marketdata"
	"github.com/KotFed0t/wealth_tracker/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/wealth_tracker/internal/scheduler"
	"github.com/KotFed0t/wealth_tracker/internal/service/portfolioService"
	"github.com/KotFed0t/wealth_tracker/internal/tgbot"
	"github.com/KotFed0t/wealth_tracker/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var repo portfolioService.Repository
	if cfg.Storage.InMemory {
		slog.Warn("using in-memory ledger, transactions are lost on restart")
		repo = memory.NewMemory()
	} else {
		pgClient, err := data.NewPostgresClient(cfg)
		if err != nil {
			fatal("postgres init failed", err)
		}
		defer pgClient.Close()
		repo = postgres.NewPostgres(pgClient)
	}

	var store cache.Store
	if cfg.Redis.Enabled {
		redisClient, err := data.NewRedisClient(cfg)
		if err != nil {
			fatal("redis init failed", err)
		}
		defer redisClient.Close()
		store = redisCache.NewRedisCache(redisClient)
	} else {
		store = cache.NewMemory(cache.SystemClock)
	}

	gateway := marketdata.New(cfg, yahooApi.New(cfg), store)

	var cloudStorage portfolioService.CloudStorage
	if cfg.GoogleDrive.Enabled() {
		drive, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			fatal("google drive init failed", err)
		}
		cloudStorage = drive
	}

	portfolioSrv := portfolioService.New(cfg, repo, gateway, store, xslsxGenerator.New(), cloudStorage, nil)

	sched, err := scheduler.New()
	if err != nil {
		fatal("scheduler init failed", err)
	}
	if err = sched.NewIntervalJob("warm market cache", portfolioSrv.WarmMarketCache, cfg.Jobs.WarmCacheInterval, true); err != nil {
		fatal("scheduler job failed", err)
	}
	if cloudStorage != nil {
		if err = sched.NewIntervalJob("cleanup drive reports", portfolioSrv.CleanupReports, cfg.Jobs.CleanupDriveInterval, false); err != nil {
			fatal("scheduler job failed", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(cfg, portfolioSrv)

	tgBot, err := tgbot.New(cfg, tgController)
	if err != nil {
		fatal("tgbot init failed", err)
	}
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.String("err", err.Error()))
	os.Exit(1)
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
