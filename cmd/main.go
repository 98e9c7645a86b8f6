package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/finank/carteira_bot/config"
	"github.com/finank/carteira_bot/data"
	"github.com/finank/carteira_bot/data/cache"
	"github.com/finank/carteira_bot/data/repository/csvledger"
	"github.com/finank/carteira_bot/data/session"
	"github.com/finank/carteira_bot/internal/externalApi/quoteApi/yahooApi"
	"github.com/finank/carteira_bot/internal/externalApi/treasuryApi"
	"github.com/finank/carteira_bot/internal/reportGenerator/xlsxGenerator"
	"github.com/finank/carteira_bot/internal/scheduler"
	"github.com/finank/carteira_bot/internal/service/portfolioService"
	"github.com/finank/carteira_bot/internal/tgbot"
	"github.com/finank/carteira_bot/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ledger := csvledger.New(cfg)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	yahooApiClient := yahooApi.New(cfg)
	treasuryApiClient := treasuryApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	portfolioSrv := portfolioService.New(ledger, redisCache, yahooApiClient, treasuryApiClient, reportGenerator)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh bond prices", portfolioSrv.RefreshBondPrices, cfg.Jobs.RefreshBondPricesInterval, true)
	sched.NewIntervalJob("warm quote cache", portfolioSrv.WarmQuoteCache, cfg.Jobs.WarmQuoteCacheInterval, false)
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(portfolioSrv, redisSession)

	tgBot := tgbot.New(cfg, tgController, redisSession)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
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
