package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"papertrader/config"
	"papertrader/internal/adapters/alphavantage"
	"papertrader/internal/adapters/logger"
	"papertrader/internal/adapters/sqlite"
	"papertrader/internal/app"
	"papertrader/internal/ledger"
	"papertrader/internal/valuation"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Trade Store (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trade store")
		log.Fatalf("FATAL: Failed to initialize trade store: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing trade store")
		}
	}()

	// 4. Initialize Price Feed (Alpha Vantage Adapter)
	feed, err := alphavantage.New(alphavantage.Config{
		APIKey:      cfg.FeedAPIKey,
		BaseURL:     cfg.FeedBaseURL,
		VenueSuffix: cfg.VenueSuffix,
		Timeout:     cfg.QuoteTimeout,
		DailyQuota:  cfg.DailyQuoteQuota,
		Logger:      appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize price feed client")
		log.Fatalf("FATAL: Failed to initialize price feed client: %v", err)
	}

	ctx := context.Background()

	// 5. Attach the Trade Ledger for this user
	book, err := ledger.Attach(ctx, ledger.Config{
		UserID: cfg.UserID,
		Repo:   repo,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to attach trade ledger")
		log.Fatalf("FATAL: Failed to attach trade ledger: %v", err)
	}
	defer book.Detach()

	// 6. Initialize the Portfolio Valuator
	valuator, err := valuation.New(valuation.Config{
		Feed:   feed,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize portfolio valuator")
		log.Fatalf("FATAL: Failed to initialize portfolio valuator: %v", err)
	}

	// 7. Initialize and Start the Dashboard Service
	dashboard, err := app.NewDashboardService(cfg, appLogger, book, valuator)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize dashboard service")
		log.Fatalf("FATAL: Failed to initialize dashboard service: %v", err)
	}

	if err := dashboard.Start(ctx); err != nil {
		appLogger.Error(ctx, err, "Dashboard service exited with error")
		log.Fatalf("FATAL: Dashboard service exited with error: %v", err)
	}

	appLogger.Info(ctx, "Application finished gracefully.")
}
