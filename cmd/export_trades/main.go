package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"papertrader/internal/adapters/logger"
	"papertrader/internal/adapters/sqlite"
	"papertrader/internal/domain"
	"papertrader/internal/utils"
)

// Dumps a user's closed-trade history straight from the trade store to CSV.
func main() {
	dbPath := flag.String("db", "./data/papertrader.db", "path to the trade store database")
	userID := flag.String("user", "", "user id whose trades to export")
	out := flag.String("out", "trade_history.csv", "output CSV file")
	flag.Parse()

	if *userID == "" {
		log.Fatal("missing required flag: -user")
	}

	appLogger := logger.NewStdLogger(logger.LevelWarn)
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: *dbPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("failed to open trade store: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	trades, err := repo.FindAll(ctx, *userID)
	if err != nil {
		log.Fatalf("failed to load trades: %v", err)
	}

	closed := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if !t.IsOpen() {
			closed = append(closed, t)
		}
	}

	total, err := repo.TotalRealizedPNL(ctx, *userID)
	if err != nil {
		log.Fatalf("failed to sum realized P/L: %v", err)
	}

	if err := utils.WriteTradesToCSV(closed, *out); err != nil {
		log.Fatalf("failed to write CSV: %v", err)
	}

	fmt.Printf("Exported %d closed trades (total realized P/L %.2f) to %s\n", len(closed), total, *out)
}
