package main

import (
	"flag"
	"fmt"
	"log"

	"papertrader/internal/sizing"
)

// Standalone risk-based position size calculator. Runs independently of the
// ledger and the dashboard loop.
func main() {
	capital := flag.Float64("capital", 0, "account capital")
	risk := flag.Float64("risk", 1.0, "risk per trade as a percentage of capital")
	entry := flag.Float64("entry", 0, "entry price")
	stop := flag.Float64("stop", 0, "stop-loss price (must be below entry)")
	flag.Parse()

	result, err := sizing.Size(*capital, *risk, *entry, *stop)
	if err != nil {
		log.Fatalf("position sizing failed: %v", err)
	}

	fmt.Printf("Maximum shares to buy: %d\n", result.Quantity)
	fmt.Printf("Position value:        %.2f\n", result.PositionValue)
	fmt.Printf("Money at risk:         %.2f (%.2f per share)\n", result.RiskAmount, result.RiskPerShare)
}
