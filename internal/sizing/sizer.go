package sizing

import (
	"fmt"
	"math"

	"papertrader/internal/ports"
)

// Result holds the outcome of a position size calculation.
type Result struct {
	Quantity      int64   // Maximum whole shares to buy
	RiskAmount    float64 // Money lost if the stop is hit
	RiskPerShare  float64 // Entry price minus stop-loss price
	PositionValue float64 // Quantity * entry price
}

// Size calculates the largest long position for which hitting the stop-loss
// loses at most riskPercent of capital. The model is long-only: the stop
// must sit strictly below the entry price.
//
// Pure and deterministic, no I/O; safe to call concurrently.
func Size(capital, riskPercent, entryPrice, stopLossPrice float64) (*Result, error) {
	inputs := []struct {
		name  string
		value float64
	}{
		{"capital", capital},
		{"riskPercent", riskPercent},
		{"entryPrice", entryPrice},
		{"stopLossPrice", stopLossPrice},
	}
	for _, in := range inputs {
		if math.IsNaN(in.value) || math.IsInf(in.value, 0) {
			return nil, fmt.Errorf("%s must be a finite number: %w", in.name, ports.ErrInvalidInput)
		}
	}
	if entryPrice <= stopLossPrice {
		return nil, fmt.Errorf("entry %.2f is not above stop %.2f: %w", entryPrice, stopLossPrice, ports.ErrInvalidStopPlacement)
	}

	riskAmount := capital * riskPercent / 100
	riskPerShare := entryPrice - stopLossPrice
	quantity := int64(math.Floor(riskAmount / riskPerShare))
	if quantity <= 0 {
		return nil, fmt.Errorf("risk amount %.2f at %.2f per share buys no shares: %w", riskAmount, riskPerShare, ports.ErrDegenerateSize)
	}

	return &Result{
		Quantity:      quantity,
		RiskAmount:    riskAmount,
		RiskPerShare:  riskPerShare,
		PositionValue: float64(quantity) * entryPrice,
	}, nil
}
