package ports

import "context"

// PriceFeed defines the interface for retrieving last-traded prices.
// Implementations apply any venue-specific symbol formatting themselves and
// are subject to external request quotas; callers must treat quota
// exhaustion like any other per-symbol failure.
type PriceFeed interface {
	// Quote returns the last traded price for a ticker symbol.
	Quote(ctx context.Context, symbol string) (float64, error)
}
