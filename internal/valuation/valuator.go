package valuation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"papertrader/internal/domain"
	"papertrader/internal/ports"
)

// Valuator computes portfolio snapshots by pricing open positions against a
// live price feed. It reads the positions handed to it and never writes back
// to the ledger or the store.
type Valuator struct {
	feed   ports.PriceFeed
	logger ports.Logger
	now    func() time.Time
}

// Config holds the dependencies for a Valuator.
type Config struct {
	Feed   ports.PriceFeed
	Logger ports.Logger
	Now    func() time.Time // Defaults to time.Now; injectable for tests
}

// New creates a portfolio valuator.
func New(cfg Config) (*Valuator, error) {
	if cfg.Feed == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Valuator")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Valuator{feed: cfg.Feed, logger: cfg.Logger, now: now}, nil
}

// Valuate requests a live price for every open position concurrently, waits
// for all requests to settle and aggregates the totals. Feed failures are
// isolated per position: a position whose quote cannot be fetched is marked
// unavailable and contributes zero to TotalCurrentValue, while the others
// are valued normally. TotalInvested covers all positions regardless.
//
// Idempotent; safe to re-invoke on a timer or on every ledger update.
func (v *Valuator) Valuate(ctx context.Context, positions []*domain.Trade) *domain.PortfolioSnapshot {
	snapshot := &domain.PortfolioSnapshot{
		Positions: make([]domain.ValuedPosition, len(positions)),
		AsOf:      v.now().UTC(),
	}

	var wg sync.WaitGroup
	for i, pos := range positions {
		wg.Add(1)
		go func(i int, pos *domain.Trade) {
			defer wg.Done()
			vp := domain.ValuedPosition{Trade: pos}
			price, err := v.feed.Quote(ctx, pos.Symbol)
			if err != nil {
				v.logger.Warn(ctx, "Quote unavailable, valuing position without live data", map[string]interface{}{
					"symbol": pos.Symbol,
					"error":  err.Error(),
				})
			} else {
				vp.LivePrice = price
				vp.CurrentValue = price * float64(pos.Quantity)
				vp.UnrealizedPNL = (price - pos.EntryPrice) * float64(pos.Quantity)
				vp.PriceAvailable = true
			}
			snapshot.Positions[i] = vp
		}(i, pos)
	}
	wg.Wait()

	for i := range snapshot.Positions {
		vp := &snapshot.Positions[i]
		snapshot.TotalInvested += vp.Trade.Invested()
		if vp.PriceAvailable {
			snapshot.TotalCurrentValue += vp.CurrentValue
		}
	}
	snapshot.TotalUnrealizedPNL = snapshot.TotalCurrentValue - snapshot.TotalInvested

	return snapshot
}
