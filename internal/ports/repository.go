package ports

import (
	"context"
	"time"

	"papertrader/internal/domain"
)

// TradeSnapshotHandler receives the full trade set for a user after every
// store change. Each call carries a complete result set that replaces the
// previous one; partial updates are never delivered.
type TradeSnapshotHandler func(trades []*domain.Trade)

// TradeRepository defines the interface for the per-user persistent trade store.
type TradeRepository interface {
	// Create saves a new trade for the user and returns its assigned opaque ID.
	Create(ctx context.Context, userID string, trade *domain.Trade) (string, error)
	// MarkClosed sets the close-transition fields (status, exit price, exit
	// date, pnl) on an open trade, all at once. This is the only update the
	// store supports. Returns ErrNotFound if the trade is unknown or already
	// closed.
	MarkClosed(ctx context.Context, userID, tradeID string, exitPrice float64, exitDate time.Time, pnl float64) error
	// FindAll retrieves every trade for the user, ordered by assigned ID.
	FindAll(ctx context.Context, userID string) ([]*domain.Trade, error)
	// FindOpen retrieves only the user's OPEN trades, ordered by assigned ID.
	FindOpen(ctx context.Context, userID string) ([]*domain.Trade, error)
	// TotalRealizedPNL sums pnl over the user's CLOSED trades.
	TotalRealizedPNL(ctx context.Context, userID string) (float64, error)
	// Subscribe registers a handler that is invoked with a fresh full result
	// set after every change to the user's trades, in write order. errHandler
	// (optional) receives failures that occur while producing a snapshot.
	// The returned stop function releases the subscription.
	Subscribe(ctx context.Context, userID string, handler TradeSnapshotHandler, errHandler func(error)) (stop func(), err error)
}
