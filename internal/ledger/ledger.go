package ledger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"papertrader/internal/domain"
	"papertrader/internal/ports"
)

// Ledger owns the lifecycle of one user's simulated trades and keeps derived
// Open/Closed partitions in sync with the persistent store. Every store
// notification replaces the in-memory view wholesale, so readers only ever
// observe complete snapshots.
type Ledger struct {
	userID string
	repo   ports.TradeRepository
	logger ports.Logger
	now    func() time.Time

	mu     sync.RWMutex
	open   []*domain.Trade
	closed []*domain.Trade

	stopOnce sync.Once
	stop     func()
}

// Config holds the dependencies for a Ledger.
type Config struct {
	UserID string
	Repo   ports.TradeRepository
	Logger ports.Logger
	Now    func() time.Time // Defaults to time.Now; injectable for tests
}

// Attach creates a Ledger for the user, subscribes it to the store's change
// stream and seeds the in-memory view with the current trade set. The
// subscription is released by Detach, and in any case when ctx ends.
func Attach(ctx context.Context, cfg Config) (*Ledger, error) {
	if cfg.UserID == "" || cfg.Repo == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Ledger")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	l := &Ledger{
		userID: cfg.UserID,
		repo:   cfg.Repo,
		logger: cfg.Logger,
		now:    now,
	}

	stop, err := cfg.Repo.Subscribe(ctx, cfg.UserID, l.applySnapshot, l.handleStreamError)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to trade stream: %w", err)
	}
	l.stop = stop

	go func() {
		<-ctx.Done()
		l.Detach()
	}()

	// Seed the view so reads work before the first notification arrives.
	trades, err := cfg.Repo.FindAll(ctx, cfg.UserID)
	if err != nil {
		l.Detach()
		return nil, fmt.Errorf("failed to load initial trades: %w", err)
	}
	l.applySnapshot(trades)

	l.logger.Info(ctx, "Ledger attached to trade stream", map[string]interface{}{"userID": cfg.UserID, "trades": len(trades)})
	return l, nil
}

// OpenTrade validates and records a new simulated trade with status OPEN.
// Validation happens before any store request; a rejected trade writes
// nothing. Returns the store-assigned trade ID.
func (l *Ledger) OpenTrade(ctx context.Context, symbol string, quantity int64, entryPrice float64, side domain.TradeType) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("symbol must not be empty: %w", ports.ErrInvalidInput)
	}
	if quantity <= 0 {
		return "", fmt.Errorf("quantity must be positive, got %d: %w", quantity, ports.ErrInvalidInput)
	}
	if math.IsNaN(entryPrice) || math.IsInf(entryPrice, 0) || entryPrice <= 0 {
		return "", fmt.Errorf("entry price must be positive, got %v: %w", entryPrice, ports.ErrInvalidInput)
	}
	if side != domain.Buy && side != domain.Sell {
		return "", fmt.Errorf("unknown trade type %q: %w", side, ports.ErrInvalidInput)
	}

	trade := &domain.Trade{
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: entryPrice,
		Type:       side,
		Status:     domain.StatusOpen,
		EntryDate:  l.now().UTC(),
	}

	id, err := l.repo.Create(ctx, l.userID, trade)
	if err != nil {
		l.logger.Error(ctx, err, "Failed to create trade", map[string]interface{}{"symbol": symbol})
		return "", fmt.Errorf("failed to create trade for %s: %w", symbol, err)
	}

	l.logger.Info(ctx, "Trade opened", map[string]interface{}{
		"tradeID":    id,
		"symbol":     symbol,
		"quantity":   quantity,
		"entryPrice": entryPrice,
		"type":       side,
	})
	return id, nil
}

// CloseTrade books the realized profit for an open trade and requests the
// one-way OPEN -> CLOSED transition from the store. The trade must be OPEN
// in the ledger's current view; closing twice returns ErrNotFound.
//
// PNL is always (exitPrice - entryPrice) * quantity. The recorded trade
// type does not flip the sign for SELL entries.
func (l *Ledger) CloseTrade(ctx context.Context, tradeID string, exitPrice float64) error {
	if math.IsNaN(exitPrice) || math.IsInf(exitPrice, 0) {
		return fmt.Errorf("exit price must be a finite number: %w", ports.ErrInvalidInput)
	}

	l.mu.RLock()
	var target *domain.Trade
	for _, t := range l.open {
		if t.ID == tradeID {
			target = t
			break
		}
	}
	l.mu.RUnlock()
	if target == nil {
		return fmt.Errorf("no open trade with id %q: %w", tradeID, ports.ErrNotFound)
	}

	pnl := (exitPrice - target.EntryPrice) * float64(target.Quantity)
	if err := l.repo.MarkClosed(ctx, l.userID, tradeID, exitPrice, l.now().UTC(), pnl); err != nil {
		l.logger.Error(ctx, err, "Failed to close trade", map[string]interface{}{"tradeID": tradeID})
		return fmt.Errorf("failed to close trade %s: %w", tradeID, err)
	}

	l.logger.Info(ctx, "Trade closed", map[string]interface{}{
		"tradeID":   tradeID,
		"symbol":    target.Symbol,
		"exitPrice": exitPrice,
		"pnl":       pnl,
	})
	return nil
}

// OpenPositions returns the current OPEN partition, ordered by trade ID.
func (l *Ledger) OpenPositions() []*domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Trade, len(l.open))
	copy(out, l.open)
	return out
}

// ClosedTrades returns the current CLOSED partition, ordered by trade ID.
func (l *Ledger) ClosedTrades() []*domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Trade, len(l.closed))
	copy(out, l.closed)
	return out
}

// TotalRealizedPNL sums pnl over the CLOSED partition. Zero when empty.
func (l *Ledger) TotalRealizedPNL() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total float64
	for _, t := range l.closed {
		total += t.PNL
	}
	return total
}

// Detach releases the store subscription. Only the first call takes effect;
// notifications are never delivered to a detached ledger.
func (l *Ledger) Detach() {
	l.stopOnce.Do(func() {
		if l.stop != nil {
			l.stop()
		}
		l.logger.Info(context.Background(), "Ledger detached from trade stream", map[string]interface{}{"userID": l.userID})
	})
}

// applySnapshot re-partitions a full store result set and swaps it in as the
// new view. The swap is atomic per notification.
func (l *Ledger) applySnapshot(trades []*domain.Trade) {
	open := make([]*domain.Trade, 0, len(trades))
	closed := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsOpen() {
			open = append(open, t)
		} else {
			closed = append(closed, t)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })
	sort.Slice(closed, func(i, j int) bool { return closed[i].ID < closed[j].ID })

	l.mu.Lock()
	l.open, l.closed = open, closed
	l.mu.Unlock()
}

func (l *Ledger) handleStreamError(err error) {
	l.logger.Error(context.Background(), err, "Trade stream reported an error", map[string]interface{}{"userID": l.userID})
}
