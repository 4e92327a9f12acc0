package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"papertrader/config"
	"papertrader/internal/analytics"
	"papertrader/internal/domain"
	"papertrader/internal/ledger"
	"papertrader/internal/ports"
	"papertrader/internal/valuation"
)

// DashboardService drives the periodic portfolio valuation loop on top of
// the trade ledger and keeps the most recent snapshot available for display.
type DashboardService struct {
	cfg      *config.Config
	logger   ports.Logger
	ledger   *ledger.Ledger
	valuator *valuation.Valuator

	mu       sync.RWMutex
	snapshot *domain.PortfolioSnapshot
}

// NewDashboardService creates a new dashboard service instance.
func NewDashboardService(cfg *config.Config, log ports.Logger, l *ledger.Ledger, v *valuation.Valuator) (*DashboardService, error) {
	if cfg == nil || log == nil || l == nil || v == nil {
		return nil, fmt.Errorf("missing required dependencies for DashboardService")
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("configuration RefreshInterval must be positive")
	}
	return &DashboardService{
		cfg:      cfg,
		logger:   log,
		ledger:   l,
		valuator: v,
	}, nil
}

// Start runs the refresh loop until the context is cancelled or a shutdown
// signal arrives. Each tick re-valuates the current open positions.
func (s *DashboardService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting dashboard service", map[string]interface{}{"refreshInterval": s.cfg.RefreshInterval.String()})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	s.Refresh(ctx)

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Dashboard service stopped")
			return nil
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh re-valuates the ledger's open positions and replaces the stored
// snapshot. Feed failures only degrade individual rows, so a refresh never
// fails as a whole.
func (s *DashboardService) Refresh(ctx context.Context) {
	positions := s.ledger.OpenPositions()
	snap := s.valuator.Valuate(ctx, positions)

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	stats := analytics.Analyze(s.ledger.ClosedTrades())
	s.logger.Info(ctx, "Portfolio refreshed", map[string]interface{}{
		"openPositions":      len(positions),
		"totalInvested":      snap.TotalInvested,
		"totalCurrentValue":  snap.TotalCurrentValue,
		"totalUnrealizedPnl": snap.TotalUnrealizedPNL,
		"realizedPnl":        s.ledger.TotalRealizedPNL(),
		"closedTrades":       stats.TotalTrades,
		"winRate":            stats.WinRate,
	})
}

// LatestSnapshot returns the most recent valuation, or nil before the first
// refresh completes.
func (s *DashboardService) LatestSnapshot() *domain.PortfolioSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}
