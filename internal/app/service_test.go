package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrader/config"
	"papertrader/internal/adapters/sqlite"
	"papertrader/internal/domain"
	"papertrader/internal/ledger"
	"papertrader/internal/ports"
	"papertrader/internal/valuation"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// fakeFeed serves canned prices per symbol.
type fakeFeed struct {
	prices map[string]float64
}

func (f *fakeFeed) Quote(ctx context.Context, symbol string) (float64, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return 0, ports.ErrQuoteUnavailable
	}
	return price, nil
}

// setupService wires a dashboard service against a real store in a temp dir.
func setupService(t *testing.T, feed ports.PriceFeed) (*DashboardService, *ledger.Ledger, func()) {
	t.Helper()
	log := &mockLogger{}

	tmpDir, err := os.MkdirTemp("", "papertrader-app-test-*")
	require.NoError(t, err)

	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Logger: log,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	l, err := ledger.Attach(ctx, ledger.Config{UserID: "user-a", Repo: repo, Logger: log})
	require.NoError(t, err)

	v, err := valuation.New(valuation.Config{Feed: feed, Logger: log})
	require.NoError(t, err)

	cfg := &config.Config{UserID: "user-a", RefreshInterval: time.Minute}
	svc, err := NewDashboardService(cfg, log, l, v)
	require.NoError(t, err)

	cleanup := func() {
		cancel()
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return svc, l, cleanup
}

func TestNewDashboardService(t *testing.T) {
	log := &mockLogger{}
	cfg := &config.Config{RefreshInterval: time.Minute}

	_, err := NewDashboardService(nil, log, nil, nil)
	assert.Error(t, err)
	_, err = NewDashboardService(cfg, nil, nil, nil)
	assert.Error(t, err)
}

func TestNewDashboardServiceRejectsZeroInterval(t *testing.T) {
	feed := &fakeFeed{}
	_, l, cleanup := setupService(t, feed)
	defer cleanup()

	v, err := valuation.New(valuation.Config{Feed: feed, Logger: &mockLogger{}})
	require.NoError(t, err)

	cfg := &config.Config{UserID: "user-a", RefreshInterval: 0}
	_, err = NewDashboardService(cfg, &mockLogger{}, l, v)
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	feed := &fakeFeed{prices: map[string]float64{"RELIANCE": 2600, "TCS": 3100}}
	svc, l, cleanup := setupService(t, feed)
	defer cleanup()
	ctx := context.Background()

	assert.Nil(t, svc.LatestSnapshot(), "no snapshot before the first refresh")

	_, err := l.OpenTrade(ctx, "RELIANCE", 10, 2500, domain.Buy)
	require.NoError(t, err)
	id2, err := l.OpenTrade(ctx, "TCS", 5, 3000, domain.Buy)
	require.NoError(t, err)

	svc.Refresh(ctx)

	snap := svc.LatestSnapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Positions, 2)
	assert.Equal(t, 40000.0, snap.TotalInvested)
	assert.Equal(t, 41500.0, snap.TotalCurrentValue)
	assert.Equal(t, 1500.0, snap.TotalUnrealizedPNL)

	// Closing a trade drops it from the valuated set on the next refresh.
	require.NoError(t, l.CloseTrade(ctx, id2, 3100))
	svc.Refresh(ctx)

	snap = svc.LatestSnapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, "RELIANCE", snap.Positions[0].Trade.Symbol)
	assert.Equal(t, 25000.0, snap.TotalInvested)
	assert.Equal(t, 500.0, l.TotalRealizedPNL())
}

func TestRefreshSurvivesFeedFailures(t *testing.T) {
	// Feed knows no symbols at all; refresh must still produce a snapshot.
	svc, l, cleanup := setupService(t, &fakeFeed{})
	defer cleanup()
	ctx := context.Background()

	_, err := l.OpenTrade(ctx, "RELIANCE", 10, 2500, domain.Buy)
	require.NoError(t, err)

	svc.Refresh(ctx)

	snap := svc.LatestSnapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Positions, 1)
	assert.False(t, snap.Positions[0].PriceAvailable)
	assert.Equal(t, 25000.0, snap.TotalInvested)
	assert.Zero(t, snap.TotalCurrentValue)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	svc, _, cleanup := setupService(t, &fakeFeed{})
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}
