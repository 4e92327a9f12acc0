package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"papertrader/internal/domain"
	"papertrader/internal/ports"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.TradeRepository using SQLite. It doubles as
// the store's change-notification hub: after every successful write it
// pushes a fresh full result set to every subscriber of the affected user,
// in write order.
type Repository struct {
	db     *sql.DB
	logger ports.Logger

	// Hub state. The mutex also serializes notification dispatch so that
	// snapshots reach subscribers in the order the writes happened.
	mu      sync.Mutex
	nextSub int64
	subs    map[int64]*subscription
}

type subscription struct {
	userID     string
	handler    ports.TradeSnapshotHandler
	errHandler func(error)
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/papertrader.db" // Default path
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally, but the Go driver benefits from limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{
		db:     db,
		logger: cfg.Logger,
		subs:   make(map[int64]*subscription),
	}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite trade store ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		entry_price REAL NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		entry_date TIMESTAMP NOT NULL,
		exit_price REAL DEFAULT NULL,
		exit_date TIMESTAMP DEFAULT NULL,
		pnl REAL DEFAULT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_user_status ON trades (user_id, status);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite trade store")
		return r.db.Close()
	}
	return nil
}

// Create saves a new trade for the user and returns its assigned opaque ID.
func (r *Repository) Create(ctx context.Context, userID string, trade *domain.Trade) (string, error) {
	const query = `
	INSERT INTO trades (id, user_id, symbol, quantity, entry_price, type, status, entry_date)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		id, userID, trade.Symbol, trade.Quantity, trade.EntryPrice, trade.Type, trade.Status, trade.EntryDate)
	if err != nil {
		return "", fmt.Errorf("failed to insert trade for symbol %s: %w: %w", trade.Symbol, ports.ErrPersistence, err)
	}
	trade.ID = id // Update the domain object with the ID

	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": id, "userID": userID, "symbol": trade.Symbol})
	r.notify(ctx, userID)
	return id, nil
}

// MarkClosed performs the one-way OPEN -> CLOSED transition, setting all
// close fields in a single statement.
func (r *Repository) MarkClosed(ctx context.Context, userID, tradeID string, exitPrice float64, exitDate time.Time, pnl float64) error {
	const query = `
	UPDATE trades
	SET status = ?, exit_price = ?, exit_date = ?, pnl = ?
	WHERE id = ? AND user_id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query,
		domain.StatusClosed, exitPrice, exitDate, pnl,
		tradeID, userID, domain.StatusOpen)
	if err != nil {
		return fmt.Errorf("failed to close trade %s: %w: %w", tradeID, ports.ErrPersistence, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for trade %s: %w: %w", tradeID, ports.ErrPersistence, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s is not open for user %s: %w", tradeID, userID, ports.ErrNotFound)
	}

	r.logger.Debug(ctx, "Trade marked closed", map[string]interface{}{"tradeID": tradeID, "userID": userID, "pnl": pnl})
	r.notify(ctx, userID)
	return nil
}

// FindAll retrieves every trade for the user, ordered by assigned ID.
func (r *Repository) FindAll(ctx context.Context, userID string) ([]*domain.Trade, error) {
	const query = `
	SELECT id, symbol, quantity, entry_price, type, status, entry_date,
	       COALESCE(exit_price, 0), exit_date, COALESCE(pnl, 0)
	FROM trades
	WHERE user_id = ?
	ORDER BY id`
	return r.queryTrades(ctx, query, userID)
}

// FindOpen retrieves only the user's OPEN trades, ordered by assigned ID.
func (r *Repository) FindOpen(ctx context.Context, userID string) ([]*domain.Trade, error) {
	const query = `
	SELECT id, symbol, quantity, entry_price, type, status, entry_date,
	       COALESCE(exit_price, 0), exit_date, COALESCE(pnl, 0)
	FROM trades
	WHERE user_id = ? AND status = 'OPEN'
	ORDER BY id`
	return r.queryTrades(ctx, query, userID)
}

// TotalRealizedPNL sums pnl over the user's CLOSED trades.
func (r *Repository) TotalRealizedPNL(ctx context.Context, userID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(pnl), 0) FROM trades WHERE user_id = ? AND status = 'CLOSED'`
	var total float64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum realized pnl for user %s: %w: %w", userID, ports.ErrPersistence, err)
	}
	return total, nil
}

// Subscribe registers a handler for the user's change stream. The returned
// stop function releases the subscription; calling it more than once is
// harmless.
func (r *Repository) Subscribe(ctx context.Context, userID string, handler ports.TradeSnapshotHandler, errHandler func(error)) (func(), error) {
	if handler == nil {
		return nil, fmt.Errorf("handler is required for trade subscription")
	}

	r.mu.Lock()
	r.nextSub++
	id := r.nextSub
	r.subs[id] = &subscription{userID: userID, handler: handler, errHandler: errHandler}
	r.mu.Unlock()

	r.logger.Debug(ctx, "Trade subscription registered", map[string]interface{}{"userID": userID, "subscriptionID": id})

	stop := func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
		r.logger.Debug(context.Background(), "Trade subscription released", map[string]interface{}{"userID": userID, "subscriptionID": id})
	}
	return stop, nil
}

// notify pushes a fresh full result set to every subscriber of the user.
// Dispatch runs sequentially under the hub lock; a handler must not call
// back into Subscribe or a stop function.
func (r *Repository) notify(ctx context.Context, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var targets []*subscription
	for _, sub := range r.subs {
		if sub.userID == userID {
			targets = append(targets, sub)
		}
	}
	if len(targets) == 0 {
		return
	}

	trades, err := r.FindAll(ctx, userID)
	if err != nil {
		r.logger.Error(ctx, err, "Failed to build change snapshot", map[string]interface{}{"userID": userID})
		for _, sub := range targets {
			if sub.errHandler != nil {
				sub.errHandler(err)
			}
		}
		return
	}
	for _, sub := range targets {
		sub.handler(trades)
	}
}

func (r *Repository) queryTrades(ctx context.Context, query string, args ...interface{}) ([]*domain.Trade, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w: %w", ports.ErrPersistence, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w: %w", ports.ErrPersistence, err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w: %w", ports.ErrPersistence, err)
	}
	return trades, nil
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s interface{ Scan(dest ...interface{}) error }) (*domain.Trade, error) {
	t := &domain.Trade{}
	var tradeType, status string
	var exitDate sql.NullTime
	err := s.Scan(
		&t.ID, &t.Symbol, &t.Quantity, &t.EntryPrice, &tradeType, &status, &t.EntryDate,
		&t.ExitPrice, &exitDate, &t.PNL)
	if err != nil {
		return nil, err
	}
	if exitDate.Valid {
		t.ExitDate = exitDate.Time
	}
	t.Type = domain.TradeType(tradeType)
	t.Status = domain.TradeStatus(status)
	return t, nil
}
