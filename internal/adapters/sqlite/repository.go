package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.BacktestRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required for SQLite repository", ports.ErrConfigurationError)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backtests.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally, the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite backtest store ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS backtest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		strategy TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		initial_capital REAL NOT NULL,
		final_capital REAL NOT NULL,
		total_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		profit_factor REAL NOT NULL,
		max_drawdown_pct REAL NOT NULL,
		sharpe_ratio REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS backtest_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		quantity REAL NOT NULL,
		profit REAL NOT NULL,
		profit_pct REAL NOT NULL,
		exit_reason TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_backtest_runs_created_at ON backtest_runs (created_at);
	CREATE INDEX IF NOT EXISTS idx_backtest_trades_run_id ON backtest_trades (run_id);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("%w: schema initialization: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun persists a run summary and its trades in one transaction and
// returns the assigned run ID.
func (r *Repository) SaveRun(ctx context.Context, rec *ports.BacktestRunRecord, trades []domain.ClosedTrade) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin transaction: %v", ports.ErrQueryFailed, err)
	}
	defer tx.Rollback()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const runQuery = `
	INSERT INTO backtest_runs (symbol, timeframe, strategy, start_time, end_time,
	                           initial_capital, final_capital, total_trades, win_rate,
	                           profit_factor, max_drawdown_pct, sharpe_ratio, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, runQuery,
		rec.Symbol, string(rec.Timeframe), rec.StrategyName, rec.StartTime, rec.EndTime,
		rec.InitialCapital, rec.FinalCapital, rec.TotalTrades, rec.WinRate,
		rec.ProfitFactor, rec.MaxDrawdownPct, rec.SharpeRatio, createdAt)
	if err != nil {
		return 0, fmt.Errorf("%w: insert run for %s: %v", ports.ErrQueryFailed, rec.Symbol, err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert ID: %v", ports.ErrQueryFailed, err)
	}

	const tradeQuery = `
	INSERT INTO backtest_trades (run_id, symbol, direction, entry_time, exit_time,
	                             entry_price, exit_price, quantity, profit, profit_pct, exit_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, trade := range trades {
		_, err := tx.ExecContext(ctx, tradeQuery,
			runID, trade.Symbol, string(trade.Direction), trade.EntryTime, trade.ExitTime,
			trade.EntryPrice, trade.ExitPrice, trade.Quantity, trade.Profit, trade.ProfitPct,
			string(trade.ExitReason))
		if err != nil {
			return 0, fmt.Errorf("%w: insert trade for run %d: %v", ports.ErrQueryFailed, runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit run %d: %v", ports.ErrQueryFailed, runID, err)
	}

	rec.ID = runID
	rec.CreatedAt = createdAt
	r.logger.Debug(ctx, "Backtest run saved", map[string]interface{}{"runID": runID, "trades": len(trades)})
	return runID, nil
}

// FindRecentRuns retrieves the most recent run summaries, newest first.
func (r *Repository) FindRecentRuns(ctx context.Context, limit int) ([]*ports.BacktestRunRecord, error) {
	const query = `
	SELECT id, symbol, timeframe, strategy, start_time, end_time,
	       initial_capital, final_capital, total_trades, win_rate,
	       profit_factor, max_drawdown_pct, sharpe_ratio, created_at
	FROM backtest_runs
	ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query recent runs: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	runs := make([]*ports.BacktestRunRecord, 0)
	for rows.Next() {
		rec := &ports.BacktestRunRecord{}
		var timeframe string
		err := rows.Scan(
			&rec.ID, &rec.Symbol, &timeframe, &rec.StrategyName, &rec.StartTime, &rec.EndTime,
			&rec.InitialCapital, &rec.FinalCapital, &rec.TotalTrades, &rec.WinRate,
			&rec.ProfitFactor, &rec.MaxDrawdownPct, &rec.SharpeRatio, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scan run: %v", ports.ErrQueryFailed, err)
		}
		rec.Timeframe = domain.Timeframe(timeframe)
		runs = append(runs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating run rows: %v", ports.ErrQueryFailed, err)
	}
	return runs, nil
}

// FindTradesByRun retrieves the trades recorded for a run, in entry order.
func (r *Repository) FindTradesByRun(ctx context.Context, runID int64) ([]domain.ClosedTrade, error) {
	const query = `
	SELECT symbol, direction, entry_time, exit_time, entry_price, exit_price,
	       quantity, profit, profit_pct, exit_reason
	FROM backtest_trades
	WHERE run_id = ? ORDER BY entry_time ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: query trades for run %d: %v", ports.ErrQueryFailed, runID, err)
	}
	defer rows.Close()

	trades := make([]domain.ClosedTrade, 0)
	for rows.Next() {
		var trade domain.ClosedTrade
		var direction, exitReason string
		err := rows.Scan(
			&trade.Symbol, &direction, &trade.EntryTime, &trade.ExitTime,
			&trade.EntryPrice, &trade.ExitPrice, &trade.Quantity, &trade.Profit,
			&trade.ProfitPct, &exitReason)
		if err != nil {
			return nil, fmt.Errorf("%w: scan trade: %v", ports.ErrQueryFailed, err)
		}
		trade.Direction = domain.Direction(direction)
		trade.ExitReason = domain.ExitReason(exitReason)
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating trade rows: %v", ports.ErrQueryFailed, err)
	}
	return trades, nil
}
