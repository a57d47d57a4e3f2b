package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quantsweep/internal/strategy"
	"quantsweep/internal/sweep"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ ResultStore = (*SQLiteStore)(nil)

// SQLiteStore implements ResultStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sweep_runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	succeeded  INTEGER NOT NULL,
	failed     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sweep_results (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id            INTEGER NOT NULL REFERENCES sweep_runs(id),
	rank_order        INTEGER NOT NULL,
	strategy          TEXT NOT NULL,
	window_size       INTEGER NOT NULL,
	entry_z           REAL NOT NULL,
	exit_z            REAL NOT NULL,
	short_window      INTEGER NOT NULL,
	long_window       INTEGER NOT NULL,
	allow_shorting    INTEGER NOT NULL,
	cumulative_return REAL NOT NULL,
	cagr              REAL NOT NULL,
	annual_volatility REAL NOT NULL,
	sharpe            REAL NOT NULL,
	sortino           REAL NOT NULL,
	max_drawdown      REAL NOT NULL,
	calmar            REAL NOT NULL,
	trades            INTEGER NOT NULL,
	low_confidence    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sweep_failures (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id    INTEGER NOT NULL REFERENCES sweep_runs(id),
	strategy  TEXT NOT NULL,
	params    TEXT NOT NULL,
	reason    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sweep_results_run ON sweep_results(run_id, rank_order);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and runs
// the schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSweep stores a completed sweep in a single transaction and returns
// the new run id. Results keep their rank so TopResults can reproduce the
// sweep's ordering.
func (s *SQLiteStore) SaveSweep(ctx context.Context, symbol string, rs *sweep.ResultSet) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sweep_runs (symbol, created_at, succeeded, failed) VALUES (?, ?, ?, ?)`,
		symbol, time.Now().UTC().Format(time.RFC3339), len(rs.Results), len(rs.Failures))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for rank, r := range rs.Results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sweep_results (
				run_id, rank_order, strategy, window_size, entry_z, exit_z,
				short_window, long_window, allow_shorting,
				cumulative_return, cagr, annual_volatility,
				sharpe, sortino, max_drawdown, calmar, trades, low_confidence
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, rank, string(r.Params.Type), r.Params.Window, r.Params.EntryZ, r.Params.ExitZ,
			r.Params.ShortWindow, r.Params.LongWindow, boolInt(r.Params.AllowShorting),
			r.Metrics.CumulativeReturn, r.Metrics.CAGR, r.Metrics.AnnualVolatility,
			r.Metrics.Sharpe, r.Metrics.Sortino, r.Metrics.MaxDrawdown, r.Metrics.Calmar,
			r.Metrics.Trades, boolInt(r.Metrics.LowConfidence))
		if err != nil {
			return 0, fmt.Errorf("inserting result %d: %w", rank, err)
		}
	}

	for _, f := range rs.Failures {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sweep_failures (run_id, strategy, params, reason) VALUES (?, ?, ?, ?)`,
			runID, string(f.Params.Type), f.Params.String(), f.Err.Error())
		if err != nil {
			return 0, fmt.Errorf("inserting failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// TopResults returns the stored results of a run in rank order, up to
// limit. Equity curves are not persisted, so Result.Curves is nil.
func (s *SQLiteStore) TopResults(ctx context.Context, runID int64, limit int) ([]sweep.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy, window_size, entry_z, exit_z, short_window, long_window, allow_shorting,
		       cumulative_return, cagr, annual_volatility, sharpe, sortino,
		       max_drawdown, calmar, trades, low_confidence
		FROM sweep_results WHERE run_id = ? ORDER BY rank_order LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []sweep.Result
	for rows.Next() {
		var (
			r             sweep.Result
			stratType     string
			allowShorting int
			lowConfidence int
		)
		err := rows.Scan(&stratType, &r.Params.Window, &r.Params.EntryZ, &r.Params.ExitZ,
			&r.Params.ShortWindow, &r.Params.LongWindow, &allowShorting,
			&r.Metrics.CumulativeReturn, &r.Metrics.CAGR, &r.Metrics.AnnualVolatility,
			&r.Metrics.Sharpe, &r.Metrics.Sortino, &r.Metrics.MaxDrawdown,
			&r.Metrics.Calmar, &r.Metrics.Trades, &lowConfidence)
		if err != nil {
			return nil, err
		}
		r.Params.Type = strategy.Type(stratType)
		r.Params.AllowShorting = allowShorting != 0
		r.Metrics.LowConfidence = lowConfidence != 0
		results = append(results, r)
	}
	return results, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
