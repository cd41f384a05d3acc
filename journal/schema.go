package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	mode TEXT NOT NULL,
	params TEXT NOT NULL,
	total_trades INTEGER NOT NULL,
	executed_trades INTEGER NOT NULL,
	skipped_trades INTEGER NOT NULL,
	original_pnl_cents INTEGER NOT NULL,
	simulated_pnl_cents INTEGER NOT NULL,
	pnl_delta_cents INTEGER NOT NULL,
	original_max_dd_pct REAL NOT NULL,
	simulated_max_dd_pct REAL NOT NULL,
	original_win_rate REAL NOT NULL,
	simulated_win_rate REAL NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS run_trades (
	run_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	entry_time DATETIME NOT NULL,
	asset TEXT NOT NULL,
	status TEXT NOT NULL,
	original_pnl_cents INTEGER NOT NULL,
	simulated_pnl_cents INTEGER,
	simulated_position_size INTEGER,
	simulated_r_multiple REAL,
	risk_amount_cents INTEGER NOT NULL,
	risk_reason TEXT NOT NULL,
	day_phase TEXT NOT NULL,
	equity_after_cents INTEGER NOT NULL,
	drawdown_percent REAL NOT NULL,
	PRIMARY KEY (run_id, trade_id)
);

CREATE INDEX IF NOT EXISTS idx_run_trades_run ON run_trades(run_id);
`
