// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	config TEXT NOT NULL,
	sizer TEXT NOT NULL,
	symbol TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	dataset TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	bars INTEGER NOT NULL,
	initial_cash REAL NOT NULL,
	final_cash REAL NOT NULL,
	final_value REAL NOT NULL,
	commission_rate REAL NOT NULL,
	commission_paid REAL NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL,
	win_loss_ratio REAL,
	net_pl REAL NOT NULL,
	return_pct REAL NOT NULL,
	max_dd_pct REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	time DATETIME NOT NULL,
	bar_index INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	bar_index INTEGER NOT NULL,
	time DATETIME NOT NULL,
	value REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_run ON orders(run_id, bar_index);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, bar_index);
`
