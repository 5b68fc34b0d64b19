package journal

import (
	"database/sql"
	"math"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, config, sizer, symbol, timeframe, dataset,
		 start_time, end_time, bars, initial_cash, final_cash, final_value,
		 commission_rate, commission_paid, trades, wins, losses, win_rate,
		 profit_factor, win_loss_ratio, net_pl, return_pct, max_dd_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Strategy, string(r.Config), r.Sizer, r.Symbol, r.Timeframe, r.Dataset,
		r.Start.UTC(), r.End.UTC(), r.Bars, r.InitialCash, r.FinalCash, r.FinalValue,
		r.CommissionRate, r.CommissionPaid, r.Trades, r.Wins, r.Losses, r.WinRate,
		finite(r.ProfitFactor), finite(r.WinLossRatio), r.NetPL, r.ReturnPct, r.MaxDDPct,
	)
	return err
}

func (j *SQLite) RecordOrder(o OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, run_id, symbol, side, quantity, price, time, bar_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.RunID, o.Symbol, o.Side, o.Quantity, o.Price, o.Time.UTC(), o.BarIndex,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, bar_index, time, value)
		VALUES (?, ?, ?, ?)`,
		e.RunID, e.BarIndex, e.Time.UTC(), e.Value,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// finite maps infinite and NaN ratios to NULL.
func finite(v float64) sql.NullFloat64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// orInf is the inverse of finite for ratios that are only ever +Inf.
func orInf(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.Inf(1)
	}
	return v.Float64
}
