package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `run_id, created, strategy, config, sizer, symbol, timeframe, dataset,
	start_time, end_time, bars, initial_cash, final_cash, final_value,
	commission_rate, commission_paid, trades, wins, losses, win_rate,
	profit_factor, win_loss_ratio, net_pl, return_pct, max_dd_pct`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var (
		rec    RunRecord
		config string
		pf, wl sql.NullFloat64
	)
	err := s.Scan(
		&rec.RunID, &rec.Created, &rec.Strategy, &config, &rec.Sizer, &rec.Symbol, &rec.Timeframe, &rec.Dataset,
		&rec.Start, &rec.End, &rec.Bars, &rec.InitialCash, &rec.FinalCash, &rec.FinalValue,
		&rec.CommissionRate, &rec.CommissionPaid, &rec.Trades, &rec.Wins, &rec.Losses, &rec.WinRate,
		&pf, &wl, &rec.NetPL, &rec.ReturnPct, &rec.MaxDDPct,
	)
	if err != nil {
		return RunRecord{}, err
	}
	rec.Config = []byte(config)
	rec.ProfitFactor = orInf(pf)
	rec.WinLossRatio = orInf(wl)
	return rec, nil
}

// GetRun returns a single run by ID.
func (j *SQLite) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY created DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrdersByRun returns the orders of a run in bar order.
func (j *SQLite) ListOrdersByRun(ctx context.Context, runID string) ([]OrderRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT order_id, run_id, symbol, side, quantity, price, time, bar_index
		FROM orders
		WHERE run_id = ?
		ORDER BY bar_index ASC, order_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		var rec OrderRecord
		if err := rows.Scan(
			&rec.OrderID,
			&rec.RunID,
			&rec.Symbol,
			&rec.Side,
			&rec.Quantity,
			&rec.Price,
			&rec.Time,
			&rec.BarIndex,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRun returns the equity curve of a run in bar order.
func (j *SQLite) ListEquityByRun(ctx context.Context, runID string) ([]EquityRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, bar_index, time, value
		FROM equity
		WHERE run_id = ?
		ORDER BY bar_index ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var rec EquityRecord
		if err := rows.Scan(&rec.RunID, &rec.BarIndex, &rec.Time, &rec.Value); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
