// Package backtest replays a bar series through a strategy, a position
// sizer and a portfolio, one bar at a time.
package backtest

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/pkg/logx"
	"github.com/rustyeddy/backtester/portfolio"
	"github.com/rustyeddy/backtester/sizing"
	"github.com/rustyeddy/backtester/strategies"
)

// Result is everything a single run produced.
type Result struct {
	Series    *market.BarSeries
	Orders    []portfolio.Order
	Portfolio *portfolio.Portfolio

	// Rejected counts actionable signals the portfolio could not fill.
	Rejected int

	Start time.Time
	End   time.Time
}

// Summary returns the statistics of the final portfolio.
func (r *Result) Summary() portfolio.Summary {
	return r.Portfolio.Summary()
}

// Engine runs the bar loop. Symbol overrides the series symbol on orders
// when set.
type Engine struct {
	Symbol string
	Logger *slog.Logger

	// NewOrderID names filled orders; orders have no ID when nil.
	NewOrderID func() string
}

// Run processes every bar of series in order. For each bar the strategy is
// asked for a signal, an actionable signal is sized and sent to the
// portfolio, and the portfolio is marked at the bar's close. Orders the
// portfolio rejects are dropped. An empty series returns an empty result and
// leaves pf untouched.
func (e *Engine) Run(series *market.BarSeries, strat strategies.Strategy, pf *portfolio.Portfolio, sizer sizing.PositionSizer) (*Result, error) {
	if strat == nil {
		return nil, fmt.Errorf("backtest: Strategy is required")
	}
	if pf == nil {
		return nil, fmt.Errorf("backtest: Portfolio is required")
	}
	if sizer == nil {
		return nil, fmt.Errorf("backtest: Sizer is required")
	}
	log := logx.OrDefault(e.Logger)

	res := &Result{Series: series, Portfolio: pf}
	if series.Empty() {
		log.Info("nothing to backtest", "strategy", strat.Name())
		return res, nil
	}

	symbol := e.Symbol
	if symbol == "" {
		symbol = series.Symbol
	}

	for i := 0; i < series.Len(); i++ {
		bar := series.Bar(i)

		sig := strat.Signal(i, series, pf)

		if sig.Actionable() {
			qty := sizer.Quantity(bar.Close, pf)
			if qty > 0 {
				o := portfolio.Order{
					Symbol:   symbol,
					Signal:   sig,
					Quantity: qty,
					Price:    bar.Close,
					Time:     bar.Time,
					Index:    i,
				}
				if pf.ExecuteOrder(o) {
					if e.NewOrderID != nil {
						o.ID = e.NewOrderID()
					}
					res.Orders = append(res.Orders, o)
				} else {
					res.Rejected++
					log.Debug("order rejected",
						"index", i, "signal", sig, "qty", qty, "price", bar.Close, "cash", pf.Cash())
				}
			}
		}

		pf.MarkToMarket(symbol, bar.Close, i, bar.Time)
	}

	first, _ := series.First()
	last, _ := series.Last()
	res.Start, res.End = first.Time, last.Time

	log.Info("backtest complete",
		"strategy", strat.Name(),
		"symbol", symbol,
		"bars", series.Len(),
		"orders", len(res.Orders),
		"rejected", res.Rejected,
		"cash", pf.Cash())
	return res, nil
}
