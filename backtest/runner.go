package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/pkg/id"
	"github.com/rustyeddy/backtester/pkg/logx"
	"github.com/rustyeddy/backtester/portfolio"
	"github.com/rustyeddy/backtester/sizing"
	"github.com/rustyeddy/backtester/strategies"
)

// StrategyFactory builds a strategy over the series it will trade.
type StrategyFactory func(series *market.BarSeries) (strategies.Strategy, error)

// FromConfig returns a factory for the strategy named by cfg.
func FromConfig(cfg strategies.Config) StrategyFactory {
	return func(series *market.BarSeries) (strategies.Strategy, error) {
		return strategies.New(cfg, series)
	}
}

// Runner fetches bars once, runs a fresh portfolio through the engine and
// optionally journals the outcome.
type Runner struct {
	Source    market.BarSource
	Symbol    string
	Start     time.Time
	End       time.Time
	Timeframe market.Timeframe

	Strategy       StrategyFactory
	StrategyConfig []byte // recorded with the run
	Sizer          sizing.PositionSizer

	InitialCash float64
	Commission  float64

	Journal journal.Journal
	Dataset string

	Logger *slog.Logger
	IDs    *id.Generator
	Now    func() time.Time
}

// Outcome is a finished run and the record describing it.
type Outcome struct {
	Result   *Result
	Record   journal.RunRecord
	Strategy strategies.Strategy
}

// Run executes the backtest. Unavailable data yields an empty result rather
// than an error; invalid configuration is returned as an error.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	if r.Source == nil {
		return Outcome{}, fmt.Errorf("backtest: Source is required")
	}
	if r.Strategy == nil {
		return Outcome{}, fmt.Errorf("backtest: Strategy is required")
	}
	if r.Sizer == nil {
		return Outcome{}, fmt.Errorf("backtest: Sizer is required")
	}
	if r.Symbol == "" {
		return Outcome{}, fmt.Errorf("backtest: Symbol is required")
	}
	if !r.End.IsZero() && !r.Start.Before(r.End) {
		return Outcome{}, fmt.Errorf("backtest: start %s must be before end %s",
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}

	log := logx.OrDefault(r.Logger)
	ids := r.IDs
	if ids == nil {
		ids = id.NewGenerator(r.Now)
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	series, err := r.Source.Fetch(ctx, r.Symbol, r.Start, r.End, r.Timeframe)
	if err != nil {
		if !errors.Is(err, market.ErrUnavailable) {
			return Outcome{}, fmt.Errorf("backtest: fetch %s: %w", r.Symbol, err)
		}
		log.Warn("no bars available", "symbol", r.Symbol, "err", err)
	}
	if series == nil {
		series = market.EmptySeries(r.Symbol, r.Timeframe)
	}

	strat, err := r.Strategy(series)
	if err != nil {
		return Outcome{}, fmt.Errorf("backtest: strategy: %w", err)
	}
	pf, err := portfolio.New(r.InitialCash, r.Commission)
	if err != nil {
		return Outcome{}, fmt.Errorf("backtest: %w", err)
	}

	eng := &Engine{Symbol: r.Symbol, Logger: log, NewOrderID: ids.New}
	res, err := eng.Run(series, strat, pf, r.Sizer)
	if err != nil {
		return Outcome{}, err
	}
	if res.Start.IsZero() {
		res.Start, res.End = r.Start, r.End
	}

	rec := NewRunRecord(ids.New(), now().UTC(), res, strat.Name(), r.Sizer.Name())
	rec.Symbol = r.Symbol
	rec.Timeframe = r.Timeframe.String()
	rec.Config = r.StrategyConfig
	rec.Dataset = r.Dataset

	if r.Journal != nil {
		if err := Record(r.Journal, rec, res); err != nil {
			return Outcome{}, fmt.Errorf("backtest: journal: %w", err)
		}
		log.Debug("run journaled", "run_id", rec.RunID)
	}
	return Outcome{Result: res, Record: rec, Strategy: strat}, nil
}

// NewRunRecord summarizes res into a journal record.
func NewRunRecord(runID string, created time.Time, res *Result, strategy, sizer string) journal.RunRecord {
	s := res.Summary()
	rec := journal.RunRecord{
		RunID:          runID,
		Created:        created,
		Strategy:       strategy,
		Sizer:          sizer,
		Start:          res.Start,
		End:            res.End,
		Bars:           res.Series.Len(),
		InitialCash:    res.Portfolio.InitialCash(),
		FinalCash:      s.Cash,
		FinalValue:     s.FinalValue,
		CommissionRate: res.Portfolio.CommissionRate(),
		CommissionPaid: s.CommissionPaid,
		Trades:         s.TotalTrades,
		Wins:           s.WinningTrades,
		Losses:         s.LosingTrades,
		WinRate:        s.WinRate,
		ProfitFactor:   s.ProfitFactor,
		WinLossRatio:   s.WinLossRatio,
		NetPL:          s.NetPL,
		ReturnPct:      s.ReturnPct,
		MaxDDPct:       s.MaxDrawdownPct,
	}
	if res.Series != nil {
		rec.Symbol = res.Series.Symbol
		rec.Timeframe = res.Series.Timeframe.String()
	}
	return rec
}

// Record writes the run, its orders and its equity curve to j.
func Record(j journal.Journal, rec journal.RunRecord, res *Result) error {
	if err := j.RecordRun(rec); err != nil {
		return err
	}
	for _, o := range res.Orders {
		err := j.RecordOrder(journal.OrderRecord{
			OrderID:  o.ID,
			RunID:    rec.RunID,
			Symbol:   o.Symbol,
			Side:     o.Signal.String(),
			Quantity: o.Quantity,
			Price:    o.Price,
			Time:     o.Time,
			BarIndex: o.Index,
		})
		if err != nil {
			return err
		}
	}
	for _, pt := range res.Portfolio.EquityCurve() {
		err := j.RecordEquity(journal.EquityRecord{
			RunID:    rec.RunID,
			BarIndex: pt.Index,
			Time:     pt.Time,
			Value:    pt.Value,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
