package backtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/pkg/logx"
	"github.com/rustyeddy/backtester/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource serves one fixed series or a fixed error.
type memSource struct {
	series *market.BarSeries
	err    error
	calls  int
}

func (m *memSource) Fetch(ctx context.Context, symbol string, start, end time.Time, tf market.Timeframe) (*market.BarSeries, error) {
	m.calls++
	if m.err != nil {
		return market.EmptySeries(symbol, tf), m.err
	}
	return m.series, nil
}

// memJournal keeps everything in memory.
type memJournal struct {
	runs   []journal.RunRecord
	orders []journal.OrderRecord
	equity []journal.EquityRecord
	fail   bool
}

func (m *memJournal) RecordRun(r journal.RunRecord) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.runs = append(m.runs, r)
	return nil
}
func (m *memJournal) RecordOrder(o journal.OrderRecord) error {
	m.orders = append(m.orders, o)
	return nil
}
func (m *memJournal) RecordEquity(e journal.EquityRecord) error {
	m.equity = append(m.equity, e)
	return nil
}
func (m *memJournal) Close() error { return nil }

func newRunner(t *testing.T, src market.BarSource) *Runner {
	t.Helper()
	cfg := strategies.Config{Name: "sma-cross", Short: 5, Long: 10}
	b, err := cfg.JSON()
	require.NoError(t, err)
	return &Runner{
		Source:         src,
		Symbol:         "AAPL",
		Start:          day0,
		End:            day0.AddDate(0, 3, 0),
		Timeframe:      market.Daily,
		Strategy:       FromConfig(cfg),
		StrategyConfig: b,
		Sizer:          mustFixed(t, 100),
		InitialCash:    100000,
		Commission:     0.0003,
		Logger:         logx.Discard(),
		Now:            func() time.Time { return day0.AddDate(1, 0, 0) },
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	src := &memSource{series: seriesOf(t, crossingCloses()...)}
	j := &memJournal{}
	r := newRunner(t, src)
	r.Journal = j

	out, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	require.Len(t, out.Result.Orders, 2)
	rec := out.Record
	assert.Len(t, rec.RunID, 26)
	assert.Equal(t, "SMA(5)/SMA(10) Cross Strategy", rec.Strategy)
	assert.Equal(t, "Fixed Quantity (100 shares)", rec.Sizer)
	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, "1d", rec.Timeframe)
	assert.Equal(t, 60, rec.Bars)
	assert.Equal(t, 1, rec.Trades)
	assert.Equal(t, day0.AddDate(1, 0, 0), rec.Created)
	assert.JSONEq(t, `{"name":"sma-cross","short":5,"long":10}`, string(rec.Config))
	assert.InDelta(t, 100000-100*110*1.0003+100*70*0.9997, rec.FinalCash, 1e-6)

	require.Len(t, j.runs, 1)
	assert.Equal(t, rec.RunID, j.runs[0].RunID)
	require.Len(t, j.orders, 2)
	assert.Equal(t, "BUY", j.orders[0].Side)
	assert.Equal(t, rec.RunID, j.orders[1].RunID)
	assert.NotEmpty(t, j.orders[0].OrderID)
	assert.NotEqual(t, j.orders[0].OrderID, j.orders[1].OrderID)
	assert.Len(t, j.equity, 60)
}

func TestRunner_Run_Unavailable(t *testing.T) {
	t.Parallel()

	src := &memSource{err: fmt.Errorf("%w: AAPL after 3 attempts: timeout", market.ErrUnavailable)}
	j := &memJournal{}
	r := newRunner(t, src)
	r.Journal = j

	out, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.Result.Orders)
	assert.Equal(t, 0, out.Record.Bars)
	assert.Equal(t, 100000.0, out.Record.FinalValue)
	assert.Equal(t, day0, out.Record.Start)
	require.Len(t, j.runs, 1)
	assert.Empty(t, j.equity)
}

func TestRunner_Run_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("fetch error", func(t *testing.T) {
		t.Parallel()
		r := newRunner(t, &memSource{err: errors.New("malformed row")})
		_, err := r.Run(ctx)
		assert.ErrorContains(t, err, "malformed row")
	})

	t.Run("bad strategy", func(t *testing.T) {
		t.Parallel()
		r := newRunner(t, &memSource{series: seriesOf(t, 1, 2, 3)})
		r.Strategy = FromConfig(strategies.Config{Name: "sma", Short: 30, Long: 10})
		_, err := r.Run(ctx)
		assert.ErrorContains(t, err, "backtest: strategy:")
	})

	t.Run("bad commission", func(t *testing.T) {
		t.Parallel()
		r := newRunner(t, &memSource{series: seriesOf(t, 1, 2, 3)})
		r.Commission = 1.5
		_, err := r.Run(ctx)
		assert.ErrorContains(t, err, "commission rate")
	})

	t.Run("journal error", func(t *testing.T) {
		t.Parallel()
		r := newRunner(t, &memSource{series: seriesOf(t, 1, 2, 3)})
		r.Journal = &memJournal{fail: true}
		_, err := r.Run(ctx)
		assert.ErrorContains(t, err, "backtest: journal: disk full")
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			mutate  func(r *Runner)
			wantErr string
		}{
			{"missing source", func(r *Runner) { r.Source = nil }, "backtest: Source is required"},
			{"missing strategy", func(r *Runner) { r.Strategy = nil }, "backtest: Strategy is required"},
			{"missing sizer", func(r *Runner) { r.Sizer = nil }, "backtest: Sizer is required"},
			{"missing symbol", func(r *Runner) { r.Symbol = "" }, "backtest: Symbol is required"},
			{"inverted range", func(r *Runner) { r.Start, r.End = r.End, r.Start }, "must be before end"},
		}
		for _, tt := range tests {
			r := newRunner(t, &memSource{})
			tt.mutate(r)
			_, err := r.Run(ctx)
			assert.ErrorContains(t, err, tt.wantErr, tt.name)
		}
	})
}

func TestRunner_Run_SQLiteJournal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := journal.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r := newRunner(t, &memSource{series: seriesOf(t, crossingCloses()...)})
	r.Journal = db

	out, err := r.Run(ctx)
	require.NoError(t, err)

	got, err := db.GetRun(ctx, out.Record.RunID)
	require.NoError(t, err)
	assert.Equal(t, out.Record.Strategy, got.Strategy)
	assert.InDelta(t, out.Record.FinalValue, got.FinalValue, 1e-9)

	orders, err := db.ListOrdersByRun(ctx, out.Record.RunID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 30, orders[0].BarIndex)
	assert.Equal(t, 45, orders[1].BarIndex)

	curve, err := db.ListEquityByRun(ctx, out.Record.RunID)
	require.NoError(t, err)
	assert.Len(t, curve, 60)

	var buf bytes.Buffer
	PrintReport(&buf, got)
	assert.Contains(t, buf.String(), "Bars:           60")
}
