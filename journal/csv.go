package journal

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSVJournal writes orders and equity points to two CSV files. Run records
// are appended to runs.csv next to the orders file.
type CSVJournal struct {
	runs   *csv.Writer
	orders *csv.Writer
	equity *csv.Writer

	rf, of, ef *os.File
}

var (
	runsHeader   = []string{"run_id", "created", "strategy", "sizer", "symbol", "timeframe", "start", "end", "bars", "initial_cash", "final_value", "trades", "wins", "losses", "win_rate", "profit_factor", "net_pl", "return_pct", "max_dd_pct"}
	ordersHeader = []string{"order_id", "run_id", "symbol", "side", "quantity", "price", "time", "bar_index"}
	equityHeader = []string{"run_id", "bar_index", "time", "value"}
)

// NewCSV creates runs.csv, orders.csv and equity.csv in dir.
func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	j := &CSVJournal{}
	var err error
	if j.rf, j.runs, err = create(filepath.Join(dir, "runs.csv"), runsHeader); err != nil {
		return nil, err
	}
	if j.of, j.orders, err = create(filepath.Join(dir, "orders.csv"), ordersHeader); err != nil {
		_ = j.rf.Close()
		return nil, err
	}
	if j.ef, j.equity, err = create(filepath.Join(dir, "equity.csv"), equityHeader); err != nil {
		_ = j.rf.Close()
		_ = j.of.Close()
		return nil, err
	}
	return j, nil
}

func create(path string, header []string) (*os.File, *csv.Writer, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := csv.NewWriter(fh)
	if err := w.Write(header); err != nil {
		_ = fh.Close()
		return nil, nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = fh.Close()
		return nil, nil, err
	}
	return fh, w, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	return write(j.runs, []string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339),
		r.Strategy,
		r.Sizer,
		r.Symbol,
		r.Timeframe,
		r.Start.UTC().Format(time.RFC3339),
		r.End.UTC().Format(time.RFC3339),
		strconv.Itoa(r.Bars),
		f(r.InitialCash),
		f(r.FinalValue),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		f(r.WinRate),
		f(r.ProfitFactor),
		f(r.NetPL),
		f(r.ReturnPct),
		f(r.MaxDDPct),
	})
}

func (j *CSVJournal) RecordOrder(o OrderRecord) error {
	return write(j.orders, []string{
		o.OrderID,
		o.RunID,
		o.Symbol,
		o.Side,
		f(o.Quantity),
		f(o.Price),
		o.Time.UTC().Format(time.RFC3339),
		strconv.Itoa(o.BarIndex),
	})
}

func (j *CSVJournal) RecordEquity(e EquityRecord) error {
	return write(j.equity, []string{
		e.RunID,
		strconv.Itoa(e.BarIndex),
		e.Time.UTC().Format(time.RFC3339),
		f(e.Value),
	})
}

func write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.runs, j.orders, j.equity} {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, fh := range []*os.File{j.rf, j.of, j.ef} {
		if err := fh.Close(); err != nil {
			return err
		}
	}
	return nil
}

// f formats with six decimals; infinite values become "inf".
func f(x float64) string {
	if math.IsInf(x, 1) {
		return "inf"
	}
	return strconv.FormatFloat(x, 'f', 6, 64)
}
