// journal/journal.go
package journal

import (
	"errors"
	"time"
)

// RunRecord is one completed backtest with its headline statistics.
type RunRecord struct {
	RunID     string
	Created   time.Time
	Strategy  string
	Config    []byte // strategy config as JSON
	Sizer     string
	Symbol    string
	Timeframe string
	Dataset   string

	Start time.Time
	End   time.Time
	Bars  int

	InitialCash    float64
	FinalCash      float64
	FinalValue     float64
	CommissionRate float64
	CommissionPaid float64

	Trades       int
	Wins         int
	Losses       int
	WinRate      float64 // percent
	ProfitFactor float64 // +Inf when there were no losing trades
	WinLossRatio float64
	NetPL        float64
	ReturnPct    float64
	MaxDDPct     float64
}

// OrderRecord is a filled order belonging to a run.
type OrderRecord struct {
	OrderID  string
	RunID    string
	Symbol   string
	Side     string
	Quantity float64
	Price    float64
	Time     time.Time
	BarIndex int
}

// EquityRecord is the portfolio value at the close of one bar.
type EquityRecord struct {
	RunID    string
	BarIndex int
	Time     time.Time
	Value    float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordOrder(OrderRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// Multi fans every record out to each journal in order.
func Multi(js ...Journal) Journal {
	return multi(js)
}

type multi []Journal

func (m multi) RecordRun(r RunRecord) error {
	for _, j := range m {
		if err := j.RecordRun(r); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) RecordOrder(o OrderRecord) error {
	for _, j := range m {
		if err := j.RecordOrder(o); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) RecordEquity(e EquityRecord) error {
	for _, j := range m {
		if err := j.RecordEquity(e); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Close() error {
	var errs []error
	for _, j := range m {
		errs = append(errs, j.Close())
	}
	return errors.Join(errs...)
}
