package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// MAKind selects the moving average used by MACross.
type MAKind int

const (
	SMA MAKind = iota
	EMA
)

func (k MAKind) String() string {
	if k == EMA {
		return "EMA"
	}
	return "SMA"
}

// MACross trades a short/long moving average crossover.
// - BUY when the short average crosses above the long one
// - SELL when it crosses back below
type MACross struct {
	Kind  MAKind
	Short int
	Long  int

	short indicators.Series
	long  indicators.Series
}

// NewMACross precomputes both averages over series. Periods must be
// positive and short must be below long.
func NewMACross(kind MAKind, short, long int, series *market.BarSeries) (*MACross, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("ma cross: periods must be positive, got %d/%d", short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("ma cross: short period %d must be less than long period %d", short, long)
	}

	fast, err := movingAverage(kind, short, series)
	if err != nil {
		return nil, err
	}
	slow, err := movingAverage(kind, long, series)
	if err != nil {
		return nil, err
	}

	return &MACross{
		Kind:  kind,
		Short: short,
		Long:  long,
		short: fast,
		long:  slow,
	}, nil
}

func movingAverage(kind MAKind, period int, series *market.BarSeries) (indicators.Series, error) {
	if kind == EMA {
		ema, err := indicators.NewEMA(period)
		if err != nil {
			return indicators.Series{}, err
		}
		return indicators.Collect(ema, series), nil
	}
	return indicators.SMA(series.Closes(), period)
}

func (s *MACross) Name() string {
	return fmt.Sprintf("%s(%d)/%s(%d) Cross Strategy", s.Kind, s.Short, s.Kind, s.Long)
}

func (s *MACross) Warmup() int {
	return s.Long
}

func (s *MACross) Signal(index int, series *market.BarSeries, h Holdings) market.Signal {
	if index < s.Warmup() || index >= series.Len() {
		return market.Hold
	}
	switch {
	case crossedUp(s.short, s.long, index):
		return market.Buy
	case crossedDown(s.short, s.long, index):
		return market.Sell
	}
	return market.Hold
}

// Overlays returns the short and long averages.
func (s *MACross) Overlays() []indicators.Series {
	return []indicators.Series{s.short, s.long}
}
