package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// RSIThreshold buys oversold recoveries and sells overbought reversals:
// BUY when RSI crosses up through Lower, SELL when it crosses down through
// Upper.
type RSIThreshold struct {
	Period int
	Lower  float64
	Upper  float64

	rsi   indicators.Series
	lower indicators.Series
	upper indicators.Series
}

// NewRSIThreshold precomputes RSI(period) over series. The period must be
// positive and 0 < lower < upper < 100.
func NewRSIThreshold(period int, lower, upper float64, series *market.BarSeries) (*RSIThreshold, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi: period must be positive, got %d", period)
	}
	if lower <= 0 || upper >= 100 {
		return nil, fmt.Errorf("rsi: thresholds must be within (0, 100), got %v/%v", lower, upper)
	}
	if lower >= upper {
		return nil, fmt.Errorf("rsi: lower threshold %v must be below upper threshold %v", lower, upper)
	}

	rsi, err := indicators.RSI(series.Closes(), period)
	if err != nil {
		return nil, err
	}

	n := series.Len()
	return &RSIThreshold{
		Period: period,
		Lower:  lower,
		Upper:  upper,
		rsi:    rsi,
		lower:  indicators.Constant(fmt.Sprintf("RSI_LOWER(%g)", lower), lower, n),
		upper:  indicators.Constant(fmt.Sprintf("RSI_UPPER(%g)", upper), upper, n),
	}, nil
}

func (s *RSIThreshold) Name() string {
	return fmt.Sprintf("RSI(%d) [%g/%g] Strategy", s.Period, s.Lower, s.Upper)
}

// Warmup is one past the first valid RSI value so a crossing always has a
// valid previous bar to compare against.
func (s *RSIThreshold) Warmup() int {
	return s.Period + 1
}

func (s *RSIThreshold) Signal(index int, series *market.BarSeries, h Holdings) market.Signal {
	if index < s.Warmup() || index >= series.Len() {
		return market.Hold
	}
	switch {
	case crossedUp(s.rsi, s.lower, index):
		return market.Buy
	case crossedDown(s.rsi, s.upper, index):
		return market.Sell
	}
	return market.Hold
}

// Overlays returns RSI and its two threshold lines.
func (s *RSIThreshold) Overlays() []indicators.Series {
	return []indicators.Series{s.rsi, s.lower, s.upper}
}
