package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// MACDCross buys when the MACD line crosses above its signal line and sells
// on the opposite cross.
type MACDCross struct {
	Fast         int
	Slow         int
	SignalPeriod int

	lines indicators.MACDLines
}

// NewMACDCross precomputes the MACD, signal and histogram lines over
// series. All periods must be positive and fast below slow.
func NewMACDCross(fast, slow, signal int, series *market.BarSeries) (*MACDCross, error) {
	lines, err := indicators.MACD(series.Closes(), fast, slow, signal)
	if err != nil {
		return nil, err
	}
	return &MACDCross{
		Fast:         fast,
		Slow:         slow,
		SignalPeriod: signal,
		lines:        lines,
	}, nil
}

func (s *MACDCross) Name() string {
	return fmt.Sprintf("MACD(%d, %d, %d) Strategy", s.Fast, s.Slow, s.SignalPeriod)
}

// Warmup is one past the first bar where both lines are valid.
func (s *MACDCross) Warmup() int {
	return s.Slow + s.SignalPeriod - 1
}

func (s *MACDCross) Signal(index int, series *market.BarSeries, h Holdings) market.Signal {
	if index < s.Warmup() || index >= series.Len() {
		return market.Hold
	}
	switch {
	case crossedUp(s.lines.MACD, s.lines.Signal, index):
		return market.Buy
	case crossedDown(s.lines.MACD, s.lines.Signal, index):
		return market.Sell
	}
	return market.Hold
}

// Overlays returns the MACD, signal and histogram lines.
func (s *MACDCross) Overlays() []indicators.Series {
	return []indicators.Series{s.lines.MACD, s.lines.Signal, s.lines.Histogram}
}
