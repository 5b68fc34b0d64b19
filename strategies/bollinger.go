package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// BollingerReversion expects price to revert into the bands:
// - BUY when the close crosses down below the lower band
// - SELL when the close crosses up above the upper band
type BollingerReversion struct {
	Period int
	K      float64

	close indicators.Series
	bands indicators.Bands
}

// NewBollingerReversion precomputes bands of k standard deviations around
// SMA(period). period must be at least 2 and k positive.
func NewBollingerReversion(period int, k float64, series *market.BarSeries) (*BollingerReversion, error) {
	closes := series.Closes()
	bands, err := indicators.Bollinger(closes, period, k)
	if err != nil {
		return nil, err
	}
	return &BollingerReversion{
		Period: period,
		K:      k,
		close:  indicators.NewSeries("CLOSE", 0, closes),
		bands:  bands,
	}, nil
}

func (s *BollingerReversion) Name() string {
	return fmt.Sprintf("Bollinger Bands(%d, %.1f) Strategy", s.Period, s.K)
}

func (s *BollingerReversion) Warmup() int {
	return s.Period
}

func (s *BollingerReversion) Signal(index int, series *market.BarSeries, h Holdings) market.Signal {
	if index < s.Warmup() || index >= series.Len() {
		return market.Hold
	}
	switch {
	case crossedDown(s.close, s.bands.Lower, index):
		return market.Buy
	case crossedUp(s.close, s.bands.Upper, index):
		return market.Sell
	}
	return market.Hold
}

// Overlays returns the upper, middle and lower bands.
func (s *BollingerReversion) Overlays() []indicators.Series {
	return []indicators.Series{s.bands.Upper, s.bands.Middle, s.bands.Lower}
}
