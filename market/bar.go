package market

import (
	"fmt"
	"time"
)

// Bar is one OHLCV observation. Time is the end of the bar's interval.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Valid reports whether the bar has a timestamp and a usable close.
func (b Bar) Valid() bool {
	return !b.Time.IsZero() && b.Close > 0
}

func (b Bar) String() string {
	return fmt.Sprintf("%s O:%.4f H:%.4f L:%.4f C:%.4f V:%.0f",
		b.Time.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close, b.Volume)
}

// BarSeries is an ordered, immutable sequence of bars for one symbol.
type BarSeries struct {
	Symbol    string
	Timeframe Timeframe

	bars []Bar
}

// NewBarSeries copies bars into a new series. Bars must be in strictly
// ascending time order.
func NewBarSeries(symbol string, tf Timeframe, bars []Bar) (*BarSeries, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return nil, fmt.Errorf("bar %d (%s) is not after bar %d (%s)",
				i, bars[i].Time.Format(time.RFC3339), i-1, bars[i-1].Time.Format(time.RFC3339))
		}
	}

	cp := make([]Bar, len(bars))
	copy(cp, bars)

	return &BarSeries{
		Symbol:    symbol,
		Timeframe: tf,
		bars:      cp,
	}, nil
}

// EmptySeries returns a series with no bars.
func EmptySeries(symbol string, tf Timeframe) *BarSeries {
	return &BarSeries{Symbol: symbol, Timeframe: tf}
}

func (s *BarSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bars)
}

func (s *BarSeries) Empty() bool {
	return s.Len() == 0
}

// Bar returns the bar at index i. It panics if i is out of range.
func (s *BarSeries) Bar(i int) Bar {
	return s.bars[i]
}

// Bars returns a copy of the bars.
func (s *BarSeries) Bars() []Bar {
	if s == nil {
		return nil
	}
	cp := make([]Bar, len(s.bars))
	copy(cp, s.bars)
	return cp
}

// Closes returns the closing prices in series order.
func (s *BarSeries) Closes() []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.bars[i].Close
	}
	return out
}

func (s *BarSeries) First() (Bar, bool) {
	if s.Empty() {
		return Bar{}, false
	}
	return s.bars[0], true
}

func (s *BarSeries) Last() (Bar, bool) {
	if s.Empty() {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}
