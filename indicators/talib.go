package indicators

import (
	"fmt"

	ta "github.com/thrasher-corp/gct-ta/indicators"
)

// Batch indicators computed through gct-ta. gct-ta returns one value per
// input with zeros during its lookback; the lookback is recorded on the
// returned Series so callers never read those zeros.

// RSI returns the relative strength index of closes. Values are valid from
// index period.
func RSI(closes []float64, period int) (Series, error) {
	if period <= 0 {
		return Series{}, fmt.Errorf("rsi %w: period must be positive, got %d", ErrInvalidPeriod, period)
	}
	name := fmt.Sprintf("RSI(%d)", period)
	lookback := period
	if len(closes) <= lookback {
		return NewSeries(name, lookback, align(nil, len(closes))), nil
	}
	return NewSeries(name, lookback, align(ta.RSI(closes, period), len(closes))), nil
}

// SMA returns the simple moving average of values. Values are valid from
// index period-1.
func SMA(values []float64, period int) (Series, error) {
	if period <= 0 {
		return Series{}, fmt.Errorf("sma %w: period must be positive, got %d", ErrInvalidPeriod, period)
	}
	name := fmt.Sprintf("SMA(%d)", period)
	lookback := period - 1
	if len(values) <= lookback {
		return NewSeries(name, lookback, align(nil, len(values))), nil
	}
	return NewSeries(name, lookback, align(ta.SMA(values, period), len(values))), nil
}

// Bands holds Bollinger band series.
type Bands struct {
	Upper  Series
	Middle Series
	Lower  Series
}

// Bollinger returns bands of k population standard deviations around the
// simple moving average of closes. Values are valid from index period-1.
func Bollinger(closes []float64, period int, k float64) (Bands, error) {
	if period < 2 {
		return Bands{}, fmt.Errorf("bollinger %w: period must be at least 2, got %d", ErrInvalidPeriod, period)
	}
	if k <= 0 {
		return Bands{}, fmt.Errorf("bollinger: deviation multiplier must be positive, got %v", k)
	}

	n := len(closes)
	lookback := period - 1
	var upper, middle, lower []float64
	if n > lookback {
		upper, middle, lower = ta.BBANDS(closes, period, k, k, ta.Sma)
	}
	return Bands{
		Upper:  NewSeries(fmt.Sprintf("BB_UPPER(%d,%.1f)", period, k), lookback, align(upper, n)),
		Middle: NewSeries(fmt.Sprintf("BB_MIDDLE(%d)", period), lookback, align(middle, n)),
		Lower:  NewSeries(fmt.Sprintf("BB_LOWER(%d,%.1f)", period, k), lookback, align(lower, n)),
	}, nil
}

// MACDLines holds the MACD line, its signal line and the histogram.
type MACDLines struct {
	MACD      Series
	Signal    Series
	Histogram Series
}

// MACD returns the moving average convergence divergence of closes. All three
// lines are valid from index (slow-1)+(signal-1).
func MACD(closes []float64, fast, slow, signal int) (MACDLines, error) {
	if fast <= 0 {
		return MACDLines{}, fmt.Errorf("macd %w fast: must be positive, got %d", ErrInvalidPeriod, fast)
	}
	if slow <= 0 {
		return MACDLines{}, fmt.Errorf("macd %w slow: must be positive, got %d", ErrInvalidPeriod, slow)
	}
	if signal <= 0 {
		return MACDLines{}, fmt.Errorf("macd %w signal: must be positive, got %d", ErrInvalidPeriod, signal)
	}
	if fast >= slow {
		return MACDLines{}, fmt.Errorf("macd %w: fast period %d must be less than slow period %d", ErrInvalidPeriod, fast, slow)
	}

	n := len(closes)
	lookback := (slow - 1) + (signal - 1)
	var m, s, h []float64
	if n > lookback {
		m, s, h = ta.MACD(closes, fast, slow, signal)
	}
	tag := fmt.Sprintf("(%d,%d,%d)", fast, slow, signal)
	return MACDLines{
		MACD:      NewSeries("MACD"+tag, lookback, align(m, n)),
		Signal:    NewSeries("MACD_SIGNAL"+tag, lookback, align(s, n)),
		Histogram: NewSeries("MACD_HIST"+tag, lookback, align(h, n)),
	}, nil
}

// align right-aligns out to length n, padding the front with zeros or
// dropping leading values.
func align(out []float64, n int) []float64 {
	switch {
	case len(out) == n:
		return out
	case len(out) > n:
		return out[len(out)-n:]
	}
	padded := make([]float64, n)
	copy(padded[n-len(out):], out)
	return padded
}
