package indicators

import (
	"math"

	"github.com/rustyeddy/backtester/market"
)

// Series is an indicator cache aligned with a bar series: value i belongs to
// bar i. Values before Lookback are not valid.
type Series struct {
	Name     string
	Lookback int

	values []float64
}

// NewSeries wraps values that become valid at index lookback. NaN values are
// always treated as invalid.
func NewSeries(name string, lookback int, values []float64) Series {
	if lookback < 0 {
		lookback = 0
	}
	return Series{Name: name, Lookback: lookback, values: values}
}

func (s Series) Len() int {
	return len(s.values)
}

// At returns the value at index i and whether it is valid.
func (s Series) At(i int) (float64, bool) {
	if i < s.Lookback || i < 0 || i >= len(s.values) {
		return 0, false
	}
	v := s.values[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Values returns a copy of the cached values with invalid positions set to NaN.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.values))
	for i := range out {
		v, ok := s.At(i)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// Constant returns a series of length n holding v everywhere. It is used for
// fixed thresholds in crossing rules.
func Constant(name string, v float64, n int) Series {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = v
	}
	return NewSeries(name, 0, vals)
}

// Collect runs a streaming indicator once over the whole bar series.
// The indicator is reset first.
func Collect(ind Float, series *market.BarSeries) Series {
	ind.Reset()

	n := series.Len()
	vals := make([]float64, n)
	lookback := n
	for i := 0; i < n; i++ {
		ind.Update(series.Bar(i))
		if !ind.Ready() {
			vals[i] = math.NaN()
			continue
		}
		if lookback == n {
			lookback = i
		}
		vals[i] = ind.Value()
	}
	return NewSeries(ind.Name(), lookback, vals)
}
