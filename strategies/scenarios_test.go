package strategies

import (
	"testing"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMACrossSignals(t *testing.T) {
	series := seriesOf(t, 12, 11, 10, 9, 8, 14, 15, 9, 5)

	s, err := NewMACross(SMA, 2, 3, series)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Warmup())

	sigs := signals(s, series)
	assert.Equal(t, []int{5}, indexesOf(sigs, market.Buy))
	assert.Equal(t, []int{7}, indexesOf(sigs, market.Sell))

	for _, i := range []int{3, 4, 6, 8} {
		assert.Equal(t, market.Hold, sigs[i], "index %d", i)
	}

	overlays := s.Overlays()
	require.Len(t, overlays, 2)
	assert.Equal(t, "SMA(2)", overlays[0].Name)
	assert.Equal(t, series.Len(), overlays[1].Len())

	want, err := indicators.SMA(series.Closes(), 3)
	require.NoError(t, err)
	assert.Equal(t, want.Lookback, overlays[1].Lookback)
	for i := 0; i < series.Len(); i++ {
		w, wok := want.At(i)
		got, ok := overlays[1].At(i)
		require.Equal(t, wok, ok, "index %d", i)
		assert.InDelta(t, w, got, 1e-9, "index %d", i)
	}
}

func TestEMACrossFollowsTrendChange(t *testing.T) {
	closes := make([]float64, 0, 60)
	for i := 0; i < 30; i++ {
		closes = append(closes, 100-float64(i))
	}
	for i := 0; i < 30; i++ {
		closes = append(closes, 71+2*float64(i))
	}
	series := seriesOf(t, closes...)

	s, err := NewMACross(EMA, 3, 8, series)
	require.NoError(t, err)

	sigs := signals(s, series)
	buys := indexesOf(sigs, market.Buy)
	require.Len(t, buys, 1)
	assert.Greater(t, buys[0], 29)
	assert.Empty(t, indexesOf(sigs, market.Sell))
}

func TestBollingerReversionSignals(t *testing.T) {
	closes := make([]float64, 0, 30)
	for i := 0; i < 25; i++ {
		closes = append(closes, 100+float64(i%2))
	}
	closes = append(closes, 80, 100, 130, 100, 100)
	series := seriesOf(t, closes...)

	s, err := NewBollingerReversion(20, 2.0, series)
	require.NoError(t, err)

	sigs := signals(s, series)
	assert.Equal(t, []int{25}, indexesOf(sigs, market.Buy))
	assert.Equal(t, []int{27}, indexesOf(sigs, market.Sell))
	for i := 0; i < 20; i++ {
		assert.Equal(t, market.Hold, sigs[i])
	}
}

func TestRSIThresholdSignals(t *testing.T) {
	var closes []float64
	for i := 0; i < 30; i++ {
		closes = append(closes, 100-float64(i))
	}
	for i := 0; i < 30; i++ {
		closes = append(closes, 72+float64(i))
	}
	for i := 0; i < 30; i++ {
		closes = append(closes, 100-float64(i))
	}
	series := seriesOf(t, closes...)

	s, err := NewRSIThreshold(14, 30, 70, series)
	require.NoError(t, err)
	assert.Equal(t, 15, s.Warmup())

	sigs := signals(s, series)

	buys := indexesOf(sigs, market.Buy)
	require.Len(t, buys, 1)
	assert.GreaterOrEqual(t, buys[0], 31)
	assert.LessOrEqual(t, buys[0], 59)

	sells := indexesOf(sigs, market.Sell)
	require.Len(t, sells, 1)
	assert.GreaterOrEqual(t, sells[0], 60)
}

func TestMACDCrossSignals(t *testing.T) {
	var closes []float64
	for i := 0; i < 40; i++ {
		closes = append(closes, 200-0.05*float64(i*i))
	}
	bottom := closes[39]
	for i := 40; i < 80; i++ {
		d := float64(i - 39)
		closes = append(closes, bottom+0.05*d*d)
	}
	top := closes[79]
	for i := 80; i < 120; i++ {
		d := float64(i - 79)
		closes = append(closes, top-0.05*d*d)
	}
	series := seriesOf(t, closes...)

	s, err := NewMACDCross(3, 6, 3, series)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Warmup())

	sigs := signals(s, series)

	buys := indexesOf(sigs, market.Buy)
	require.Len(t, buys, 1)
	assert.InDelta(t, 40, buys[0], 10)

	sells := indexesOf(sigs, market.Sell)
	require.Len(t, sells, 1)
	assert.InDelta(t, 80, sells[0], 10)

	assert.Len(t, s.Overlays(), 3)
}
