package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testSeries(t *testing.T, closes ...float64) *BarSeries {
	t.Helper()

	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = Bar{
			Time:   day0.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	s, err := NewBarSeries("TEST", Daily, bars)
	require.NoError(t, err)
	return s
}

func TestNewBarSeries(t *testing.T) {
	t.Parallel()

	t.Run("ordered", func(t *testing.T) {
		s := testSeries(t, 1, 2, 3)
		assert.Equal(t, 3, s.Len())
		assert.False(t, s.Empty())
		assert.Equal(t, []float64{1, 2, 3}, s.Closes())

		first, ok := s.First()
		assert.True(t, ok)
		assert.Equal(t, 1.0, first.Close)
		last, ok := s.Last()
		assert.True(t, ok)
		assert.Equal(t, 3.0, last.Close)
	})

	t.Run("out of order", func(t *testing.T) {
		_, err := NewBarSeries("X", Daily, []Bar{
			{Time: day0.AddDate(0, 0, 1), Close: 1},
			{Time: day0, Close: 1},
		})
		assert.Error(t, err)
	})

	t.Run("duplicate timestamp", func(t *testing.T) {
		_, err := NewBarSeries("X", Daily, []Bar{
			{Time: day0, Close: 1},
			{Time: day0, Close: 2},
		})
		assert.Error(t, err)
	})

	t.Run("copy on construction", func(t *testing.T) {
		bars := []Bar{{Time: day0, Close: 1}}
		s, err := NewBarSeries("X", Daily, bars)
		require.NoError(t, err)
		bars[0].Close = 99
		assert.Equal(t, 1.0, s.Bar(0).Close)

		out := s.Bars()
		out[0].Close = 42
		assert.Equal(t, 1.0, s.Bar(0).Close)
	})

	t.Run("empty", func(t *testing.T) {
		s := EmptySeries("X", Daily)
		assert.True(t, s.Empty())
		_, ok := s.First()
		assert.False(t, ok)
		_, ok = s.Last()
		assert.False(t, ok)
		assert.Empty(t, s.Closes())

		var nilSeries *BarSeries
		assert.Equal(t, 0, nilSeries.Len())
	})
}

func TestSignal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "HOLD", Hold.String())
	assert.True(t, Buy.Actionable())
	assert.True(t, Sell.Actionable())
	assert.False(t, Hold.Actionable())

	for _, s := range []Signal{Buy, Sell, Hold} {
		got, err := ParseSignal(s.String())
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSignal("short")
	assert.Error(t, err)
}

func TestParseTimeframe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Timeframe
		wantErr bool
	}{
		{"1d", Daily, false},
		{"daily", Daily, false},
		{"", Daily, false},
		{"1h", Hour, false},
		{"1m", Minute, false},
		{"weekly", Weekly, false},
		{"1mo", Monthly, false},
		{"fortnight", Daily, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimeframe(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, 24*time.Hour, Daily.Duration())
	assert.Equal(t, time.Hour, Hour.Duration())
}
