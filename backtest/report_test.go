package backtest

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintReport(t *testing.T) {
	t.Parallel()

	rec := journal.RunRecord{
		RunID:          "01HRUN",
		Created:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Strategy:       "RSI(14) [30/70] Strategy",
		Sizer:          "Cash Percentage (95%)",
		Symbol:         "AAPL",
		Timeframe:      "1d",
		Start:          day0,
		End:            day0.AddDate(1, 0, 0),
		Bars:           1252,
		InitialCash:    100000,
		FinalCash:      23456.789,
		FinalValue:     123456.789,
		CommissionRate: 0.0003,
		CommissionPaid: 321.5,
		Trades:         3,
		Wins:           3,
		WinRate:        100,
		ProfitFactor:   math.Inf(1),
		WinLossRatio:   math.Inf(1),
		NetPL:          23456.789,
		ReturnPct:      23.456789,
		MaxDDPct:       7.25,
	}

	var buf bytes.Buffer
	PrintReport(&buf, rec)
	out := buf.String()

	assert.Contains(t, out, "Run ID:         01HRUN")
	assert.Contains(t, out, "Bars:           1,252")
	assert.Contains(t, out, "Final Value:    123,456.79")
	assert.Contains(t, out, "Profit Factor:  inf")
	assert.Contains(t, out, "Return:         23.46%")
	assert.Contains(t, out, "Max Drawdown:   7.25%")
	assert.Contains(t, out, "Commission:     321.50 (rate 0.0003)")
}

func TestPrintReportNoBars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintReport(&buf, journal.RunRecord{Symbol: "AAPL"})
	assert.Contains(t, buf.String(), "nothing was traded")
	assert.NotContains(t, buf.String(), "Trade Statistics")
}

func TestWriteOverlaysCSV(t *testing.T) {
	t.Parallel()

	series := seriesOf(t, 1, 2, 3)
	sma := indicators.NewSeries("SMA(2)", 1, []float64{0, 1.5, 2.5})

	var buf bytes.Buffer
	require.NoError(t, WriteOverlaysCSV(&buf, series, []indicators.Series{sma}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time,close,SMA(2)", lines[0])
	assert.Equal(t, "2024-01-02T00:00:00Z,1,", lines[1])
	assert.Equal(t, "2024-01-03T00:00:00Z,2,1.500000", lines[2])
}
