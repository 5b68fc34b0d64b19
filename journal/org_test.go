package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRunOrg(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	out, err := FormatRunOrg(sampleRun("01HQXYZRUN000000000000000", created))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "* BACKTEST: SMA(10)/SMA(30) Cross Strategy AAPL 1d"))
	assert.Contains(t, out, ":RUN_ID:      01HQXYZRUN000000000000000")
	assert.Contains(t, out, ":START_DATE:  2023-01-03")
	assert.Contains(t, out, ":NET_PL:      1234.50")
	assert.Contains(t, out, ":PROFIT_FAC:  inf")
	assert.Contains(t, out, ":CREATED:     [2024-03-15 Fri 10:30]")
	assert.Contains(t, out, `| Config     | {"name":"sma-cross","short":10,"long":30} |`)
	assert.Contains(t, out, "- Win/Loss Ratio:   *inf*")
	assert.Contains(t, out, "| Total   | 4 |")
}

func TestFormatRunOrgMissingFields(t *testing.T) {
	t.Parallel()

	out, err := FormatRunOrg(RunRecord{Strategy: "x", Symbol: "AAPL", ProfitFactor: 1.5})
	require.NoError(t, err)
	assert.Contains(t, out, "(timeframe?)")
	assert.Contains(t, out, ":RUN_ID:      (run-id?)")
	assert.Contains(t, out, ":PROFIT_FAC:  1.50")
}

func TestFormatOrdersOrg(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	orders := []OrderRecord{
		{OrderID: "01HQXYZORDER0000000000001", RunID: "R", Symbol: "AAPL", Side: "BUY", Quantity: 100, Price: 182.5, Time: at, BarIndex: 30},
		{OrderID: "short", RunID: "R", Symbol: "AAPL", Side: "SELL", Quantity: 100, Price: 190, Time: at.AddDate(0, 0, 15), BarIndex: 45},
	}

	out := FormatOrdersOrg(orders)
	assert.Contains(t, out, "** BUY AAPL 100 @ 182.5000 (00000001)")
	assert.Contains(t, out, "** SELL AAPL 100 @ 190.0000 (short)")
	assert.Contains(t, out, ":BAR: 45")
	assert.Contains(t, out, ":TIME: 2024-03-15T00:00:00Z")
	assert.Equal(t, 2, strings.Count(out, ":PROPERTIES:"))
	assert.Empty(t, FormatOrdersOrg(nil))
}
