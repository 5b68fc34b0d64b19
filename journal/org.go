package journal

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"
)

var orgFuncs = template.FuncMap{
	"ratio": func(x float64) string {
		if math.IsInf(x, 1) {
			return "inf"
		}
		return fmt.Sprintf("%.2f", x)
	},
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrg = template.Must(template.New("run").Funcs(orgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders a run as an Org-mode heading with a PROPERTIES drawer
// and a performance summary.
func FormatRunOrg(r RunRecord) (string, error) {
	var buf bytes.Buffer
	if err := runOrg.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const RunOrgTemplate = `* BACKTEST: {{.Strategy}} {{.Symbol}} {{if .Timeframe}}{{.Timeframe}}{{else}}(timeframe?){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:SIZER:       {{.Sizer}}
:SYMBOL:      {{.Symbol}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:BARS:        {{.Bars}}
:START_CASH:  {{printf "%.2f" .InitialCash}}
:END_VALUE:   {{printf "%.2f" .FinalValue}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD_PCT:  {{printf "%.2f" .MaxDDPct}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{printf "%.2f" .WinRate}}
:PROFIT_FAC:  {{ratio .ProfitFactor}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Strategy Parameters
| Parameter  | Value |
|------------+-------|
| Config     | {{printf "%s" .Config}} |
| Commission | {{printf "%.4f" .CommissionRate}} |

** Performance Summary
- Net P/L:          *{{printf "%.2f" .NetPL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Max Drawdown:     *{{printf "%.2f" .MaxDDPct}}%*
- Win Rate:         *{{printf "%.2f" .WinRate}}%*
- Profit Factor:    *{{ratio .ProfitFactor}}*
- Win/Loss Ratio:   *{{ratio .WinLossRatio}}*
- Commission Paid:  *{{printf "%.2f" .CommissionPaid}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Trades}} |
`

// FormatOrderOrg renders one order as an Org list item with its facts in a
// PROPERTIES drawer.
func FormatOrderOrg(o OrderRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("** %s %s %.0f @ %.4f (%s)\n", o.Side, o.Symbol, o.Quantity, o.Price, shortID(o.OrderID)))
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ORDER_ID: %s\n", o.OrderID))
	b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", o.RunID))
	b.WriteString(fmt.Sprintf(":BAR: %d\n", o.BarIndex))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", o.Time.UTC().Format(time.RFC3339)))
	b.WriteString(":END:\n")
	return b.String()
}

// FormatOrdersOrg renders multiple orders separated by blank lines.
func FormatOrdersOrg(orders []OrderRecord) string {
	var b strings.Builder
	for i, o := range orders {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatOrderOrg(o))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
