package backtest

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rustyeddy/backtester/journal"
)

func money(x float64) string {
	return humanize.FormatFloat("#,###.##", x)
}

func ratio(x float64) string {
	if math.IsInf(x, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", x)
}

// PrintReport writes a sectioned, human readable summary of a run.
func PrintReport(w io.Writer, r journal.RunRecord) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:         %s\n", r.RunID)
	fmt.Fprintf(w, "Created:        %s\n", r.Created.Format(time.RFC3339))
	fmt.Fprintf(w, "Strategy:       %s\n", r.Strategy)
	fmt.Fprintf(w, "Sizer:          %s\n", r.Sizer)
	fmt.Fprintf(w, "Symbol:         %s\n", r.Symbol)
	fmt.Fprintf(w, "Timeframe:      %s\n", r.Timeframe)
	if r.Dataset != "" {
		fmt.Fprintf(w, "Dataset:        %s\n", r.Dataset)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:          %s\n", r.Start.Format("2006-01-02"))
	fmt.Fprintf(w, "End:            %s\n", r.End.Format("2006-01-02"))
	fmt.Fprintf(w, "Bars:           %s\n", humanize.Comma(int64(r.Bars)))

	if r.Bars == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No bars available; nothing was traded.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:         %d\n", r.Trades)
	fmt.Fprintf(w, "Wins:           %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:         %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:       %.2f%%\n", r.WinRate)
	fmt.Fprintf(w, "Profit Factor:  %s\n", ratio(r.ProfitFactor))
	fmt.Fprintf(w, "Win/Loss Ratio: %s\n", ratio(r.WinLossRatio))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Initial Cash:   %s\n", money(r.InitialCash))
	fmt.Fprintf(w, "Final Cash:     %s\n", money(r.FinalCash))
	fmt.Fprintf(w, "Final Value:    %s\n", money(r.FinalValue))
	fmt.Fprintf(w, "Net P/L:        %s\n", money(r.NetPL))
	fmt.Fprintf(w, "Return:         %.2f%%\n", r.ReturnPct)
	fmt.Fprintf(w, "Max Drawdown:   %.2f%%\n", r.MaxDDPct)
	fmt.Fprintf(w, "Commission:     %s (rate %.4f)\n", money(r.CommissionPaid), r.CommissionRate)
}
