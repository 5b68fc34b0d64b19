package backtest

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// WriteOverlaysCSV writes one row per bar with the close and every overlay
// value. Invalid indicator values are left blank.
func WriteOverlaysCSV(w io.Writer, series *market.BarSeries, overlays []indicators.Series) error {
	cw := csv.NewWriter(w)

	header := []string{"time", "close"}
	for _, o := range overlays {
		header = append(header, o.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < series.Len(); i++ {
		b := series.Bar(i)
		row := []string{b.Time.UTC().Format(time.RFC3339), strconv.FormatFloat(b.Close, 'f', -1, 64)}
		for _, o := range overlays {
			v, ok := o.At(i)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
