package market

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// BarRecord is the Parquet schema for stored bars.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// ParquetSource serves bars from Dir/<SYMBOL>.parquet.
type ParquetSource struct {
	Dir string
}

func NewParquetSource(dir string) *ParquetSource {
	return &ParquetSource{Dir: dir}
}

func (s *ParquetSource) path(symbol string) string {
	return filepath.Join(s.Dir, strings.ToUpper(symbol)+".parquet")
}

func (s *ParquetSource) Fetch(ctx context.Context, symbol string, start, end time.Time, tf Timeframe) (*BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.path(symbol)
	rows, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return EmptySeries(symbol, tf), fmt.Errorf("%w: %s: %w", ErrUnavailable, symbol, err)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	bars := make([]Bar, 0, len(rows))
	for _, r := range rows {
		if r.Symbol != "" && !strings.EqualFold(r.Symbol, symbol) {
			continue
		}
		t := time.UnixMilli(r.Timestamp).UTC()
		if !inRange(t, start, end) {
			continue
		}
		bars = append(bars, Bar{
			Time:   t,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}

	return NewBarSeries(symbol, tf, sortBars(bars))
}

// WriteParquet stores the series at Dir/<SYMBOL>.parquet, creating Dir.
func (s *ParquetSource) WriteParquet(series *BarSeries) error {
	path := s.path(series.Symbol)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	records := make([]BarRecord, series.Len())
	for i := range records {
		b := series.Bar(i)
		records[i] = BarRecord{
			Symbol:    strings.ToUpper(series.Symbol),
			Timestamp: b.Time.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return parquet.WriteFile(path, records)
}
