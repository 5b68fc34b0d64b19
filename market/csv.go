package market

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CSVBarReader reads bar CSV rows:
//
//	time,open,high,low,close[,volume]
//
// where time is RFC3339, RFC3339Nano, "2006-01-02 15:04:05" or "2006-01-02".
//
// It optionally filters bars to [From, To) if provided.
// A header row ("time,..." or "date,...") is allowed.
// Empty/short rows are skipped.
type CSVBarReader struct {
	r    *csv.Reader
	from time.Time
	to   time.Time

	sawFirst bool
}

func NewCSVBarReader(r io.Reader, from, to time.Time) *CSVBarReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	return &CSVBarReader{r: cr, from: from, to: to}
}

// Next returns the next bar in range. It returns ok=false, err=nil at EOF.
func (f *CSVBarReader) Next() (Bar, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return Bar{}, false, nil
		}
		if err != nil {
			return Bar{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !f.sawFirst {
			f.sawFirst = true
			head := strings.ToLower(strings.TrimSpace(row[0]))
			if head == "time" || head == "date" || head == "timestamp" {
				continue
			}
		}

		b, ok, err := parseBarRow(row)
		if err != nil {
			return Bar{}, false, err
		}
		if !ok {
			continue
		}
		if !inRange(b.Time, f.from, f.to) {
			continue
		}
		return b, true, nil
	}
}

func parseBarRow(row []string) (Bar, bool, error) {
	// Need at least: time,open,high,low,close
	if len(row) < 5 {
		return Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return Bar{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return Bar{}, false, err
	}

	var vals [5]float64
	n := 4
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		n = 5
	}
	names := [5]string{"open", "high", "low", "close", "volume"}
	for i := 0; i < n; i++ {
		s := strings.TrimSpace(row[i+1])
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Bar{}, false, fmt.Errorf("bad %s %q: %w", names[i], row[i+1], err)
		}
		vals[i] = v
	}

	return Bar{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true, nil
}

func parseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q: %w", s, firstErr)
}

// CSVSource serves bars from CSV files. When Path is set every symbol is read
// from that file, otherwise from Dir/<SYMBOL>.csv.
type CSVSource struct {
	Dir  string
	Path string
}

func (s *CSVSource) path(symbol string) string {
	if s.Path != "" {
		return s.Path
	}
	return filepath.Join(s.Dir, strings.ToUpper(symbol)+".csv")
}

func (s *CSVSource) Fetch(ctx context.Context, symbol string, start, end time.Time, tf Timeframe) (*BarSeries, error) {
	path := s.path(symbol)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return EmptySeries(symbol, tf), fmt.Errorf("%w: %s: %w", ErrUnavailable, symbol, err)
		}
		return nil, err
	}
	defer f.Close()

	rd := NewCSVBarReader(f, start, end)
	var bars []Bar
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, ok, err := rd.Next()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if !ok {
			break
		}
		bars = append(bars, b)
	}

	return NewBarSeries(symbol, tf, sortBars(bars))
}

// sortBars orders bars by time and keeps the last bar seen for a timestamp.
func sortBars(bars []Bar) []Bar {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// WriteCSV writes the series in the format CSVBarReader reads.
func WriteCSV(w io.Writer, s *BarSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for i := 0; i < s.Len(); i++ {
		b := s.Bar(i)
		if err := cw.Write([]string{
			b.Time.Format(time.RFC3339),
			ff(b.Open),
			ff(b.High),
			ff(b.Low),
			ff(b.Close),
			ff(b.Volume),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ff(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
