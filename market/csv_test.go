package market

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBarRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		row       []string
		wantOk    bool
		wantErr   bool
		checkFunc func(t *testing.T, b Bar)
	}{
		{
			name:   "valid row",
			row:    []string{"2024-01-02T00:00:00Z", "10", "12", "9", "11", "1500"},
			wantOk: true,
			checkFunc: func(t *testing.T, b Bar) {
				assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), b.Time)
				assert.Equal(t, 10.0, b.Open)
				assert.Equal(t, 12.0, b.High)
				assert.Equal(t, 9.0, b.Low)
				assert.Equal(t, 11.0, b.Close)
				assert.Equal(t, 1500.0, b.Volume)
			},
		},
		{
			name:   "date only without volume",
			row:    []string{"2024-01-02", "10", "12", "9", "11"},
			wantOk: true,
			checkFunc: func(t *testing.T, b Bar) {
				assert.Equal(t, 2024, b.Time.Year())
				assert.Equal(t, 0.0, b.Volume)
			},
		},
		{
			name:   "nano timestamp",
			row:    []string{"2024-01-02T09:30:00.123456789Z", "1", "1", "1", "1"},
			wantOk: true,
		},
		{
			name:   "row with whitespace",
			row:    []string{" 2024-01-02 ", " 10 ", " 12 ", " 9 ", " 11 ", " "},
			wantOk: true,
			checkFunc: func(t *testing.T, b Bar) {
				assert.Equal(t, 11.0, b.Close)
			},
		},
		{
			name:   "too few columns",
			row:    []string{"2024-01-02", "10", "12", "9"},
			wantOk: false,
		},
		{
			name:   "empty timestamp",
			row:    []string{"", "10", "12", "9", "11"},
			wantOk: false,
		},
		{
			name:    "invalid timestamp",
			row:     []string{"not-a-time", "10", "12", "9", "11"},
			wantErr: true,
		},
		{
			name:    "invalid close",
			row:     []string{"2024-01-02", "10", "12", "9", "eleven"},
			wantErr: true,
		},
		{
			name:    "invalid volume",
			row:     []string{"2024-01-02", "10", "12", "9", "11", "lots"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, ok, err := parseBarRow(tt.row)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if ok && tt.checkFunc != nil {
				tt.checkFunc(t, b)
			}
		})
	}
}

func TestInRange(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 24, 12, 0, 0, 0, time.UTC)
	before := base.Add(-time.Hour)
	after := base.Add(time.Hour)

	tests := []struct {
		name     string
		t        time.Time
		from, to time.Time
		want     bool
	}{
		{"no range", base, time.Time{}, time.Time{}, true},
		{"within range", base, before, after, true},
		{"before range", before, base, after, false},
		{"after range", after, before, base, false},
		{"at from boundary", base, base, after, true},
		{"at to boundary", base, before, base, false},
		{"only from constraint", after, base, time.Time{}, true},
		{"only to constraint", before, time.Time{}, base, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, inRange(tt.t, tt.from, tt.to))
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSourceFetch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "ACME.csv", strings.Join([]string{
		"time,open,high,low,close,volume",
		"2024-01-03,11,12,10,11.5,100",
		"2024-01-01,10,11,9,10.5,100",
		"",
		"2024-01-02,10.5,11,10,10.8,100",
		"2024-01-04,11.5,13,11,12.5,100",
		"2024-01-02,10.5,11,10,10.9,200",
	}, "\n"))

	src := &CSVSource{Dir: dir}

	t.Run("sorted and deduplicated", func(t *testing.T) {
		t.Parallel()

		s, err := src.Fetch(context.Background(), "acme", time.Time{}, time.Time{}, Daily)
		require.NoError(t, err)
		require.Equal(t, 4, s.Len())
		assert.Equal(t, "acme", s.Symbol)
		assert.Equal(t, []float64{10.5, 10.9, 11.5, 12.5}, s.Closes())
	})

	t.Run("filters to [start, end)", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
		s, err := src.Fetch(context.Background(), "ACME", start, end, Daily)
		require.NoError(t, err)
		assert.Equal(t, []float64{10.9, 11.5}, s.Closes())
	})

	t.Run("missing file is unavailable", func(t *testing.T) {
		t.Parallel()

		s, err := src.Fetch(context.Background(), "NOPE", time.Time{}, time.Time{}, Daily)
		assert.True(t, errors.Is(err, ErrUnavailable))
		require.NotNil(t, s)
		assert.True(t, s.Empty())
	})

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()

		p := writeFile(t, t.TempDir(), "bars.csv", "2024-02-01,1,1,1,1\n2024-02-02,2,2,2,2\n")
		s, err := (&CSVSource{Path: p}).Fetch(context.Background(), "ANY", time.Time{}, time.Time{}, Daily)
		require.NoError(t, err)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("bad row is an error", func(t *testing.T) {
		t.Parallel()

		p := writeFile(t, t.TempDir(), "bad.csv", "2024-02-01,1,1,1,x\n")
		_, err := (&CSVSource{Path: p}).Fetch(context.Background(), "ANY", time.Time{}, time.Time{}, Daily)
		assert.Error(t, err)
	})
}

func TestWriteCSVReadBack(t *testing.T) {
	t.Parallel()

	s := testSeries(t, 10, 11, 12.25)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))

	rd := NewCSVBarReader(&buf, time.Time{}, time.Time{})
	var got []float64
	for {
		b, ok, err := rd.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, b.Close)
	}
	assert.Equal(t, []float64{10, 11, 12.25}, got)
}
