package cmd

import (
	"fmt"
	"log/slog"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
)

// buildSource returns the configured bar source wrapped in retries, plus a
// short description for the run record.
func buildSource(d config.DataConfig, log *slog.Logger) (market.BarSource, string, error) {
	var (
		src     market.BarSource
		dataset string
	)
	switch d.Source {
	case "csv":
		src = &market.CSVSource{Dir: d.Dir, Path: d.Path}
		dataset = "csv:" + d.Dir
		if d.Path != "" {
			dataset = "csv:" + d.Path
		}
	case "parquet":
		src = market.NewParquetSource(d.Dir)
		dataset = "parquet:" + d.Dir
	case "alpaca":
		key, secret := d.Alpaca.Credentials()
		as := market.NewAlpacaSource(key, secret, d.Alpaca.DataURL)
		if d.Alpaca.Feed != "" {
			as.Feed = marketdata.Feed(d.Alpaca.Feed)
		}
		src = as
		dataset = fmt.Sprintf("alpaca:%s", as.Feed)
	default:
		return nil, "", fmt.Errorf("unknown data source %q", d.Source)
	}

	delay, err := d.Delay()
	if err != nil {
		return nil, "", err
	}
	attempts := d.Retries
	if attempts < 1 {
		attempts = 1
	}
	return market.NewRetrySource(src, attempts, delay, log), dataset, nil
}

// openJournal opens the SQLite and/or CSV journals. It returns nil when
// neither is configured.
func openJournal(c config.JournalConfig) (journal.Journal, error) {
	var js []journal.Journal
	if c.DBPath != "" {
		db, err := journal.NewSQLite(c.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		js = append(js, db)
	}
	if c.CSVDir != "" {
		cj, err := journal.NewCSV(c.CSVDir)
		if err != nil {
			for _, j := range js {
				_ = j.Close()
			}
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		js = append(js, cj)
	}

	switch len(js) {
	case 0:
		return nil, nil
	case 1:
		return js[0], nil
	}
	return journal.Multi(js...), nil
}
