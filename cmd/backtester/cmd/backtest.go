package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/pkg/logx"
	"github.com/rustyeddy/backtester/sizing"
	"github.com/rustyeddy/backtester/strategies"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy over historical bars",
	Long: `Backtest replays daily (or intraday) bars for one symbol through a strategy.

Supported strategies:
  - sma-cross:  SMA short/long crossover (--short, --long)
  - ema-cross:  EMA short/long crossover (--short, --long)
  - rsi:        RSI threshold crossings (--period, --lower, --upper)
  - bollinger:  Bollinger Band mean reversion (--period, --k)
  - macd:       MACD/signal line crossover (--fast, --slow, --signal)

Settings come from --config when given; flags override the file.

Example:
  backtester backtest --symbol AAPL --data-dir ./data --strategy sma-cross --short 10 --long 30
  backtester backtest -c backtest.yaml --db runs.sqlite --overlays overlays.csv`,
	RunE: runBacktest,
}

var (
	btConfigPath string

	btSymbol     string
	btStart      string
	btEnd        string
	btTimeframe  string
	btCash       float64
	btCommission float64

	btStrategy string
	btShort    int
	btLong     int
	btPeriod   int
	btLower    float64
	btUpper    float64
	btK        float64
	btFast     int
	btSlow     int
	btSignal   int

	btSizer     string
	btSizeValue float64

	btSource  string
	btDataDir string
	btCSVPath string
	btRetries int

	btDBPath   string
	btCSVDir   string
	btOverlays string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	f := backtestCmd.Flags()
	f.StringVarP(&btConfigPath, "config", "c", "", "path to YAML/JSON config file")

	f.StringVarP(&btSymbol, "symbol", "s", "AAPL", "symbol to backtest")
	f.StringVar(&btStart, "start", "2023-01-01", "first day (YYYY-MM-DD, inclusive)")
	f.StringVar(&btEnd, "end", "2024-01-01", "last day (YYYY-MM-DD, exclusive)")
	f.StringVar(&btTimeframe, "timeframe", "1d", "bar timeframe (1m, 1h, 1d, 1w, 1mo)")
	f.Float64VarP(&btCash, "cash", "b", 100_000, "initial cash")
	f.Float64Var(&btCommission, "commission", 0.0003, "commission rate per fill (0.0003 = 3bp)")

	f.StringVar(&btStrategy, "strategy", "sma-cross", "strategy name")
	f.IntVar(&btShort, "short", 10, "sma/ema-cross: short period")
	f.IntVar(&btLong, "long", 30, "sma/ema-cross: long period")
	f.IntVar(&btPeriod, "period", 0, "rsi/bollinger: lookback period (0 = strategy default)")
	f.Float64Var(&btLower, "lower", 30, "rsi: oversold threshold")
	f.Float64Var(&btUpper, "upper", 70, "rsi: overbought threshold")
	f.Float64Var(&btK, "k", 2.0, "bollinger: band width in standard deviations")
	f.IntVar(&btFast, "fast", 12, "macd: fast EMA period")
	f.IntVar(&btSlow, "slow", 26, "macd: slow EMA period")
	f.IntVar(&btSignal, "signal", 9, "macd: signal EMA period")

	f.StringVar(&btSizer, "sizer", "cash-pct", "position sizer (fixed-qty, fixed-cash, cash-pct)")
	f.Float64Var(&btSizeValue, "size", 0.95, "sizer value: shares, cash amount or cash fraction")

	f.StringVar(&btSource, "source", "csv", "bar source (csv, parquet, alpaca)")
	f.StringVar(&btDataDir, "data-dir", "./data", "directory holding <SYMBOL>.csv or <SYMBOL>.parquet")
	f.StringVar(&btCSVPath, "csv", "", "single CSV file to read instead of --data-dir")
	f.IntVar(&btRetries, "retries", 3, "fetch attempts before giving up")

	f.StringVarP(&btDBPath, "db", "d", "", "SQLite journal path")
	f.StringVar(&btCSVDir, "csv-dir", "", "directory for CSV journal files")
	f.StringVar(&btOverlays, "overlays", "", "write indicator overlays to this CSV file")
}

// backtestConfig merges the config file (or defaults) with the flags the
// user actually set.
func backtestConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if btConfigPath != "" {
		loaded, err := config.LoadFromFile(btConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := func(name string, apply func()) {
		if btConfigPath == "" || flags.Changed(name) {
			apply()
		}
	}

	set("symbol", func() { cfg.Backtest.Symbol = btSymbol })
	set("start", func() { cfg.Backtest.Start = btStart })
	set("end", func() { cfg.Backtest.End = btEnd })
	set("timeframe", func() { cfg.Backtest.Timeframe = btTimeframe })
	set("cash", func() { cfg.Backtest.InitialCash = btCash })
	set("commission", func() { cfg.Backtest.Commission = btCommission })

	if btConfigPath == "" || flags.Changed("strategy") {
		cfg.Strategy = strategies.Config{Name: btStrategy}
	}
	set("short", func() { cfg.Strategy.Short = btShort })
	set("long", func() { cfg.Strategy.Long = btLong })
	set("period", func() { cfg.Strategy.Period = btPeriod })
	set("lower", func() { cfg.Strategy.Lower = btLower })
	set("upper", func() { cfg.Strategy.Upper = btUpper })
	set("k", func() { cfg.Strategy.K = btK })
	set("fast", func() { cfg.Strategy.Fast = btFast })
	set("slow", func() { cfg.Strategy.Slow = btSlow })
	set("signal", func() { cfg.Strategy.Signal = btSignal })

	set("sizer", func() { cfg.Sizer.Kind = btSizer })
	set("size", func() { cfg.Sizer.Value = btSizeValue })

	set("source", func() { cfg.Data.Source = btSource })
	set("data-dir", func() { cfg.Data.Dir = btDataDir })
	set("csv", func() { cfg.Data.Path = btCSVPath })
	set("retries", func() { cfg.Data.Retries = btRetries })

	set("db", func() { cfg.Journal.DBPath = btDBPath })
	set("csv-dir", func() { cfg.Journal.CSVDir = btCSVDir })

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := backtestConfig(cmd.Flags())
	if err != nil {
		return err
	}
	log := logx.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	src, dataset, err := buildSource(cfg.Data, log)
	if err != nil {
		return err
	}
	sizer, err := sizing.New(cfg.Sizer)
	if err != nil {
		return fmt.Errorf("sizer: %w", err)
	}
	stratJSON, err := cfg.Strategy.JSON()
	if err != nil {
		return err
	}
	start, end, err := cfg.Backtest.Range()
	if err != nil {
		return err
	}
	tf, err := market.ParseTimeframe(cfg.Backtest.Timeframe)
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	runner := &backtest.Runner{
		Source:         src,
		Symbol:         cfg.Backtest.Symbol,
		Start:          start,
		End:            end,
		Timeframe:      tf,
		Strategy:       backtest.FromConfig(cfg.Strategy),
		StrategyConfig: stratJSON,
		Sizer:          sizer,
		InitialCash:    cfg.Backtest.InitialCash,
		Commission:     cfg.Backtest.Commission,
		Journal:        j,
		Dataset:        dataset,
		Logger:         log,
	}

	out, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	backtest.PrintReport(cmd.OutOrStdout(), out.Record)

	if btOverlays != "" {
		if err := writeOverlays(btOverlays, out); err != nil {
			return fmt.Errorf("overlays: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nOverlays:       %s\n", btOverlays)
	}
	return nil
}

func writeOverlays(path string, out backtest.Outcome) error {
	charted, ok := out.Strategy.(strategies.Charted)
	if !ok {
		return fmt.Errorf("strategy %s has no overlays", out.Strategy.Name())
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := backtest.WriteOverlaysCSV(fh, out.Result.Series, charted.Overlays()); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
