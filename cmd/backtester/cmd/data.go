package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/pkg/logx"
	"github.com/spf13/cobra"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Prepare bar data files",
	Long: `Convert and download OHLCV bar files.

Subcommands:
  convert - Convert a CSV bar file to Parquet
  fetch   - Download bars from Alpaca into a CSV file

Examples:
  backtester data convert --in AAPL.csv --symbol AAPL --out-dir ./data
  backtester data fetch --symbol AAPL --start 2023-01-01 --end 2024-01-01 --out ./data/AAPL.csv`,
}

var dataConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a CSV bar file to Parquet",
	Args:  cobra.NoArgs,
	RunE:  runDataConvert,
}

var dataFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download bars from Alpaca into CSV",
	Args:  cobra.NoArgs,
	RunE:  runDataFetch,
}

var (
	dataIn        string
	dataOut       string
	dataOutDir    string
	dataSymbol    string
	dataStart     string
	dataEnd       string
	dataTimeframe string
	dataFeed      string
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataConvertCmd)
	dataCmd.AddCommand(dataFetchCmd)

	dataCmd.PersistentFlags().StringVarP(&dataSymbol, "symbol", "s", "", "symbol the bars belong to (required)")
	dataCmd.PersistentFlags().StringVar(&dataTimeframe, "timeframe", "1d", "bar timeframe")

	dataConvertCmd.Flags().StringVarP(&dataIn, "in", "i", "", "input CSV file (required)")
	dataConvertCmd.Flags().StringVar(&dataOutDir, "out-dir", "./data", "directory for <SYMBOL>.parquet")
	dataConvertCmd.MarkFlagRequired("in")

	dataFetchCmd.Flags().StringVar(&dataStart, "start", "2023-01-01", "first day (YYYY-MM-DD)")
	dataFetchCmd.Flags().StringVar(&dataEnd, "end", "2024-01-01", "last day, exclusive (YYYY-MM-DD)")
	dataFetchCmd.Flags().StringVarP(&dataOut, "out", "o", "", "output CSV file (default <SYMBOL>.csv)")
	dataFetchCmd.Flags().StringVar(&dataFeed, "feed", "", "Alpaca data feed (iex, sip)")
}

func runDataConvert(cmd *cobra.Command, args []string) error {
	if dataSymbol == "" {
		return fmt.Errorf("--symbol is required")
	}
	tf, err := market.ParseTimeframe(dataTimeframe)
	if err != nil {
		return err
	}

	src := &market.CSVSource{Path: dataIn}
	series, err := src.Fetch(context.Background(), dataSymbol, time.Time{}, time.Time{}, tf)
	if err != nil {
		return fmt.Errorf("read %s: %w", dataIn, err)
	}

	dst := market.NewParquetSource(dataOutDir)
	if err := dst.WriteParquet(series); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d bars for %s to %s\n",
		series.Len(), strings.ToUpper(dataSymbol), dataOutDir)
	return nil
}

func runDataFetch(cmd *cobra.Command, args []string) error {
	if dataSymbol == "" {
		return fmt.Errorf("--symbol is required")
	}
	tf, err := market.ParseTimeframe(dataTimeframe)
	if err != nil {
		return err
	}
	bt := config.BacktestConfig{Start: dataStart, End: dataEnd}
	start, end, err := bt.Range()
	if err != nil {
		return err
	}

	var ac config.AlpacaConfig
	key, secret := ac.Credentials()
	src := market.NewAlpacaSource(key, secret, "")
	if dataFeed != "" {
		src.Feed = marketdata.Feed(dataFeed)
	}

	log := logx.New(cmd.ErrOrStderr(), logLevel, "text")
	series, err := market.NewRetrySource(src, 3, time.Second, log).
		Fetch(context.Background(), dataSymbol, start, end, tf)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", dataSymbol, err)
	}

	out := dataOut
	if out == "" {
		out = strings.ToUpper(dataSymbol) + ".csv"
	}
	fh, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := market.WriteCSV(fh, series); err != nil {
		_ = fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d bars for %s to %s\n",
		series.Len(), strings.ToUpper(dataSymbol), out)
	return nil
}
