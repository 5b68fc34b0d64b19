package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Bar-by-bar backtesting of technical trading strategies",
	Long: `Backtester replays historical OHLCV bars through a trading strategy,
a position sizer and a cash/holdings portfolio.

It provides tools for:
  - Backtesting SMA/EMA cross, RSI, Bollinger Band and MACD strategies
  - Loading bars from CSV, Parquet or the Alpaca market-data API
  - Journaling runs, orders and equity curves to SQLite or CSV
  - Converting CSV bar files to Parquet

Complete documentation is available at https://github.com/rustyeddy/backtester`,
	SilenceUsage: true,
}

var logLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
