package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rustyeddy/backtester/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded backtest runs",
	Long: `Query and display backtest runs recorded in a SQLite journal.

Subcommands:
  runs    - List the most recent runs
  run     - Show one run with its summary statistics
  orders  - List the orders filled during a run

Examples:
  backtester journal runs --limit 10
  backtester journal run <run-id>
  backtester journal orders <run-id>`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a run in Org format",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalOrdersCmd = &cobra.Command{
	Use:   "orders <run-id>",
	Short: "List the orders of a run in Org format",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOrders,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalOrdersCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./backtest.sqlite", "path to SQLite journal DB")
	journalRunsCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum number of runs (0 = all)")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(context.Background(), journalLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %-6s %-40s trades=%-4d return=%7.2f%%  value=%s\n",
			r.RunID,
			r.Created.Local().Format("2006-01-02 15:04"),
			r.Symbol,
			r.Strategy,
			r.Trades,
			r.ReturnPct,
			humanize.FormatFloat("#,###.##", r.FinalValue),
		)
	}
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetRun(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	s, err := journal.FormatRunOrg(rec)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)
	return nil
}

func runJournalOrders(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	orders, err := j.ListOrdersByRun(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}
	if len(orders) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No orders for run %s.\n", args[0])
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatOrdersOrg(orders))
	return nil
}
