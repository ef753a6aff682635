package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/workbench/metrics"
	"github.com/rustyeddy/workbench/result"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <result-file>",
	Short: "Extract summary statistics from a backtest result",
	Long: `Extract headline statistics (return, drawdown, win rate, trades,
Sharpe) from whichever summary-statistics section the result carries.

Example:
  workbench metrics results/run.json`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	raw, err := result.Load(args[0])
	if err != nil {
		return err
	}

	s := metrics.Extract(raw)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Total Return", fmt.Sprintf("%+.2f%%", s.TotalReturnPct)})
	table.Append([]string{"Max Drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdownPct)})
	table.Append([]string{"Win Rate", fmt.Sprintf("%.1f%%", s.WinRatePct)})
	table.Append([]string{"Total Trades", fmt.Sprintf("%d", s.TotalTrades)})
	table.Append([]string{"Sharpe Ratio", fmt.Sprintf("%.2f", s.SharpeRatio)})
	table.Render()

	if start := metrics.StartEquity(raw, 0); start > 0 {
		fmt.Printf("Start Equity: $%.2f\n", start)
	}
	if end := metrics.EndEquity(raw); end > 0 {
		fmt.Printf("End Equity:   $%.2f\n", end)
	}
	return nil
}
