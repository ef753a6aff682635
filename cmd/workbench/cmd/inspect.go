package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/workbench/result"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <result-file>",
	Short: "Report which data sources a result file carries",
	Long: `Inspect a raw backtest result and report which of the possible data
sources decoded: profit/loss entries, chart series, orders, and summary
statistics. Useful when a result renders as "no trades" and you want to
know why.

Example:
  workbench inspect results/run.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	raw, err := result.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Result: %s\n\n", args[0])
	fmt.Printf("  profitLoss entries:  %d\n", len(raw.ProfitLoss))
	fmt.Printf("  orders:              %d\n", len(raw.Orders))

	fmt.Printf("  charts:              %d\n", len(raw.Charts))
	chartNames := make([]string, 0, len(raw.Charts))
	for name := range raw.Charts {
		chartNames = append(chartNames, name)
	}
	sort.Strings(chartNames)
	for _, name := range chartNames {
		chart := raw.Charts[name]
		for seriesName, series := range chart.Series {
			fmt.Printf("    %s / %s: %d usable points\n", name, seriesName, len(series.Points()))
		}
	}

	fmt.Printf("  statistics sections:\n")
	fmt.Printf("    total_performance_statistics: %d keys\n", len(raw.TotalPerformanceStats))
	fmt.Printf("    statistics:                   %d keys\n", len(raw.Statistics))
	fmt.Printf("    portfolio statistics:         %d keys\n", len(raw.PortfolioStatistics))
	fmt.Printf("    runtime statistics:           %d keys\n", len(raw.RuntimeStatistics))

	if len(raw.Orders) > 0 {
		orders := raw.SortedOrders()
		fmt.Printf("\n  order period: %s .. %s\n",
			orders[0].Time.Format("2006-01-02 15:04:05"),
			orders[len(orders)-1].Time.Format("2006-01-02 15:04:05"))
	}
	return nil
}
