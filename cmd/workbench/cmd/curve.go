package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/workbench/equity"
	"github.com/rustyeddy/workbench/result"
)

var curveCmd = &cobra.Command{
	Use:   "curve <result-file>",
	Short: "Build the equity curve from a backtest result",
	Long: `Build a time-ordered equity curve from a raw backtest result.

Three sources are tried in priority order: realized profit/loss entries,
a pre-computed equity chart series, and reconstruction from the order
list. Result files may be .json, .json.xz or .zip.

Examples:
  workbench curve results/run.json
  workbench curve results/run.zip --csv curve.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runCurve,
}

var (
	curveCapital float64
	curveCSVPath string
)

func init() {
	rootCmd.AddCommand(curveCmd)

	curveCmd.Flags().Float64Var(&curveCapital, "capital", 0, "initial capital (default from config)")
	curveCmd.Flags().StringVar(&curveCSVPath, "csv", "", "export the curve to a CSV file")
}

type curveRow struct {
	Time   string  `csv:"time"`
	Equity float64 `csv:"equity"`
}

func runCurve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	capital := cfg.Account.InitialCapital
	if curveCapital > 0 {
		capital = curveCapital
	}

	raw, err := result.Load(args[0])
	if err != nil {
		return err
	}

	points, err := equity.Build(raw, capital)
	if err != nil {
		return fmt.Errorf("build curve: %w", err)
	}
	if len(points) == 0 {
		fmt.Println("No trades: the result carries no usable equity data.")
		return nil
	}

	summary := equity.Summarize(points, capital)
	fmt.Printf("Equity curve: %d points\n", summary.Points)
	fmt.Printf("  Period:       %s .. %s\n",
		points[0].Time.Format(time.RFC3339), points[len(points)-1].Time.Format(time.RFC3339))
	fmt.Printf("  Final Equity: $%.2f\n", summary.FinalEquity)
	fmt.Printf("  Return:       %+.2f%%\n", summary.TotalReturnPct)
	fmt.Printf("  Max Drawdown: %.2f%%\n", summary.MaxDrawdownPct)
	fmt.Printf("  Volatility:   %.2f%%\n", summary.VolatilityPct)
	fmt.Printf("  Sharpe:       %.2f\n", summary.SharpeRatio)

	if curveCSVPath == "" {
		return nil
	}

	rows := make([]curveRow, len(points))
	for i, p := range points {
		rows[i] = curveRow{Time: p.Time.Format(time.RFC3339), Equity: p.Equity}
	}
	f, err := os.Create(curveCSVPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Printf("\nCurve exported to: %s\n", curveCSVPath)
	return nil
}
