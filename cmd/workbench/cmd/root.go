package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/workbench/config"
)

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Reconstruct equity curves and replay orders from backtest results",
	Long: `Workbench interprets raw backtest results produced by an external engine.

It provides tools for:
  - Building a time-ordered equity curve from whatever the result contains
  - Replaying the order list step by step with running risk metrics
  - Extracting headline statistics from inconsistent summary dictionaries
  - Journaling replay output to CSV or SQLite
  - Inspecting which data sources a result file actually carries`,
}

var cfgPath string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (YAML or JSON)")
}

// loadConfig returns the file-backed config when --config is set, else
// defaults.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgPath)
}
