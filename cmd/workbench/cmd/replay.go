package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/workbench/config"
	"github.com/rustyeddy/workbench/journal"
	"github.com/rustyeddy/workbench/replay"
	"github.com/rustyeddy/workbench/result"
)

var replayCmd = &cobra.Command{
	Use:   "replay <result-file>",
	Short: "Replay a result's orders and report running portfolio state",
	Long: `Replay the result's order list in timestamp order, reconstructing
positions, equity, drawdown and trade statistics step by step.

By default the replay runs straight through and prints the final state.
With --follow, orders are played back on a timer and each step is printed
as it happens. Either mode can journal its output to CSV or SQLite.

Examples:
  workbench replay results/run.json
  workbench replay results/run.json --follow --interval 250ms
  workbench replay results/run.json --db replay.sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replayCapital  float64
	replayInterval time.Duration
	replayFollow   bool
	replayDBPath   string
	replayTrades   string
	replayEquity   string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Float64Var(&replayCapital, "capital", 0, "initial capital (default from config)")
	replayCmd.Flags().DurationVar(&replayInterval, "interval", 0, "playback tick interval (default from config)")
	replayCmd.Flags().BoolVar(&replayFollow, "follow", false, "timed playback with per-step output (also via playback.autostart)")
	replayCmd.Flags().StringVar(&replayDBPath, "db", "", "journal to a SQLite database")
	replayCmd.Flags().StringVar(&replayTrades, "trades", "", "journal trades to a CSV file (with --equity-out)")
	replayCmd.Flags().StringVar(&replayEquity, "equity-out", "", "journal equity steps to a CSV file (with --trades)")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	capital := cfg.Account.InitialCapital
	if replayCapital > 0 {
		capital = replayCapital
	}
	interval := cfg.Playback.Interval()
	if replayInterval > 0 {
		interval = replayInterval
	}

	raw, err := result.Load(args[0])
	if err != nil {
		return err
	}

	engine, err := replay.NewEngine(raw, capital)
	if err != nil {
		return err
	}
	if engine.OrdersCount() == 0 {
		fmt.Println("No orders to replay.")
		return nil
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	fmt.Printf("Replaying %d orders from: %s\n\n", engine.OrdersCount(), args[0])

	var final replay.Snapshot
	if replayFollow || cfg.Playback.Autostart {
		final, err = followReplay(engine, j, interval)
	} else {
		final, err = replay.Record(engine, j, "")
	}
	if err != nil {
		return fmt.Errorf("replay error: %w", err)
	}

	printSnapshot(final)
	return nil
}

// followReplay runs timed playback, printing each step, and blocks until
// the player stops itself at the last order.
func followReplay(engine *replay.Engine, j journal.Journal, interval time.Duration) (replay.Snapshot, error) {
	done := make(chan replay.Snapshot, 1)
	total := engine.OrdersCount()

	player := replay.NewPlayer(engine, replay.Options{
		Interval: interval,
		Journal:  j,
		OnStep: func(snap replay.Snapshot) {
			if snap.Order != nil {
				fmt.Printf("[%3.0f%%] %s %s %.4f %s @ %.2f  equity=$%.2f dd=%.2f%%\n",
					snap.ProgressPct,
					snap.Order.Time.Format(time.RFC3339),
					snap.Order.Direction,
					snap.Order.Quantity,
					snap.Order.ResolveSymbol(),
					snap.Order.Price,
					snap.Equity,
					snap.CurrentDrawdownPct,
				)
			}
			if snap.Index == total {
				done <- snap
			}
		},
	})

	player.Play()
	final := <-done
	fmt.Println()
	return final, nil
}

func printSnapshot(s replay.Snapshot) {
	fmt.Printf("Replay complete (%d orders)\n", s.Index)
	fmt.Printf("  Equity:        $%.2f\n", s.Equity)
	fmt.Printf("  Peak Equity:   $%.2f\n", s.PeakEquity)
	fmt.Printf("  Total P/L:     $%.2f\n", s.TotalPnL)
	fmt.Printf("  Return:        %+.2f%%\n", s.ReturnPct)
	fmt.Printf("  Max Drawdown:  %.2f%%\n", s.MaxDrawdownPct)
	fmt.Printf("  Trades:        %d (%d wins / %d losses, %.1f%% win rate)\n",
		s.TotalTrades, s.Winning, s.Losing, s.WinRatePct)
	for _, w := range s.Warnings {
		fmt.Printf("  Warning: %s\n", w)
	}
}

// openJournal builds the journal sink from flags, falling back to the
// config file's journal section.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch {
	case replayDBPath != "":
		return journal.NewSQLite(replayDBPath)
	case replayTrades != "" && replayEquity != "":
		return journal.NewCSV(replayTrades, replayEquity)
	case replayTrades != "" || replayEquity != "":
		return nil, fmt.Errorf("--trades and --equity-out must be used together")
	}

	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	default:
		return journal.Nop{}, nil
	}
}
