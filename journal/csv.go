package journal

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// CSV journals trades and equity snapshots to two CSV files. Records are
// buffered and written on Close so the files carry a single header row.
type CSV struct {
	tradesPath string
	equityPath string
	trades     []TradeRecord
	equity     []EquitySnapshot
}

// NewCSV creates (truncating) the two output files up front so path
// problems surface before a replay starts.
func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	for _, path := range []string{tradesPath, equityPath} {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create journal file: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("create journal file: %w", err)
		}
	}
	return &CSV{tradesPath: tradesPath, equityPath: equityPath}, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	j.trades = append(j.trades, t)
	return nil
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	j.equity = append(j.equity, e)
	return nil
}

// Close flushes both files.
func (j *CSV) Close() error {
	tf, err := os.Create(j.tradesPath)
	if err != nil {
		return fmt.Errorf("write trades csv: %w", err)
	}
	defer tf.Close()
	if err := gocsv.MarshalFile(&j.trades, tf); err != nil {
		return fmt.Errorf("write trades csv: %w", err)
	}

	ef, err := os.Create(j.equityPath)
	if err != nil {
		return fmt.Errorf("write equity csv: %w", err)
	}
	defer ef.Close()
	if err := gocsv.MarshalFile(&j.equity, ef); err != nil {
		return fmt.Errorf("write equity csv: %w", err)
	}
	return nil
}
