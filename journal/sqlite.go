package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals into a SQLite database, one row per trade and one per
// equity step.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_id, symbol, quantity, entry_price, exit_price, close_time, realized_pl, win, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.TradeID, t.Symbol, t.Quantity, t.EntryPrice,
		t.ExitPrice, t.CloseTime, t.RealizedPL, t.Win, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, step, time, equity, peak_equity, drawdown_pct)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Step, e.Time, e.Equity, e.PeakEquity, e.DrawdownPct,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
