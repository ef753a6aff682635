// Package journal persists replay output: one TradeRecord per closed
// round-trip and one EquitySnapshot per replay step. Backends: CSV files,
// SQLite, or a no-op sink.
package journal

import "time"

// TradeRecord is a closed round-trip produced by the replay fold.
type TradeRecord struct {
	RunID      string    `csv:"run_id"`
	TradeID    string    `csv:"trade_id"`
	Symbol     string    `csv:"symbol"`
	Quantity   float64   `csv:"quantity"`
	EntryPrice float64   `csv:"entry_price"`
	ExitPrice  float64   `csv:"exit_price"`
	CloseTime  time.Time `csv:"close_time"`
	RealizedPL float64   `csv:"realized_pl"`
	Win        bool      `csv:"win"`
	Reason     string    `csv:"reason"`
}

// EquitySnapshot is the account state after one replay step.
type EquitySnapshot struct {
	RunID       string    `csv:"run_id"`
	Step        int       `csv:"step"`
	Time        time.Time `csv:"time"`
	Equity      float64   `csv:"equity"`
	PeakEquity  float64   `csv:"peak_equity"`
	DrawdownPct float64   `csv:"drawdown_pct"`
}

// Journal records replay output.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop is a Journal that discards everything.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
