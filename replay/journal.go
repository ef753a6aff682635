package replay

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/rustyeddy/workbench/internal/id"
	"github.com/rustyeddy/workbench/journal"
)

// journalSink persists replay output during sequential playback: one
// equity snapshot per processed step, one trade record per newly closed
// round-trip. Jumps (seek/skip) realign the closed-trade cursor without
// writing, so a later sequential run never double-records.
type journalSink struct {
	mu       sync.Mutex
	j        journal.Journal
	runID    string
	recorded int // closed trades already written
}

func newJournalSink(j journal.Journal, runID string) *journalSink {
	if runID == "" {
		runID = id.New()
	}
	return &journalSink{j: j, runID: runID}
}

func (s *journalSink) runIDValue() string { return s.runID }

func (s *journalSink) record(snap Snapshot) {
	if s.j == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	eq := journal.EquitySnapshot{
		RunID:       s.runID,
		Step:        snap.Index,
		Equity:      snap.Equity,
		PeakEquity:  snap.PeakEquity,
		DrawdownPct: snap.CurrentDrawdownPct,
	}
	if snap.Order != nil {
		eq.Time = snap.Order.Time.Time
	}
	if err := s.j.RecordEquity(eq); err != nil {
		log.WithError(err).Warn("journal equity snapshot failed")
	}

	for _, trade := range snap.Closed[s.recorded:] {
		rec := journal.TradeRecord{
			RunID:      s.runID,
			TradeID:    id.New(),
			Symbol:     trade.Symbol,
			Quantity:   trade.Quantity,
			EntryPrice: trade.EntryPrice,
			ExitPrice:  trade.ExitPrice,
			CloseTime:  trade.ClosedAt.Time,
			RealizedPL: trade.PnL,
			Win:        trade.Win,
			Reason:     "SellFill",
		}
		if err := s.j.RecordTrade(rec); err != nil {
			log.WithError(err).Warn("journal trade record failed")
		}
	}
	s.recorded = len(snap.Closed)
}

func (s *journalSink) align(closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = closed
}

func (s *journalSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = 0
}
