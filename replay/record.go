package replay

import "github.com/rustyeddy/workbench/journal"

// Record replays the full order sequence one step at a time, writing each
// step to the journal, and returns the final snapshot. It is the
// non-interactive equivalent of letting a Player run to completion.
func Record(e *Engine, j journal.Journal, runID string) (Snapshot, error) {
	sink := newJournalSink(j, runID)

	snap, err := e.StateAt(0)
	if err != nil {
		return Snapshot{}, err
	}
	for i := 1; i <= e.OrdersCount(); i++ {
		snap, err = e.StateAt(i)
		if err != nil {
			return Snapshot{}, err
		}
		sink.record(snap)
	}
	return snap, nil
}
