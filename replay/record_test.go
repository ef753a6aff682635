package replay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/workbench/journal"
)

type memJournal struct {
	mu     sync.Mutex
	trades []journal.TradeRecord
	equity []journal.EquitySnapshot
}

func (m *memJournal) RecordTrade(t journal.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, t)
	return nil
}

func (m *memJournal) RecordEquity(e journal.EquitySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equity = append(m.equity, e)
	return nil
}

func (m *memJournal) Close() error { return nil }

func TestRecordJournalsEverything(t *testing.T) {
	t.Parallel()

	eng := testEngine(t, 10_000)
	sink := &memJournal{}

	final, err := Record(eng, sink, "run-1")
	require.NoError(t, err)
	assert.Equal(t, eng.OrdersCount(), final.Index)

	// One equity snapshot per step, one trade per closed round-trip.
	require.Len(t, sink.equity, eng.OrdersCount())
	require.Len(t, sink.trades, 2)

	for i, e := range sink.equity {
		assert.Equal(t, "run-1", e.RunID)
		assert.Equal(t, i+1, e.Step)
	}

	assert.Equal(t, 10.0, sink.trades[0].RealizedPL)
	assert.True(t, sink.trades[0].Win)
	assert.Equal(t, -10.0, sink.trades[1].RealizedPL)
	assert.False(t, sink.trades[1].Win)
}

func TestRecordEmptyEngine(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders(nil, 10_000)
	require.NoError(t, err)

	sink := &memJournal{}
	final, err := Record(eng, sink, "run-2")
	require.NoError(t, err)

	assert.Equal(t, 10_000.0, final.Equity)
	assert.Empty(t, sink.equity)
	assert.Empty(t, sink.trades)
}

func TestPlayerJournalsWithoutDuplicatesAfterSeek(t *testing.T) {
	t.Parallel()

	eng := testEngine(t, 10_000)
	sink := &memJournal{}
	player := NewPlayer(eng, Options{Interval: time.Millisecond, Journal: sink, RunID: "run-3"})

	// Jump over the first round-trip, then play the rest sequentially.
	_, err := player.Seek(2)
	require.NoError(t, err)

	player.Play()
	waitForStop(t, player)

	sink.mu.Lock()
	defer sink.mu.Unlock()

	// Only the trade closed after the jump is journaled; the one inside
	// the skipped prefix is not re-recorded.
	require.Len(t, sink.trades, 1)
	assert.Equal(t, -10.0, sink.trades[0].RealizedPL)
	assert.Len(t, sink.equity, 2)
}
