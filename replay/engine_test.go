package replay

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/workbench/result"
)

func order(t time.Time, dir result.Direction, symbol string, price, qty, value float64) result.Order {
	return result.Order{
		Time:      result.Timestamp{Time: t},
		Symbol:    result.Symbol{Value: symbol},
		Direction: dir,
		Price:     price,
		Quantity:  qty,
		Value:     value,
	}
}

var t0 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func at(hours int) time.Time { return t0.Add(time.Duration(hours) * time.Hour) }

func TestStateAtRoundTrip(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 1, 100),
		order(at(1), result.Sell, "SPY", 110, 1, 110),
	}, 100_000)
	require.NoError(t, err)

	snap, err := eng.StateAt(2)
	require.NoError(t, err)

	assert.Equal(t, 100_010.0, snap.Equity)
	assert.Equal(t, 1, snap.TotalTrades)
	assert.Equal(t, 1, snap.Winning)
	assert.Equal(t, 0, snap.Losing)
	assert.Equal(t, 100.0, snap.WinRatePct)
	assert.Equal(t, 10.0, snap.TotalPnL)
	assert.InDelta(t, 0.01, snap.ReturnPct, 1e-9)
	assert.Equal(t, 100.0, snap.ProgressPct)
	assert.Equal(t, Position{}, snap.Positions["SPY"])
}

func TestStateAtEmptyOrders(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders(nil, 100_000)
	require.NoError(t, err)
	assert.Equal(t, 0, eng.OrdersCount())

	snap, err := eng.StateAt(0)
	require.NoError(t, err)

	assert.Equal(t, 100_000.0, snap.Equity)
	assert.Equal(t, 100_000.0, snap.PeakEquity)
	assert.Equal(t, 0, snap.TotalTrades)
	assert.Equal(t, 0.0, snap.WinRatePct)
	assert.Equal(t, 0.0, snap.ProgressPct)
	assert.Nil(t, snap.Order)
}

func TestStateAtIndexOutOfRange(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 1, 100),
	}, 100_000)
	require.NoError(t, err)

	_, err = eng.StateAt(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = eng.StateAt(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestNewEngineBadInitialCapital(t *testing.T) {
	t.Parallel()

	for _, capital := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := NewEngineFromOrders(nil, capital)
		assert.ErrorIs(t, err, ErrBadInitialCapital)
	}
}

func TestSellWithNoPositionIsNoOp(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Sell, "SPY", 110, 1, 110),
	}, 100_000)
	require.NoError(t, err)

	snap, err := eng.StateAt(1)
	require.NoError(t, err)

	assert.Equal(t, 100_000.0, snap.Equity)
	assert.Equal(t, 0, snap.TotalTrades)
	assert.Equal(t, 0.0, snap.TotalPnL)
}

func TestVolumeWeightedEntryPrice(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 1, 100),
		order(at(1), result.Buy, "SPY", 200, 1, 200),
	}, 100_000)
	require.NoError(t, err)

	snap, err := eng.StateAt(2)
	require.NoError(t, err)

	pos := snap.Positions["SPY"]
	assert.Equal(t, 2.0, pos.Quantity)
	assert.Equal(t, 150.0, pos.EntryPrice)
	assert.Equal(t, 300.0, pos.EntryValue)
}

func TestPartialCloseKeepsEntryPrice(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 4, 400),
		order(at(1), result.Sell, "SPY", 110, 1, 110),
	}, 100_000)
	require.NoError(t, err)

	snap, err := eng.StateAt(2)
	require.NoError(t, err)

	pos := snap.Positions["SPY"]
	assert.Equal(t, 3.0, pos.Quantity)
	assert.Equal(t, 100.0, pos.EntryPrice)
	assert.Equal(t, 300.0, pos.EntryValue)
	assert.Equal(t, 10.0, snap.TotalPnL)
}

func TestOverSellClampsAndWarns(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 1, 100),
		order(at(1), result.Sell, "SPY", 110, 5, 550),
	}, 100_000)
	require.NoError(t, err)

	snap, err := eng.StateAt(2)
	require.NoError(t, err)

	// Only the open quantity closes: pnl = 110*1 - 100*1.
	assert.Equal(t, 10.0, snap.TotalPnL)
	assert.Equal(t, Position{}, snap.Positions["SPY"])
	require.Len(t, snap.Warnings, 1)
	assert.Contains(t, snap.Warnings[0], "clamped")
}

func TestPerSymbolPositions(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 1, 100),
		order(at(1), result.Buy, "QQQ", 300, 2, 600),
		order(at(2), result.Sell, "SPY", 90, 1, 90),
	}, 100_000)
	require.NoError(t, err)

	snap, err := eng.StateAt(3)
	require.NoError(t, err)

	assert.Equal(t, -10.0, snap.TotalPnL)
	assert.Equal(t, 1, snap.Losing)
	assert.Equal(t, 2.0, snap.Positions["QQQ"].Quantity)
	assert.Equal(t, Position{}, snap.Positions["SPY"])
}

func TestMaxDrawdownNonIncreasing(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 1, 100),
		order(at(1), result.Sell, "SPY", 90, 1, 90), // -10
		order(at(2), result.Buy, "SPY", 90, 1, 90),
		order(at(3), result.Sell, "SPY", 120, 1, 120), // +30
		order(at(4), result.Buy, "SPY", 120, 1, 120),
		order(at(5), result.Sell, "SPY", 80, 1, 80), // -40
	}, 1000)
	require.NoError(t, err)

	prev := 0.0
	for k := 0; k <= eng.OrdersCount(); k++ {
		snap, err := eng.StateAt(k)
		require.NoError(t, err)
		assert.LessOrEqual(t, snap.MaxDrawdownPct, prev, "drawdown must not recover at k=%d", k)
		prev = snap.MaxDrawdownPct
	}

	final, err := eng.StateAt(eng.OrdersCount())
	require.NoError(t, err)
	// Peak 1020 after the +30 trade, trough 980 after the -40 trade.
	assert.InDelta(t, (980.0-1020.0)/1020.0*100, final.MaxDrawdownPct, 1e-9)
	assert.Equal(t, 1020.0, final.PeakEquity)
}

func TestPeakEquityNonDecreasing(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 1, 100),
		order(at(1), result.Sell, "SPY", 150, 1, 150),
		order(at(2), result.Buy, "SPY", 150, 1, 150),
		order(at(3), result.Sell, "SPY", 100, 1, 100),
	}, 1000)
	require.NoError(t, err)

	prev := 0.0
	for k := 0; k <= eng.OrdersCount(); k++ {
		snap, err := eng.StateAt(k)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, snap.PeakEquity, prev)
		prev = snap.PeakEquity
	}
}

func TestStateAtIsPrefixPure(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 2, 200),
		order(at(1), result.Sell, "SPY", 95, 1, 95),
		order(at(2), result.Sell, "SPY", 105, 1, 105),
		order(at(3), result.Buy, "QQQ", 300, 1, 300),
		order(at(4), result.Sell, "QQQ", 330, 1, 330),
	}, 10_000)
	require.NoError(t, err)

	// Calling StateAt repeatedly, in any order, yields identical results:
	// there is no hidden carry-over between calls.
	forward := make([]Snapshot, eng.OrdersCount()+1)
	for k := 0; k <= eng.OrdersCount(); k++ {
		forward[k], err = eng.StateAt(k)
		require.NoError(t, err)
	}
	for k := eng.OrdersCount(); k >= 0; k-- {
		again, err := eng.StateAt(k)
		require.NoError(t, err)
		assert.Equal(t, forward[k], again, "state at %d drifted across calls", k)
	}
}

func TestOrdersSortedByTime(t *testing.T) {
	t.Parallel()

	// Input deliberately out of order; the engine imposes time order.
	eng, err := NewEngineFromOrders([]result.Order{
		order(at(5), result.Sell, "SPY", 110, 1, 110),
		order(at(0), result.Buy, "SPY", 100, 1, 100),
	}, 1000)
	require.NoError(t, err)

	first, ok := eng.OrderAt(0)
	require.True(t, ok)
	assert.Equal(t, result.Buy, first.Direction)

	snap, err := eng.StateAt(2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, snap.TotalPnL)
}

func TestNegativeQuantityUsesMagnitude(t *testing.T) {
	t.Parallel()

	eng, err := NewEngineFromOrders([]result.Order{
		order(at(0), result.Buy, "SPY", 100, 1, 100),
		order(at(1), result.Sell, "SPY", 110, -1, -110),
	}, 1000)
	require.NoError(t, err)

	snap, err := eng.StateAt(2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, snap.TotalPnL)
	assert.Equal(t, 1, snap.Winning)
}
